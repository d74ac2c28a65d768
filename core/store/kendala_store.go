package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"kendala-hub/core/kendala"
)

// KendalaFilter narrows the list at the SQL level. The richer dashboard
// filtering (search, derived status, month, sort) runs in the engine over
// the returned collection.
type KendalaFilter struct {
	// UserID restricts to kendala assigned to one operator. Zero means all.
	UserID int64
}

type KendalaStore interface {
	Create(ctx context.Context, k *kendala.Kendala) (int64, error)
	Get(ctx context.Context, id int64) (*kendala.Kendala, error)
	List(ctx context.Context, filter KendalaFilter) ([]kendala.Kendala, error)
	Delete(ctx context.Context, id int64) error
	// SubmitEvidence marks a kendala resolved. completedAt and evidenceURL
	// are coupled and set exactly once; a second submission conflicts.
	SubmitEvidence(ctx context.Context, id int64, completedAt time.Time, evidenceURL string, state kendala.State, overdueDuration string) error
	// MarkOverdue refreshes the stored state hint for pending kendala
	// created at or before the cutoff. Returns the number of rows touched.
	MarkOverdue(ctx context.Context, createdBefore time.Time) (int64, error)
}

type kendalaStore struct {
	db *sql.DB
}

func NewKendalaStore(db *sql.DB) KendalaStore {
	return &kendalaStore{db: db}
}

const kendalaSelect = `
	SELECT k.id, k.title, k.description, k.state, k.overdue_duration,
	       k.created_at, k.completed_at, k.evidence_url, k.user_id,
	       u.username,
	       r.id, r.tid, r.lokasi, r.kc_supervisi, r.pengelola
	FROM kendala k
	JOIN users u ON u.id = k.user_id
	LEFT JOIN reference_data r ON r.id = k.reference_id`

func (s *kendalaStore) Create(ctx context.Context, k *kendala.Kendala) (int64, error) {
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now().UTC()
	}
	if k.StoredState == "" {
		k.StoredState = kendala.StatePending
	}
	var refID any
	if k.Terminal != nil && k.Terminal.ID > 0 {
		refID = k.Terminal.ID
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO kendala (title, description, state, overdue_duration, created_at, completed_at, evidence_url, user_id, reference_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		k.Title, k.Description, string(k.StoredState), k.OverdueDuration,
		k.CreatedAt, k.CompletedAt, k.EvidenceURL, k.OperatorID, refID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	k.ID = id
	return id, nil
}

func (s *kendalaStore) Get(ctx context.Context, id int64) (*kendala.Kendala, error) {
	row := s.db.QueryRowContext(ctx, kendalaSelect+` WHERE k.id = ?`, id)
	k, err := scanKendala(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return k, nil
}

func (s *kendalaStore) List(ctx context.Context, filter KendalaFilter) ([]kendala.Kendala, error) {
	query := kendalaSelect
	args := []any{}
	if filter.UserID > 0 {
		query += ` WHERE k.user_id = ?`
		args = append(args, filter.UserID)
	}
	query += ` ORDER BY k.id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []kendala.Kendala
	for rows.Next() {
		k, err := scanKendala(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *k)
	}
	return items, rows.Err()
}

func (s *kendalaStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kendala WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *kendalaStore) SubmitEvidence(ctx context.Context, id int64, completedAt time.Time, evidenceURL string, state kendala.State, overdueDuration string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE kendala
		 SET completed_at = ?, evidence_url = ?, state = ?, overdue_duration = ?
		 WHERE id = ? AND completed_at IS NULL`,
		completedAt, evidenceURL, string(state), overdueDuration, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return getErr
		}
		return ErrConflict
	}
	return nil
}

func (s *kendalaStore) MarkOverdue(ctx context.Context, createdBefore time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE kendala SET state = ?
		 WHERE state = ? AND completed_at IS NULL AND created_at <= ?`,
		string(kendala.StateOverdue), string(kendala.StatePending), createdBefore)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKendala(row rowScanner) (*kendala.Kendala, error) {
	var (
		k           kendala.Kendala
		state       string
		completedAt sql.NullTime
		refID       sql.NullInt64
		tid         sql.NullString
		lokasi      sql.NullString
		kcSupervisi sql.NullString
		pengelola   sql.NullString
	)
	err := row.Scan(&k.ID, &k.Title, &k.Description, &state, &k.OverdueDuration,
		&k.CreatedAt, &completedAt, &k.EvidenceURL, &k.OperatorID,
		&k.Operator,
		&refID, &tid, &lokasi, &kcSupervisi, &pengelola)
	if err != nil {
		return nil, err
	}
	k.StoredState = kendala.State(state)
	if completedAt.Valid {
		t := completedAt.Time
		k.CompletedAt = &t
	}
	if refID.Valid {
		k.Terminal = &kendala.TerminalRef{
			ID:          refID.Int64,
			TID:         tid.String,
			Lokasi:      lokasi.String,
			KCSupervisi: kcSupervisi.String,
			Pengelola:   pengelola.String,
		}
	}
	return &k, nil
}
