package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"kendala-hub/core/kendala"
)

// Reference is one terminal directory entry: the physical ATM/CRM a kendala
// can be raised against. The directory is read-only for the rest of the app.
type Reference struct {
	ID          int64  `json:"id"`
	TID         string `json:"tid"`
	Lokasi      string `json:"lokasi"`
	KCSupervisi string `json:"kc_supervisi"`
	Pengelola   string `json:"pengelola"`
}

func (r *Reference) TerminalRef() *kendala.TerminalRef {
	if r == nil {
		return nil
	}
	return &kendala.TerminalRef{
		ID:          r.ID,
		TID:         r.TID,
		Lokasi:      r.Lokasi,
		KCSupervisi: r.KCSupervisi,
		Pengelola:   r.Pengelola,
	}
}

type ReferenceStore interface {
	Create(ctx context.Context, ref *Reference) (int64, error)
	FindByTID(ctx context.Context, tid string) (*Reference, error)
	List(ctx context.Context) ([]Reference, error)
}

type referenceStore struct {
	db *sql.DB
}

func NewReferenceStore(db *sql.DB) ReferenceStore {
	return &referenceStore{db: db}
}

func (s *referenceStore) Create(ctx context.Context, ref *Reference) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reference_data (tid, lokasi, kc_supervisi, pengelola) VALUES (?, ?, ?, ?)`,
		ref.TID, ref.Lokasi, ref.KCSupervisi, ref.Pengelola)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	ref.ID = id
	return id, nil
}

func (s *referenceStore) FindByTID(ctx context.Context, tid string) (*Reference, error) {
	var ref Reference
	err := s.db.QueryRowContext(ctx,
		`SELECT id, tid, lokasi, kc_supervisi, pengelola FROM reference_data WHERE tid = ?`, tid).
		Scan(&ref.ID, &ref.TID, &ref.Lokasi, &ref.KCSupervisi, &ref.Pengelola)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (s *referenceStore) List(ctx context.Context) ([]Reference, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tid, lokasi, kc_supervisi, pengelola FROM reference_data ORDER BY tid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var refs []Reference
	for rows.Next() {
		var ref Reference
		if err := rows.Scan(&ref.ID, &ref.TID, &ref.Lokasi, &ref.KCSupervisi, &ref.Pengelola); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
