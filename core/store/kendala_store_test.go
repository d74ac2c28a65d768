package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"kendala-hub/config"
	"kendala-hub/core/kendala"
	"kendala-hub/core/utils"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.AppConfig{
		DBDriver: "sqlite",
		DBURL:    filepath.Join(t.TempDir(), "test.db"),
	}
	logger := utils.NewLogger()
	db, err := NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := ApplyMigrations(context.Background(), db, cfg.DBDriver, nil); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return db
}

func seedOperator(t *testing.T, db *sql.DB, username string) int64 {
	t.Helper()
	users := NewUsersStore(db)
	id, err := users.Create(context.Background(), &User{
		Username:     username,
		PasswordHash: "x",
		Role:         RoleOperator,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return id
}

func seedReference(t *testing.T, db *sql.DB, tid string) *Reference {
	t.Helper()
	refs := NewReferenceStore(db)
	ref := &Reference{TID: tid, Lokasi: "KCP Sudirman", KCSupervisi: "KC Jakarta", Pengelola: "TAG"}
	if _, err := refs.Create(context.Background(), ref); err != nil {
		t.Fatalf("create reference %s: %v", tid, err)
	}
	return ref
}

func TestKendalaCreateAndGet(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	uid := seedOperator(t, db, "budi")
	ref := seedReference(t, db, "A123")
	ks := NewKendalaStore(db)

	created := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	k := &kendala.Kendala{
		Title:       "Kaset jammed",
		Description: "cash handler error",
		CreatedAt:   created,
		Terminal:    ref.TerminalRef(),
		OperatorID:  uid,
	}
	id, err := ks.Create(ctx, k)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := ks.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Kaset jammed" || got.Operator != "budi" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.Terminal == nil || got.Terminal.TID != "A123" {
		t.Fatalf("terminal not joined: %+v", got.Terminal)
	}
	if got.StoredState != kendala.StatePending {
		t.Fatalf("expected pending hint, got %s", got.StoredState)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at mismatch: %s", got.CreatedAt)
	}

	if _, err := ks.Get(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestKendalaListFiltersByOperator(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	budi := seedOperator(t, db, "budi")
	sari := seedOperator(t, db, "sari")
	ref := seedReference(t, db, "A123")
	ks := NewKendalaStore(db)

	for _, uid := range []int64{budi, budi, sari} {
		if _, err := ks.Create(ctx, &kendala.Kendala{
			Title: "t", Terminal: ref.TerminalRef(), OperatorID: uid,
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, err := ks.List(ctx, KendalaFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3, got %d", len(all))
	}
	mine, err := ks.List(ctx, KendalaFilter{UserID: budi})
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 for budi, got %d", len(mine))
	}
	for _, k := range mine {
		if k.OperatorID != budi {
			t.Fatalf("leaked record of user %d", k.OperatorID)
		}
	}
}

func TestSubmitEvidenceOnce(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	uid := seedOperator(t, db, "budi")
	ref := seedReference(t, db, "A123")
	ks := NewKendalaStore(db)

	id, err := ks.Create(ctx, &kendala.Kendala{Title: "t", Terminal: ref.TerminalRef(), OperatorID: uid})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	done := time.Now().UTC()
	if err := ks.SubmitEvidence(ctx, id, done, "/files/bukti.jpg", kendala.StateCompleted, ""); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	got, err := ks.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CompletedAt == nil || got.EvidenceURL != "/files/bukti.jpg" {
		t.Fatalf("submission not persisted: %+v", got)
	}

	err = ks.SubmitEvidence(ctx, id, done.Add(time.Minute), "/files/other.jpg", kendala.StateCompleted, "")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on second submit, got %v", err)
	}
	if err := ks.SubmitEvidence(ctx, 9999, done, "/files/x.jpg", kendala.StateCompleted, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestMarkOverdueBoundary(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	uid := seedOperator(t, db, "budi")
	ref := seedReference(t, db, "A123")
	ks := NewKendalaStore(db)

	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	cutoff := now.Add(-2 * time.Hour)

	mk := func(createdAt time.Time, completed bool) int64 {
		k := &kendala.Kendala{Title: "t", CreatedAt: createdAt, Terminal: ref.TerminalRef(), OperatorID: uid}
		id, err := ks.Create(ctx, k)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if completed {
			if err := ks.SubmitEvidence(ctx, id, createdAt.Add(time.Hour), "/files/x.jpg", kendala.StateCompleted, ""); err != nil {
				t.Fatalf("submit: %v", err)
			}
		}
		return id
	}

	atDeadline := mk(cutoff, false)          // exactly at the cutoff, flips
	past := mk(cutoff.Add(-time.Hour), false) // old, flips
	fresh := mk(cutoff.Add(time.Minute), false)
	done := mk(cutoff.Add(-time.Hour), true)

	n, err := ks.MarkOverdue(ctx, cutoff)
	if err != nil {
		t.Fatalf("mark overdue: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows flipped, got %d", n)
	}
	expect := map[int64]kendala.State{
		atDeadline: kendala.StateOverdue,
		past:       kendala.StateOverdue,
		fresh:      kendala.StatePending,
		done:       kendala.StateCompleted,
	}
	for id, want := range expect {
		got, err := ks.Get(ctx, id)
		if err != nil {
			t.Fatalf("get %d: %v", id, err)
		}
		if got.StoredState != want {
			t.Fatalf("id %d: expected %s, got %s", id, want, got.StoredState)
		}
	}
}

func TestDeleteKendala(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	uid := seedOperator(t, db, "budi")
	ref := seedReference(t, db, "A123")
	ks := NewKendalaStore(db)

	id, err := ks.Create(ctx, &kendala.Kendala{Title: "t", Terminal: ref.TerminalRef(), OperatorID: uid})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := ks.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := ks.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
