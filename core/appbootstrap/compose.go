package appbootstrap

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"kendala-hub/api"
	"kendala-hub/config"
	"kendala-hub/core/auth"
	"kendala-hub/core/evidence"
	"kendala-hub/core/kendala"
	"kendala-hub/core/rbac"
	"kendala-hub/core/store"
	"kendala-hub/core/utils"
	"kendala-hub/tasks/sweeper"
)

type runtimeComposition struct {
	serverDeps api.ServerDeps
	sessions   store.SessionStore
	workers    []api.BackgroundWorker
}

func composeRuntime(cfg *config.AppConfig, db *sql.DB, logger *utils.Logger) (*runtimeComposition, error) {
	users := store.NewUsersStore(db)
	sessions := store.NewSessionsStore(db)
	audits := store.NewAuditStore(db)
	references := store.NewReferenceStore(db)
	kendalaStore := store.NewKendalaStore(db)

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, err
	}
	engine := kendala.NewEngine(cfg.Kendala.DeadlineWindow, loc)

	policy, err := rbac.NewPolicy()
	if err != nil {
		return nil, err
	}
	evidenceStore, err := evidence.NewDiskStore(cfg.Evidence.StorageDir)
	if err != nil {
		return nil, err
	}
	sessionManager := auth.NewSessionManager(sessions, cfg, logger)
	sweep := sweeper.New(cfg.Sweeper, engine.Window(), kendalaStore, logger)

	return &runtimeComposition{
		serverDeps: api.ServerDeps{
			Users:          users,
			Sessions:       sessions,
			Audits:         audits,
			KendalaStore:   kendalaStore,
			ReferenceStore: references,
			Evidence:       evidenceStore,
			Engine:         engine,
			Policy:         policy,
			SessionManager: sessionManager,
		},
		sessions: sessions,
		workers:  []api.BackgroundWorker{sweep},
	}, nil
}

// ensureAdminAccount seeds the built-in admin on first start so a fresh
// database is immediately usable.
func ensureAdminAccount(ctx context.Context, cfg *config.AppConfig, users store.UsersStore, logger *utils.Logger) error {
	_, err := users.FindByUsername(ctx, "admin")
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	hash, err := auth.HashPassword(cfg.AdminPassword, cfg.Pepper)
	if err != nil {
		return err
	}
	_, err = users.Create(ctx, &store.User{
		Username:     "admin",
		PasswordHash: hash,
		Role:         store.RoleAdmin,
		Active:       true,
	})
	if errors.Is(err, store.ErrConflict) {
		return nil
	}
	if err == nil && logger != nil {
		logger.Printf("seeded default admin account")
	}
	return err
}
