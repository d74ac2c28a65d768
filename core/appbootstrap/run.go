package appbootstrap

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kendala-hub/api"
	"kendala-hub/config"
	"kendala-hub/core/store"
	"kendala-hub/core/utils"
)

const shutdownTimeout = 15 * time.Second

// Run wires the whole application together and blocks until SIGINT/SIGTERM,
// then shuts the server and background workers down gracefully.
func Run(cfg *config.AppConfig, logger *utils.Logger) error {
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.ApplyMigrations(ctx, db, cfg.DBDriver, logger); err != nil {
		return err
	}

	comp, err := composeRuntime(cfg, db, logger)
	if err != nil {
		return err
	}
	if err := ensureAdminAccount(ctx, cfg, comp.serverDeps.Users, logger); err != nil {
		return err
	}
	if n, err := comp.sessions.DeleteExpired(ctx, utils.NowUTC()); err == nil && n > 0 && logger != nil {
		logger.Printf("purged %d expired sessions", n)
	}

	for _, w := range comp.workers {
		w.StartWithContext(ctx)
	}

	srv := api.NewServer(cfg, comp.serverDeps, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		if logger != nil {
			logger.Printf("shutdown signal received")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, w := range comp.workers {
		if err := w.StopWithContext(shutdownCtx); err != nil && logger != nil {
			logger.Errorf("stop worker: %v", err)
		}
	}
	return srv.Shutdown(shutdownCtx)
}
