package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"kendala-hub/config"
	"kendala-hub/core/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// NewDB opens the configured database. sqlite is the default; postgres is
// selected with db_driver=postgres and a pgx-compatible URL.
func NewDB(cfg *config.AppConfig, logger *utils.Logger) (*sql.DB, error) {
	driver := cfg.DBDriver
	if driver == "" {
		driver = "sqlite"
	}
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case "postgres":
		db, err = sql.Open("pgx", cfg.DBURL)
	case "sqlite":
		if dir := filepath.Dir(cfg.DBURL); dir != "" && dir != "." {
			if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
				return nil, mkErr
			}
		}
		db, err = sql.Open("sqlite", cfg.DBURL+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
		if err == nil {
			// modernc sqlite is in-process; a single writer avoids
			// SQLITE_BUSY churn under concurrent handlers.
			db.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if logger != nil {
		logger.Printf("DB ready driver=%s", driver)
	}
	return db, nil
}
