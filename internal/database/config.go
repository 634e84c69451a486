package database

import (
	"database/sql"

	"github.com/lawnchairsociety/planetmap/internal/config"
)

// applyPool copies the PostgreSQL pool limits onto db. Zero values keep the
// database/sql defaults.
func applyPool(db *sql.DB, cfg config.PostgresConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}
