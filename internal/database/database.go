// Package database journals created worlds to SQLite or PostgreSQL. The
// journal is append-only: the server never reads it back into the registry.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/lawnchairsociety/planetmap/internal/config"
)

// Database wraps the SQL connection and the dialect used to talk to it.
type Database struct {
	db      *sql.DB
	dialect Dialect
	qb      *QueryBuilder
}

// Open opens or creates the SQLite journal at the given path.
func Open(path string) (*Database, error) {
	return OpenWithConfig(config.JournalConfig{
		Driver:     string(DialectSQLite),
		SQLitePath: path,
	})
}

// OpenWithConfig opens the journal described by cfg and applies migrations.
func OpenWithConfig(cfg config.JournalConfig) (*Database, error) {
	dialect := NewDialect(DialectType(cfg.Driver))

	var dsn string
	switch dialect.(type) {
	case *PostgresDialect:
		dsn = cfg.Postgres.DSN()
	default:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite journal path is empty")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = cfg.SQLitePath
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, ok := dialect.(*PostgresDialect); ok {
		applyPool(db, cfg.Postgres)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", dialect.DriverName(), err)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init statement %q: %w", stmt, err)
		}
	}

	d := &Database{db: db, dialect: dialect, qb: NewQueryBuilder(dialect)}

	if err := d.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Dialect returns the SQL dialect in use.
func (d *Database) Dialect() Dialect {
	return d.dialect
}

// migrate creates the journal schema if it doesn't exist.
func (d *Database) migrate(ctx context.Context) error {
	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS worlds (
			seq %s,
			world_id TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			seed TEXT NOT NULL,
			sea_level %[2]s NOT NULL,
			temperature %[2]s NOT NULL,
			humidity %[2]s NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`, d.dialect.SerialPrimaryKey(), d.dialect.FloatType()),

		`CREATE INDEX IF NOT EXISTS idx_worlds_created_at ON worlds(created_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
