package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/lawnchairsociety/planetmap/internal/worlds"
)

// Entry is a journaled world and the time it was recorded.
type Entry struct {
	World     worlds.World
	CreatedAt time.Time
}

// RecordWorld appends w to the journal. The world ID is stored as decimal
// text so the full uint64 range survives PostgreSQL's signed BIGINT.
func (d *Database) RecordWorld(ctx context.Context, w worlds.World) error {
	return d.recordEntry(ctx, Entry{World: w, CreatedAt: time.Now().UTC()})
}

func (d *Database) recordEntry(ctx context.Context, e Entry) error {
	w := e.World
	query := d.qb.Build(`
		INSERT INTO worlds (world_id, name, seed, sea_level, temperature, humidity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := d.db.ExecContext(ctx, query,
		strconv.FormatUint(w.ID, 10), w.Name, w.Seed,
		w.SeaLevel, w.Temperature, w.Humidity,
		e.CreatedAt,
	)
	if err != nil {
		if d.dialect.IsDuplicateKeyError(err) {
			return fmt.Errorf("world %d already journaled: %w", w.ID, err)
		}
		return fmt.Errorf("failed to record world: %w", err)
	}
	return nil
}

// CountWorlds returns the number of journaled worlds.
func (d *Database) CountWorlds(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM worlds`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count worlds: %w", err)
	}
	return n, nil
}

// RecentWorlds returns up to limit entries, newest first.
func (d *Database) RecentWorlds(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := d.qb.Build(`
		SELECT world_id, name, seed, sea_level, temperature, humidity, created_at
		FROM worlds
		ORDER BY seq DESC
		LIMIT ?
	`)

	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query worlds: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e  Entry
		id string
	)
	if err := rows.Scan(&id, &e.World.Name, &e.World.Seed,
		&e.World.SeaLevel, &e.World.Temperature, &e.World.Humidity,
		&e.CreatedAt); err != nil {
		return Entry{}, fmt.Errorf("failed to scan world: %w", err)
	}
	var err error
	e.World.ID, err = strconv.ParseUint(id, 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("journal holds invalid world id %q: %w", id, err)
	}
	return e, nil
}

// EachWorld calls fn for every journaled world, oldest first, stopping at
// the first error.
func (d *Database) EachWorld(ctx context.Context, fn func(Entry) error) error {
	rows, err := d.db.QueryContext(ctx, `
		SELECT world_id, name, seed, sea_level, temperature, humidity, created_at
		FROM worlds
		ORDER BY seq ASC
	`)
	if err != nil {
		return fmt.Errorf("failed to query worlds: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CopyJournal appends every world in src that dst lacks, keeping creation
// times. With dryRun set nothing is written and the count is what would be
// copied, duplicates included.
func CopyJournal(ctx context.Context, src, dst *Database, dryRun bool) (copied, skipped int64, err error) {
	err = src.EachWorld(ctx, func(e Entry) error {
		if dryRun {
			copied++
			return nil
		}
		if err := dst.recordEntry(ctx, e); err != nil {
			if dst.dialect.IsDuplicateKeyError(err) {
				skipped++
				return nil
			}
			return err
		}
		copied++
		return nil
	})
	return copied, skipped, err
}
