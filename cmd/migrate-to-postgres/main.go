// migrate-to-postgres copies the world journal from SQLite to PostgreSQL.
// Worlds already present in PostgreSQL are skipped, so reruns are safe.
//
// Usage:
//
//	go run ./cmd/migrate-to-postgres \
//	    -sqlite data/worlds.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user planetmap \
//	    -pg-password planetmap \
//	    -pg-database planetmap
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/lawnchairsociety/planetmap/internal/config"
	"github.com/lawnchairsociety/planetmap/internal/database"
)

func main() {
	defaults := config.DefaultConfig().Journal

	sqlitePath := flag.String("sqlite", defaults.SQLitePath, "Path to SQLite journal")
	pgHost := flag.String("pg-host", defaults.Postgres.Host, "PostgreSQL host")
	pgPort := flag.Int("pg-port", defaults.Postgres.Port, "PostgreSQL port")
	pgUser := flag.String("pg-user", "planetmap", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "planetmap", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", "planetmap", "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", defaults.Postgres.SSLMode, "PostgreSQL SSL mode")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Parse()

	log.Println("World Journal Migration Tool")
	log.Println("====================================")

	if _, err := os.Stat(*sqlitePath); err != nil {
		log.Fatalf("SQLite journal not found: %v", err)
	}

	log.Printf("Opening SQLite journal: %s", *sqlitePath)
	src, err := database.Open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite journal: %v", err)
	}
	defer src.Close()

	pg := defaults
	pg.Driver = string(database.DialectPostgres)
	pg.Postgres.Host = *pgHost
	pg.Postgres.Port = *pgPort
	pg.Postgres.User = *pgUser
	pg.Postgres.Password = *pgPassword
	pg.Postgres.Database = *pgDatabase
	pg.Postgres.SSLMode = *pgSSLMode

	// Opening runs the schema migration on PostgreSQL.
	log.Printf("Opening PostgreSQL database: %s@%s:%d/%s", *pgUser, *pgHost, *pgPort, *pgDatabase)
	dst, err := database.OpenWithConfig(pg)
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL database: %v", err)
	}
	defer dst.Close()

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	copied, skipped, err := database.CopyJournal(context.Background(), src, dst, *dryRun)
	if err != nil {
		log.Fatalf("Failed to migrate worlds: %v", err)
	}

	log.Println("====================================")
	log.Printf("Migration complete! Worlds copied: %s, already present: %s",
		humanize.Comma(copied), humanize.Comma(skipped))
	if *dryRun {
		log.Println("(DRY RUN - No actual changes were made)")
	}
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Copies the world journal from SQLite to PostgreSQL.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
}
