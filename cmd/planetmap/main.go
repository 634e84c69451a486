package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"gopkg.in/src-d/go-billy.v4/osfs"

	"github.com/lawnchairsociety/planetmap/internal/config"
	"github.com/lawnchairsociety/planetmap/internal/database"
	"github.com/lawnchairsociety/planetmap/internal/logger"
	"github.com/lawnchairsociety/planetmap/internal/noise"
	"github.com/lawnchairsociety/planetmap/internal/server"
	"github.com/lawnchairsociety/planetmap/internal/tile"
	"github.com/lawnchairsociety/planetmap/internal/worlds"
)

func main() {
	serverConfigFile := flag.String("config", "data/server.yaml", "Path to server config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	addr := flag.String("addr", "", "Listen address (overrides http.address)")
	listWorlds := flag.Int("list-worlds", 0, "Print the N most recently journaled worlds and exit")
	flag.Parse()

	// Initialize logger first (before any logging)
	logConfig, err := logger.LoadConfig(*loggingConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load logging config %s, using defaults: %v\n", *loggingConfig, err)
	}
	if err := logger.Initialize(logConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	cfg, err := config.LoadConfig(*serverConfigFile)
	if err != nil {
		logger.Warning("Failed to load server config, using defaults", "path", *serverConfigFile, "error", err)
	}
	if *addr != "" {
		cfg.HTTP.Address = *addr
	}

	if *listWorlds > 0 {
		if err := printRecentWorlds(cfg.Journal, *listWorlds); err != nil {
			logger.Error("Failed to list worlds", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg); err != nil {
		logger.Error("Server stopped with error", "error", err)
		logger.Close()
		os.Exit(1)
	}
}

func run(cfg *config.ServerConfig) error {
	logger.Info("Starting planet map server")

	field, err := noise.New(noise.Kind(cfg.Noise.Kind), cfg.Noise.Seed)
	if err != nil {
		return err
	}
	format, err := tile.ParseFormat(cfg.Render.Format)
	if err != nil {
		return err
	}
	renderer := tile.NewNoiseRenderer(field, cfg.Render.MaxOctaves, cfg.Render.Workers)
	tiles := tile.NewService(renderer, tile.NewEncoder(format))
	logger.Info("Tile renderer ready",
		"noise", cfg.Noise.Kind,
		"noise_seed", cfg.Noise.Seed,
		"format", format,
		"workers", cfg.Render.Workers,
		"max_octaves", cfg.Render.MaxOctaves,
		"max_concurrent", cfg.Render.MaxConcurrent)

	var opts []worlds.Option
	if cfg.Journal.Enabled {
		db, err := database.OpenWithConfig(cfg.Journal)
		if err != nil {
			return fmt.Errorf("open world journal: %w", err)
		}
		defer db.Close()
		opts = append(opts, worlds.WithRecorder(db))

		count, err := db.CountWorlds(context.Background())
		if err != nil {
			logger.Warning("Failed to count journaled worlds", "error", err)
		}
		logger.Info("World journal opened", "driver", cfg.Journal.Driver, "worlds", humanize.Comma(int64(count)))
	}
	factory := worlds.NewFactory(worlds.NewRegistry(), opts...)

	srv := server.NewServer(*cfg, tiles, factory, osfs.New(cfg.HTTP.ClientDir))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for interrupt signal or a listener failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("Shutting down server", "signal", sig.String())
	case err := <-errCh:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// printRecentWorlds writes the newest journal entries as a table on stdout.
func printRecentWorlds(cfg config.JournalConfig, limit int) error {
	db, err := database.OpenWithConfig(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	total, err := db.CountWorlds(ctx)
	if err != nil {
		return err
	}
	entries, err := db.RecentWorlds(ctx, limit)
	if err != nil {
		return err
	}

	fmt.Printf("%s worlds journaled, showing %d\n", humanize.Comma(int64(total)), len(entries))
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSEED\tSEA\tTEMP\tHUMID\tCREATED")
	for _, e := range entries {
		w := e.World
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%.2f\t%.2f\t%s\n",
			w.ID, w.Name, w.Seed, w.SeaLevel, w.Temperature, w.Humidity,
			humanize.Time(e.CreatedAt))
	}
	return tw.Flush()
}
