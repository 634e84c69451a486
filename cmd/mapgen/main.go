// mapgen renders a grid of tiles to image files without running the server.
//
// Usage:
//
//	go run ./cmd/mapgen -z 6 -x 10 -y 20 -cols 4 -rows 4 -output tiles
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/src-d/go-billy.v4/osfs"

	"github.com/lawnchairsociety/planetmap/internal/config"
	"github.com/lawnchairsociety/planetmap/internal/noise"
	"github.com/lawnchairsociety/planetmap/internal/tile"
)

func main() {
	serverConfigFile := flag.String("config", "data/server.yaml", "Path to server config YAML file (noise and render settings)")
	z := flag.Uint64("z", 0, "Zoom level")
	x := flag.Float64("x", 0, "Left tile column")
	y := flag.Float64("y", 0, "Top tile row")
	cols := flag.Int("cols", 1, "Number of tile columns")
	rows := flag.Int("rows", 1, "Number of tile rows")
	outputDir := flag.String("output", "tiles", "Output directory")
	format := flag.String("format", "", "Tile format override: png or tiff")
	parallel := flag.Int("parallel", 4, "Tiles rendered at once")
	flag.Parse()

	cfg, err := config.LoadConfig(*serverConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config, using defaults: %v\n", err)
	}
	if *format != "" {
		cfg.Render.Format = *format
	}
	if *z > math.MaxUint32 {
		fmt.Fprintf(os.Stderr, "Zoom level %d out of range\n", *z)
		os.Exit(1)
	}

	field, err := noise.New(noise.Kind(cfg.Noise.Kind), cfg.Noise.Seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	tileFormat, err := tile.ParseFormat(cfg.Render.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	svc := tile.NewService(
		tile.NewNoiseRenderer(field, cfg.Render.MaxOctaves, cfg.Render.Workers),
		tile.NewEncoder(tileFormat),
	)

	grid := tile.Grid{
		Origin: tile.Address{Z: uint32(*z), X: *x, Y: *y},
		Cols:   *cols,
		Rows:   *rows,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	written, err := svc.WriteGrid(ctx, osfs.New(*outputDir), grid, *parallel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing tiles: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d %s tiles (%s) to %s in %s\n",
		*cols**rows, tileFormat, humanize.Bytes(uint64(written)), *outputDir,
		time.Since(start).Round(time.Millisecond))
}
