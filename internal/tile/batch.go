package tile

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	billy "gopkg.in/src-d/go-billy.v4"
	"gopkg.in/src-d/go-billy.v4/util"
)

// Grid is a rectangle of tiles at one zoom level, starting at the top-left
// tile (Z, X, Y) and stepping one tile per column or row.
type Grid struct {
	Origin Address
	Cols   int
	Rows   int
}

// Addresses lists the grid row by row.
func (g Grid) Addresses() []Address {
	if g.Cols <= 0 || g.Rows <= 0 {
		return nil
	}
	out := make([]Address, 0, g.Cols*g.Rows)
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			out = append(out, Address{
				Z: g.Origin.Z,
				X: g.Origin.X + float64(col),
				Y: g.Origin.Y + float64(row),
			})
		}
	}
	return out
}

// TilePath is the slippy-map file name z/x/y.ext for addr.
func TilePath(addr Address, format Format) string {
	return path.Join(
		strconv.FormatUint(uint64(addr.Z), 10),
		strconv.FormatFloat(addr.X, 'f', -1, 64),
		strconv.FormatFloat(addr.Y, 'f', -1, 64)+"."+string(format),
	)
}

// WriteGrid renders every tile of g into fs, at most parallel at a time, and
// returns the number of bytes written.
func (s *Service) WriteGrid(ctx context.Context, fs billy.Filesystem, g Grid, parallel int) (int64, error) {
	format := s.encoder.Format()
	var written atomic.Int64

	eg, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		eg.SetLimit(parallel)
	}
	for _, addr := range g.Addresses() {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := s.Tile(addr)
			if err != nil {
				return fmt.Errorf("tile %s: %w", addr, err)
			}
			name := TilePath(addr, format)
			if err := fs.MkdirAll(path.Dir(name), 0755); err != nil {
				return fmt.Errorf("create %s: %w", path.Dir(name), err)
			}
			if err := util.WriteFile(fs, name, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
			written.Add(int64(len(data)))
			return nil
		})
	}
	err := eg.Wait()
	return written.Load(), err
}
