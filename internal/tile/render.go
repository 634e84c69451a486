package tile

import (
	"image"

	"golang.org/x/sync/errgroup"

	"github.com/lawnchairsociety/planetmap/internal/noise"
)

// Heightmap yields the normalized terrain height at a plane coordinate.
type Heightmap interface {
	Normalized(sx, sy float64, z uint32) float64
}

// Renderer turns tile addresses into pixel buffers. It holds no mutable
// state, so one Renderer serves any number of concurrent requests.
type Renderer struct {
	heights Heightmap
	workers int
}

// NewRenderer renders with up to workers goroutines per tile, one row at a
// time each. workers below 1 renders on the calling goroutine.
func NewRenderer(heights Heightmap, workers int) *Renderer {
	if workers < 1 {
		workers = 1
	}
	return &Renderer{heights: heights, workers: workers}
}

// NewNoiseRenderer is NewRenderer over a fractal sampler of field.
func NewNoiseRenderer(field noise.Field, maxOctaves, workers int) *Renderer {
	return NewRenderer(noise.NewSampler(field, maxOctaves), workers)
}

// Render produces the Size×Size opaque image for addr. The result depends on
// addr alone.
func (r *Renderer) Render(addr Address) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))
	region := addr.Region()

	if r.workers == 1 {
		for row := 0; row < Size; row++ {
			r.renderRow(img, region, addr.Z, row)
		}
		return img
	}

	var g errgroup.Group
	g.SetLimit(r.workers)
	for row := 0; row < Size; row++ {
		g.Go(func() error {
			r.renderRow(img, region, addr.Z, row)
			return nil
		})
	}
	g.Wait()
	return img
}

// renderRow writes one row; rows share no pixels, so concurrent rows never
// race.
func (r *Renderer) renderRow(img *image.RGBA, region Region, z uint32, row int) {
	py := float64(row) / Size
	for col := 0; col < Size; col++ {
		sx, sy := region.At(float64(col)/Size, py)
		img.SetRGBA(col, row, Classify(r.heights.Normalized(sx, sy, z)))
	}
}
