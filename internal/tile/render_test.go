package tile

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/lawnchairsociety/planetmap/internal/noise"
)

var midLand = color.RGBA{R: 0, G: 200, B: 0, A: 255}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		height float64
		want   color.RGBA
	}{
		{"deep ocean", -0.2, Ocean},
		{"just below sea", 0.4999999, Ocean},
		{"sea level", 0.5, midLand},
		{"mid land", 0.75, color.RGBA{R: 159, G: 200, B: 159, A: 255}},
		{"snow line", 0.9, color.RGBA{R: 255, G: 200, B: 255, A: 255}},
		{"just above snow line", 0.9001, Snow},
		{"beyond range", 1.3, Snow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.height))
		})
	}
}

func TestClassifyNaNIsTotal(t *testing.T) {
	assert.Equal(t, midLand, Classify(math.NaN()))
}

func TestChannelSaturates(t *testing.T) {
	assert.Equal(t, uint8(0), channel(-1))
	assert.Equal(t, uint8(255), channel(2))
	assert.Equal(t, uint8(200), channel(0.7852))
}

// constHeight returns the same height everywhere.
type constHeight float64

func (c constHeight) Normalized(float64, float64, uint32) float64 { return float64(c) }

// gradient returns the x coordinate as height, exposing the sampled region.
type gradient struct{}

func (gradient) Normalized(sx, _ float64, _ uint32) float64 { return sx }

func TestRenderZeroOctaveTileIsUniform(t *testing.T) {
	r := NewNoiseRenderer(noise.NewPerlin(0), 30, 4)

	for _, z := range []uint32{0, 1} {
		img := r.Render(Address{Z: z, X: 1, Y: 0})
		require.Equal(t, image.Rect(0, 0, Size, Size), img.Bounds())
		for y := 0; y < Size; y++ {
			for x := 0; x < Size; x++ {
				if got := img.RGBAAt(x, y); got != midLand {
					t.Fatalf("z=%d pixel (%d,%d) = %v, want %v", z, x, y, got, midLand)
				}
			}
		}
	}
}

func TestRenderSamplesTileRegion(t *testing.T) {
	r := NewRenderer(gradient{}, 1)

	// z=1, x=1 covers sx in [0.5, 1): ocean would need sx < 0.5.
	img := r.Render(Address{Z: 1, X: 1, Y: 0})
	assert.Equal(t, midLand, img.RGBAAt(0, 0), "left edge samples sx=0.5")
	assert.Equal(t, Snow, img.RGBAAt(Size-1, 0), "right edge samples sx just below 1")

	img = r.Render(Address{Z: 1, X: 0, Y: 0})
	assert.Equal(t, Ocean, img.RGBAAt(Size-1, 10))
}

func TestRenderWorkersMatchSequential(t *testing.T) {
	field := noise.NewPerlin(5)
	seq := NewNoiseRenderer(field, 30, 1)
	par := NewNoiseRenderer(field, 30, 8)

	addr := Address{Z: 6, X: 12, Y: 40}
	assert.Equal(t, seq.Render(addr).Pix, par.Render(addr).Pix)
}

func TestRenderUsesHeightmap(t *testing.T) {
	img := NewRenderer(constHeight(0.1), 0).Render(Address{})
	assert.Equal(t, Ocean, img.RGBAAt(100, 100))
}

func TestServiceDeterministic(t *testing.T) {
	svc := NewService(NewNoiseRenderer(noise.NewPerlin(0), 30, 4), NewEncoder(PNG))

	for _, addr := range []Address{{Z: 0}, {Z: 3, X: 2, Y: 5}, {Z: 12, X: 1000.5, Y: 77}} {
		a, err := svc.Tile(addr)
		require.NoError(t, err)
		b, err := svc.Tile(addr)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(a, b), "tile %v not byte-identical", addr)
	}
}

func TestServiceFallbackMatchesZeroAddress(t *testing.T) {
	svc := NewService(NewNoiseRenderer(noise.NewPerlin(0), 30, 2), NewEncoder(PNG))

	zero, err := svc.Tile(Address{Z: 0, X: 0, Y: 0})
	require.NoError(t, err)

	for _, path := range []string{"/tiles/1/2", "/tiles/a/b/c", "/tiles/1/2/north"} {
		got, err := svc.Tile(ParsePath(path))
		require.NoError(t, err)
		assert.Equal(t, zero, got, path)
	}
}

func TestEncodePNG(t *testing.T) {
	img := NewRenderer(constHeight(0.5), 1).Render(Address{})
	enc := NewEncoder(PNG)

	data, err := enc.EncodeBytes(img)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, Size, cfg.Width)
	assert.Equal(t, Size, cfg.Height)
	// Color type 2 (truecolor, 8-bit RGB) sits at byte 25 of the IHDR.
	assert.Equal(t, byte(8), data[24], "bit depth")
	assert.Equal(t, byte(2), data[25], "color type")

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	r, g, b, a := decoded.At(17, 200).RGBA()
	assert.Equal(t, []uint32{0, 200, 0, 255}, []uint32{r >> 8, g >> 8, b >> 8, a >> 8})
}

func TestEncodeTIFF(t *testing.T) {
	img := NewRenderer(constHeight(0.95), 1).Render(Address{})
	enc := NewEncoder(TIFF)
	assert.Equal(t, "image/tiff", enc.Format().ContentType())

	data, err := enc.EncodeBytes(img)
	require.NoError(t, err)

	decoded, err := tiff.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, Size, Size), decoded.Bounds())
	r, g, b, _ := decoded.At(3, 3).RGBA()
	assert.Equal(t, []uint32{241, 241, 241}, []uint32{r >> 8, g >> 8, b >> 8})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, assert.AnError }

func TestEncodeSurfacesWriteErrors(t *testing.T) {
	img := NewRenderer(constHeight(0.5), 1).Render(Address{})
	for _, f := range []Format{PNG, TIFF} {
		err := NewEncoder(f).Encode(failingWriter{}, img)
		assert.Error(t, err, string(f))
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PNG")
	require.NoError(t, err)
	assert.Equal(t, PNG, f)
	assert.Equal(t, "image/png", f.ContentType())

	f, err = ParseFormat("tiff")
	require.NoError(t, err)
	assert.Equal(t, TIFF, f)

	_, err = ParseFormat("jpeg")
	assert.Error(t, err)
}
