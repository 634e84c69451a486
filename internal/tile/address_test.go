package tile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		path string
		want Address
	}{
		{"/tiles/123/3/2/5", Address{Z: 3, X: 2, Y: 5}},
		{"/tiles/3/2/5", Address{Z: 3, X: 2, Y: 5}},
		{"3/2/5", Address{Z: 3, X: 2, Y: 5}},
		{"//tiles//0//0.5//1.25/", Address{Z: 0, X: 0.5, Y: 1.25}},
		{"/tiles/1/7/-3.5/1e2", Address{Z: 7, X: -3.5, Y: 100}},
		{"/tiles/9/4096/4096", Address{Z: 9, X: 4096, Y: 4096}},

		// fallbacks
		{"", Address{}},
		{"/", Address{}},
		{"/tiles", Address{}},
		{"/tiles/1/2", Address{}},
		{"/tiles/x/2/3", Address{}},
		{"/tiles/1/a/3", Address{}},
		{"/tiles/1/2/b", Address{}},
		{"/tiles/-1/2/3", Address{}},
		{"/tiles/1.5/2/3", Address{}},
		{"/tiles/4294967296/2/3", Address{}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePath(tt.path))
		})
	}
}

func TestPathSegments(t *testing.T) {
	assert.Equal(t, []string{"tiles", "1", "2"}, PathSegments("/tiles//1/2/"))
	assert.Empty(t, PathSegments("///"))
}

func TestRegion(t *testing.T) {
	r := Address{Z: 0, X: 0, Y: 0}.Region()
	assert.Equal(t, Region{OriginX: 0, OriginY: 0, Span: 1}, r)

	r = Address{Z: 2, X: 1, Y: 3}.Region()
	assert.Equal(t, 0.25, r.Span)
	assert.Equal(t, 0.25, r.OriginX)
	assert.Equal(t, 0.75, r.OriginY)

	sx, sy := r.At(0.5, 0.5)
	assert.Equal(t, 0.375, sx)
	assert.Equal(t, 0.875, sy)
}

func TestRegionFractionalAndOutOfRange(t *testing.T) {
	r := Address{Z: 1, X: 0.5, Y: 10}.Region()
	assert.Equal(t, 0.25, r.OriginX, "fractional indices are preserved")
	assert.Equal(t, 5.0, r.OriginY, "indices beyond 2^z extrapolate")

	deep := Address{Z: 2000, X: 1, Y: 1}.Region()
	assert.Equal(t, 0.0, deep.Span)
}

func TestAddressString(t *testing.T) {
	assert.Equal(t, "3/1.5/2", Address{Z: 3, X: 1.5, Y: 2}.String())
}
