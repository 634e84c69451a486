// Package tile renders procedurally generated map tiles.
package tile

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Size is the width and height of every tile in pixels.
const Size = 256

// Address locates a tile in the power-of-two pyramid over the unit square.
// X and Y are tile indices at zoom Z; fractional and out-of-range values are
// allowed and extrapolate beyond the unit square.
type Address struct {
	Z uint32
	X float64
	Y float64
}

func (a Address) String() string {
	return fmt.Sprintf("%d/%s/%s", a.Z,
		strconv.FormatFloat(a.X, 'f', -1, 64),
		strconv.FormatFloat(a.Y, 'f', -1, 64))
}

// Region is the square of the unit plane a tile covers.
type Region struct {
	OriginX, OriginY float64
	Span             float64
}

// Region maps the address onto the plane: span 1/2^Z, origin (X, Y)*span.
func (a Address) Region() Region {
	span := math.Ldexp(1, -int(a.Z))
	return Region{
		OriginX: span * a.X,
		OriginY: span * a.Y,
		Span:    span,
	}
}

// At returns the sampling coordinate of a point at normalized position
// (px, py) in [0,1)² within the region.
func (r Region) At(px, py float64) (float64, float64) {
	return r.OriginX + r.Span*px, r.OriginY + r.Span*py
}

// PathSegments splits a URL path on '/' and drops empty segments.
func PathSegments(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}

// ParseAddress reads the last three segments as z, x, y. Fewer than three
// segments, or any segment that fails to parse, yields the zero address.
func ParseAddress(segments []string) Address {
	if len(segments) < 3 {
		return Address{}
	}
	tail := segments[len(segments)-3:]

	z, err := strconv.ParseUint(tail[0], 10, 32)
	if err != nil {
		return Address{}
	}
	x, err := strconv.ParseFloat(tail[1], 64)
	if err != nil {
		return Address{}
	}
	y, err := strconv.ParseFloat(tail[2], 64)
	if err != nil {
		return Address{}
	}
	return Address{Z: uint32(z), X: x, Y: y}
}

// ParsePath is ParseAddress over the segments of a URL path.
func ParsePath(path string) Address {
	return ParseAddress(PathSegments(path))
}
