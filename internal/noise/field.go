// Package noise provides the coherent noise fields behind terrain height
// and the fractal sampler that layers them into octaves.
package noise

import (
	"fmt"
	"strings"

	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Field is a deterministic, smooth 3-D scalar field with values roughly in
// [-1, 1]. Implementations are read-only after construction and safe for
// concurrent use.
type Field interface {
	Eval3(x, y, z float64) float64
}

// Kind names a Field implementation.
type Kind string

const (
	KindPerlin      Kind = "perlin"
	KindOpenSimplex Kind = "opensimplex"
)

// New builds the field named by kind from seed.
func New(kind Kind, seed int64) (Field, error) {
	switch Kind(strings.ToLower(string(kind))) {
	case KindPerlin, "":
		return NewPerlin(seed), nil
	case KindOpenSimplex:
		return NewOpenSimplex(seed), nil
	default:
		return nil, fmt.Errorf("unknown noise kind %q", kind)
	}
}

// Perlin is classic gradient noise. It is exactly zero on integer lattice
// points, the origin included.
type Perlin struct {
	p *perlin.Perlin
}

// NewPerlin builds a single-octave Perlin field; octave layering is done by
// Sampler, not by the library.
func NewPerlin(seed int64) *Perlin {
	return &Perlin{p: perlin.NewPerlin(2, 2, 1, seed)}
}

func (f *Perlin) Eval3(x, y, z float64) float64 {
	return f.p.Noise3D(x, y, z)
}

// OpenSimplex is Kurt Spencer's OpenSimplex noise.
type OpenSimplex struct {
	n opensimplex.Noise
}

func NewOpenSimplex(seed int64) *OpenSimplex {
	return &OpenSimplex{n: opensimplex.New(seed)}
}

func (f *OpenSimplex) Eval3(x, y, z float64) float64 {
	return f.n.Eval3(x, y, z)
}
