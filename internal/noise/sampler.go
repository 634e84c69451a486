package noise

import "math"

const (
	// BaseZoom is the zoom level at and below which no octaves are summed.
	BaseZoom = 1

	// DetailScale is the frequency of the first octave.
	DetailScale = 50.0

	// Slice is the fixed third coordinate selecting a 2-D slice of the field.
	Slice = 1.0
)

// Sampler sums octaves of a Field. Octave i has amplitude 1/2^i and
// frequency DetailScale*2^i; zoom z contributes z-BaseZoom octaves.
type Sampler struct {
	field      Field
	maxOctaves int
}

// NewSampler wraps field. maxOctaves caps the octave count at extreme zoom
// levels; 0 leaves it uncapped.
func NewSampler(field Field, maxOctaves int) *Sampler {
	return &Sampler{field: field, maxOctaves: maxOctaves}
}

// Octaves returns how many octaves are summed at zoom z.
func (s *Sampler) Octaves(z uint32) int {
	if z <= BaseZoom {
		return 0
	}
	n := int(z - BaseZoom)
	if s.maxOctaves > 0 && n > s.maxOctaves {
		n = s.maxOctaves
	}
	return n
}

// Height returns the raw octave sum at (sx, sy). The sum is not divided by
// the total amplitude, so its range widens slightly with the octave count.
func (s *Sampler) Height(sx, sy float64, z uint32) float64 {
	octaves := s.Octaves(z)
	height := 0.0
	for i := 0; i < octaves; i++ {
		amplitude := math.Ldexp(1, -i)
		frequency := DetailScale / amplitude
		height += amplitude * s.field.Eval3(sx*frequency, sy*frequency, Slice)
	}
	return height
}

// Normalized maps Height from [-1, 1] onto [0, 1] without clamping. With no
// octaves it is exactly 0.5.
func (s *Sampler) Normalized(sx, sy float64, z uint32) float64 {
	return (s.Height(sx, sy, z) + 1) / 2
}
