package noise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingField records calls and returns a constant.
type countingField struct {
	value float64
	calls [][3]float64
}

func (f *countingField) Eval3(x, y, z float64) float64 {
	f.calls = append(f.calls, [3]float64{x, y, z})
	return f.value
}

func TestNewField(t *testing.T) {
	f, err := New(KindPerlin, 0)
	require.NoError(t, err)
	assert.IsType(t, &Perlin{}, f)

	f, err = New("OpenSimplex", 0)
	require.NoError(t, err)
	assert.IsType(t, &OpenSimplex{}, f)

	f, err = New("", 0)
	require.NoError(t, err)
	assert.IsType(t, &Perlin{}, f)

	_, err = New("value", 0)
	assert.Error(t, err)
}

func TestPerlinZeroOnLattice(t *testing.T) {
	f := NewPerlin(0)
	assert.InDelta(t, 0.0, f.Eval3(0, 0, 0), 1e-12)
	assert.InDelta(t, 0.0, f.Eval3(0, 0, Slice), 1e-12)
	assert.InDelta(t, 0.0, f.Eval3(3, -2, Slice), 1e-12)
}

func TestFieldsDeterministicAndBounded(t *testing.T) {
	for _, kind := range []Kind{KindPerlin, KindOpenSimplex} {
		t.Run(string(kind), func(t *testing.T) {
			a, err := New(kind, 99)
			require.NoError(t, err)
			b, err := New(kind, 99)
			require.NoError(t, err)

			nonZero := false
			for i := 0; i < 200; i++ {
				x := float64(i)*0.37 - 20
				y := float64(i)*0.61 + 3
				va := a.Eval3(x, y, Slice)
				assert.Equal(t, va, b.Eval3(x, y, Slice))
				assert.False(t, math.IsNaN(va))
				assert.LessOrEqual(t, math.Abs(va), 1.5)
				if va != 0 {
					nonZero = true
				}
			}
			assert.True(t, nonZero, "field should vary off the lattice")
		})
	}
}

func TestSamplerOctaves(t *testing.T) {
	s := NewSampler(&countingField{}, 0)
	assert.Equal(t, 0, s.Octaves(0))
	assert.Equal(t, 0, s.Octaves(1))
	assert.Equal(t, 1, s.Octaves(2))
	assert.Equal(t, 9, s.Octaves(10))
	assert.Equal(t, math.MaxUint32-1, s.Octaves(math.MaxUint32))

	capped := NewSampler(&countingField{}, 30)
	assert.Equal(t, 30, capped.Octaves(1000))
	assert.Equal(t, 5, capped.Octaves(6))
}

func TestSamplerCapAt53IsNegligible(t *testing.T) {
	capped := NewSampler(&countingField{value: 1}, 53)
	uncapped := NewSampler(&countingField{value: 1}, 0)

	for _, z := range []uint32{55, 60, 80} {
		diff := math.Abs(uncapped.Height(0.1, 0.2, z) - capped.Height(0.1, 0.2, z))
		assert.LessOrEqual(t, diff, math.Ldexp(1, -52), "z=%d", z)
	}

	// A cap of 30 drops a tail near 2^-30, far above float64 resolution.
	low := NewSampler(&countingField{value: 1}, 30)
	diff := uncapped.Height(0.1, 0.2, 60) - low.Height(0.1, 0.2, 60)
	assert.Greater(t, diff, math.Ldexp(1, -31))
}

func TestSamplerZeroOctavesIsExactlyHalf(t *testing.T) {
	field := &countingField{value: 0.9}
	s := NewSampler(field, 0)

	for _, z := range []uint32{0, 1} {
		assert.Equal(t, 0.5, s.Normalized(0.3, 0.7, z))
		assert.Equal(t, 0.0, s.Height(123.4, -5, z))
	}
	assert.Empty(t, field.calls, "no octave should be evaluated at z <= 1")
}

func TestSamplerOctaveFrequenciesAndAmplitudes(t *testing.T) {
	field := &countingField{value: 1}
	s := NewSampler(field, 0)

	h := s.Height(0.25, 0.5, 4)

	// Three octaves with amplitudes 1, 0.5, 0.25 and no renormalization.
	assert.Equal(t, 1.75, h)
	require.Len(t, field.calls, 3)
	for i, call := range field.calls {
		freq := DetailScale * math.Pow(2, float64(i))
		assert.Equal(t, 0.25*freq, call[0])
		assert.Equal(t, 0.5*freq, call[1])
		assert.Equal(t, Slice, call[2])
	}
	assert.Equal(t, 1.375, s.Normalized(0.25, 0.5, 4))
}

func TestSamplerNotClamped(t *testing.T) {
	s := NewSampler(&countingField{value: -1}, 0)
	// Four octaves of -1: 1 + 0.5 + 0.25 + 0.125 below zero.
	assert.Equal(t, (1-1.875)/2, s.Normalized(0.1, 0.1, 5))
}
