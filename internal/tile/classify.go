package tile

import (
	"image/color"
	"math"
)

const (
	seaThreshold  = 0.5
	snowThreshold = 0.9
	landGreen     = 0.7852
)

var (
	Ocean = color.RGBA{R: 59, G: 131, B: 255, A: 255}
	Snow  = color.RGBA{R: 241, G: 241, B: 241, A: 255}
)

// Classify colors a normalized height. Heights below 0.5 are ocean, above
// 0.9 snow; the band between, both ends included, is a fixed green with red
// and blue tracking elevation.
func Classify(height float64) color.RGBA {
	switch {
	case height < seaThreshold:
		return Ocean
	case height > snowThreshold:
		return Snow
	}
	scale := (height - seaThreshold) / (snowThreshold - seaThreshold)
	rb := channel(scale)
	return color.RGBA{R: rb, G: channel(landGreen), B: rb, A: 255}
}

// channel converts a [0,1] intensity to 8 bits, saturating outside that
// range and mapping NaN to 0.
func channel(v float64) uint8 {
	c := math.Round(v * 255)
	switch {
	case c >= 255:
		return 255
	case c > 0:
		return uint8(c)
	default:
		return 0
	}
}
