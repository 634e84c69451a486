package tile

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"
	"sync"

	"golang.org/x/image/tiff"
)

// Format is a lossless tile encoding.
type Format string

const (
	PNG  Format = "png"
	TIFF Format = "tiff"
)

// ParseFormat accepts "png" or "tiff" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case PNG, TIFF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported tile format %q", s)
	}
}

// ContentType is the MIME type served with tiles of this format.
func (f Format) ContentType() string {
	if f == TIFF {
		return "image/tiff"
	}
	return "image/png"
}

// Encoder serializes tiles at 8 bits per channel.
type Encoder struct {
	format Format
	png    png.Encoder
}

// NewEncoder returns an encoder for format.
func NewEncoder(format Format) *Encoder {
	return &Encoder{
		format: format,
		png: png.Encoder{
			CompressionLevel: png.DefaultCompression,
			BufferPool:       &bufferPool{},
		},
	}
}

// Format reports the encoding this encoder produces.
func (e *Encoder) Format() Format {
	return e.format
}

// Encode writes img to w. Opaque images encode as 8-bit truecolor.
func (e *Encoder) Encode(w io.Writer, img image.Image) error {
	switch e.format {
	case TIFF:
		if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
			return fmt.Errorf("encode tiff: %w", err)
		}
	default:
		if err := e.png.Encode(w, img); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
	}
	return nil
}

// EncodeBytes encodes img into a fresh byte slice.
func (e *Encoder) EncodeBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// bufferPool lets concurrent PNG encodes reuse compression buffers.
type bufferPool struct {
	pool sync.Pool
}

func (p *bufferPool) Get() *png.EncoderBuffer {
	b, _ := p.pool.Get().(*png.EncoderBuffer)
	return b
}

func (p *bufferPool) Put(b *png.EncoderBuffer) {
	p.pool.Put(b)
}
