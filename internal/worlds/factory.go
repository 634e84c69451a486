package worlds

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/lawnchairsociety/planetmap/internal/logger"
)

const (
	// SeedLength is the length of generated seeds.
	SeedLength = 16

	seedAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// climateRange is the exclusive upper bound of generated climate values.
	climateRange = 100.0
)

// Recorder receives every world after it has been registered.
type Recorder interface {
	RecordWorld(ctx context.Context, w World) error
}

// CreateRequest carries the caller-supplied fields of a new world. A nil
// field is filled with a generated default.
type CreateRequest struct {
	Name        *string
	Seed        *string
	SeaLevel    *float64
	Temperature *float64
	Humidity    *float64
}

// Factory builds worlds and registers them.
type Factory struct {
	registry *Registry
	recorder Recorder

	// mu makes the uniqueness check and the store one step, so two
	// concurrent creations cannot claim the same fresh id.
	mu sync.Mutex

	drawID    func() uint64
	drawFloat func() float64
	drawIndex func(n int) int
}

// Option configures a Factory.
type Option func(*Factory)

// WithRecorder forwards created worlds to rec.
func WithRecorder(rec Recorder) Option {
	return func(f *Factory) { f.recorder = rec }
}

// WithIDSource replaces the random id generator.
func WithIDSource(next func() uint64) Option {
	return func(f *Factory) { f.drawID = next }
}

// WithRand draws ids, climate values and seeds from r instead of the
// global source. r is not safe for concurrent use, so the factory guards it.
func WithRand(r *rand.Rand) Option {
	return func(f *Factory) {
		var mu sync.Mutex
		f.drawID = func() uint64 {
			mu.Lock()
			defer mu.Unlock()
			return r.Uint64()
		}
		f.drawFloat = func() float64 {
			mu.Lock()
			defer mu.Unlock()
			return r.Float64()
		}
		f.drawIndex = func(n int) int {
			mu.Lock()
			defer mu.Unlock()
			return r.IntN(n)
		}
	}
}

// NewFactory creates a factory registering into registry.
func NewFactory(registry *Registry, opts ...Option) *Factory {
	f := &Factory{
		registry:  registry,
		drawID:    rand.Uint64,
		drawFloat: rand.Float64,
		drawIndex: rand.IntN,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Registry returns the registry the factory stores into.
func (f *Factory) Registry() *Registry {
	return f.registry
}

// Create builds a world from req, filling unset fields, and stores it in the
// registry before returning. Supplied values are used verbatim, without
// clamping.
func (f *Factory) Create(ctx context.Context, req CreateRequest) World {
	w := World{
		Name:        "",
		SeaLevel:    f.climate(req.SeaLevel),
		Temperature: f.climate(req.Temperature),
		Humidity:    f.climate(req.Humidity),
	}
	if req.Name != nil {
		w.Name = *req.Name
	}
	if req.Seed != nil && *req.Seed != "" {
		w.Seed = *req.Seed
	} else {
		w.Seed = f.GenerateSeed()
	}

	f.mu.Lock()
	w.ID = f.uniqueID()
	f.registry.Store(w)
	f.mu.Unlock()

	logger.Debug("World created", "id", w.ID, "name", w.Name, "seed", w.Seed)

	if f.recorder != nil {
		if err := f.recorder.RecordWorld(ctx, w); err != nil {
			logger.Warning("Failed to journal world", "id", w.ID, "error", err)
		}
	}
	return w
}

// uniqueID draws until it finds a non-zero id absent from the registry.
// Callers hold f.mu.
func (f *Factory) uniqueID() uint64 {
	id := f.drawID()
	for id == 0 || f.registry.Exists(id) {
		id = f.drawID()
	}
	return id
}

func (f *Factory) climate(v *float64) float64 {
	if v != nil {
		return *v
	}
	return f.drawFloat() * climateRange
}

// GenerateSeed returns a random alphanumeric string of SeedLength characters.
func (f *Factory) GenerateSeed() string {
	var b strings.Builder
	b.Grow(SeedLength)
	for range SeedLength {
		b.WriteByte(seedAlphabet[f.drawIndex(len(seedAlphabet))])
	}
	return b.String()
}
