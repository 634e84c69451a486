package worlds

import (
	"errors"
	"strconv"
	"sync"
)

var (
	// ErrNotFound reports a lookup for an id the registry does not hold.
	ErrNotFound = errors.New("world not found")

	// ErrInvalidID reports an id that does not parse as an unsigned 64-bit integer.
	ErrInvalidID = errors.New("invalid world id")
)

// Registry maps world ids to worlds. All methods are safe for concurrent use
// and hold the lock only for the map access itself.
type Registry struct {
	mu     sync.Mutex
	worlds map[uint64]World
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		worlds: make(map[uint64]World),
	}
}

// Get returns a copy of the world stored under id.
func (r *Registry) Get(id uint64) (World, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.worlds[id]
	return w, ok
}

// Store inserts w, replacing any world already stored under w.ID.
func (r *Registry) Store(w World) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.worlds[w.ID] = w
}

// Exists reports whether a world is stored under id.
func (r *Registry) Exists(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.worlds[id]
	return ok
}

// Len returns the number of stored worlds.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.worlds)
}

// Lookup parses raw as a world id and returns the matching world. The error
// wraps ErrInvalidID or ErrNotFound.
func (r *Registry) Lookup(raw string) (World, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return World{}, &LookupError{Raw: raw, Err: ErrInvalidID}
	}
	w, ok := r.Get(id)
	if !ok {
		return World{}, &LookupError{Raw: raw, Err: ErrNotFound}
	}
	return w, nil
}

// LookupError carries the raw id of a failed lookup.
type LookupError struct {
	Raw string
	Err error
}

func (e *LookupError) Error() string {
	if errors.Is(e.Err, ErrInvalidID) {
		return "Invalid world ID: " + strconv.Quote(e.Raw)
	}
	return "No world with ID " + e.Raw
}

func (e *LookupError) Unwrap() error { return e.Err }
