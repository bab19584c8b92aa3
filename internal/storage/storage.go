// Package storage contains a generic in-memory entity store.
//
// Every collection primitive is safe for concurrent use on its own, but
// sequences of primitives (check-then-act) are not atomic; callers that need
// cross-entity invariants enforce them best-effort in the service layer.
package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound ...
var ErrNotFound = errors.New("not found")

// Predicate selects records from a collection. The collection evaluates
// predicates with a linear scan; the interface leaves room for an
// index-backed implementation without changing call sites.
type Predicate[T any] interface {
	Match(T) bool
}

type predicateFunc[T any] func(T) bool

func (f predicateFunc[T]) Match(v T) bool { return f(v) }

// Equals matches records whose field extracted by get equals value.
func Equals[T any, F comparable](get func(T) F, value F) Predicate[T] {
	return predicateFunc[T](func(v T) bool {
		return get(v) == value
	})
}

// MemberOf matches records whose sequence field extracted by get contains
// value as an element.
func MemberOf[T any, F comparable](get func(T) []F, value F) Predicate[T] {
	return predicateFunc[T](func(v T) bool {
		for _, e := range get(v) {
			if e == value {
				return true
			}
		}
		return false
	})
}

// CollectionConfig describes how a collection handles records of type T.
type CollectionConfig[T any] struct {
	// ID extracts the record's identifier.
	ID func(T) string
	// SetID returns the record with its identifier set.
	SetID func(T, string) T
	// NewID generates an identifier for created records. When nil, records
	// keep the identifier they are created with (pre-seeded member types).
	NewID func() string
	// Clone returns a deep copy of the record. When nil, records are copied
	// by value.
	Clone func(T) T
}

// Collection is an ordered in-memory collection of records of one entity
// kind. Records are returned by value from every read so callers cannot
// mutate collection state outside the Change path.
type Collection[T any] struct {
	mu    sync.RWMutex
	items []T
	cfg   CollectionConfig[T]
}

// NewCollection creates an empty collection.
func NewCollection[T any](cfg CollectionConfig[T]) *Collection[T] {
	if cfg.NewID == nil {
		cfg.NewID = func() string { return "" }
	}
	if cfg.Clone == nil {
		cfg.Clone = func(v T) T { return v }
	}
	return &Collection[T]{cfg: cfg}
}

// Create assigns a new identifier to the record, appends it and returns the
// stored record. It never fails for structurally valid input; business
// constraints are the caller's job.
func (c *Collection[T]) Create(_ context.Context, rec T) T {
	if id := c.cfg.NewID(); id != "" {
		rec = c.cfg.SetID(rec, id)
	}

	c.mu.Lock()
	c.items = append(c.items, c.cfg.Clone(rec))
	c.mu.Unlock()

	return c.cfg.Clone(rec)
}

// FindOne returns the first record in insertion order matching the
// predicate. The second value reports whether a record was found; absence
// is not an error.
func (c *Collection[T]) FindOne(_ context.Context, p Predicate[T]) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, v := range c.items {
		if p == nil || p.Match(v) {
			return c.cfg.Clone(v), true
		}
	}

	var zero T
	return zero, false
}

// FindMany returns all records matching the predicate in insertion order.
// A nil predicate matches everything. The result is a defensive copy.
func (c *Collection[T]) FindMany(_ context.Context, p Predicate[T]) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.items))
	for _, v := range c.items {
		if p == nil || p.Match(v) {
			out = append(out, c.cfg.Clone(v))
		}
	}

	return out
}

// Get returns the record with the given identifier.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, bool) {
	return c.FindOne(ctx, Equals(c.cfg.ID, id))
}

// Change applies the merge function to the record with the given identifier
// and stores the result. The identifier is preserved regardless of what the
// merge function does. Fails with ErrNotFound if no such record exists.
func (c *Collection[T]) Change(_ context.Context, id string, merge func(T) T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, v := range c.items {
		if c.cfg.ID(v) != id {
			continue
		}

		upd := c.cfg.SetID(merge(c.cfg.Clone(v)), id)
		c.items[i] = c.cfg.Clone(upd)

		return upd, nil
	}

	var zero T
	return zero, ErrNotFound
}

// Delete removes the record with the given identifier and returns it, so
// cascading logic can inspect it after removal. Fails with ErrNotFound if
// no such record exists.
func (c *Collection[T]) Delete(_ context.Context, id string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, v := range c.items {
		if c.cfg.ID(v) != id {
			continue
		}

		c.items = append(c.items[:i], c.items[i+1:]...)

		return c.cfg.Clone(v), nil
	}

	var zero T
	return zero, ErrNotFound
}

// NewUUID generates a lowercase-hyphenated UUID v4 identifier.
func NewUUID() string {
	return uuid.NewString()
}
