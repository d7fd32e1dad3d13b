// Package store holds the authoritative in-memory value of one synced document.
//
// A Store is shared by every consumer in the process. Reads return deep copies
// so callers can never mutate the shared value behind the store's back.
package store

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Patch is a partial update keyed by the JSON names of T's top-level fields.
//
// Write merges one level deep: each key in the patch replaces the whole
// top-level value of the same name. A patch carrying {"general": {...}}
// replaces the entire general section, so callers that want to change a
// single field of a section must send the complete section.
type Patch map[string]any

// Store is a thread-safe container for a JSON-representable value.
type Store[T any] struct {
	mu    sync.RWMutex
	value T
}

// New creates a store seeded with initial.
func New[T any](initial T) *Store[T] {
	return &Store[T]{value: clone(initial)}
}

// Read returns a deep copy of the current value.
func (s *Store[T]) Read() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.value)
}

// Write applies patch with one-level merge semantics and returns the new value.
// An error is returned only when the patch cannot be encoded into T; the
// stored value is left untouched in that case.
func (s *Store[T]) Write(patch Patch) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := merge(s.value, patch)
	if err != nil {
		var zero T
		return zero, err
	}
	s.value = next
	return clone(next), nil
}

// Replace swaps the stored value wholesale.
func (s *Store[T]) Replace(v T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = clone(v)
	return clone(s.value)
}

// Update runs fn against a copy of the current value and stores the result
// if fn returns nil.
func (s *Store[T]) Update(fn func(*T) error) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := clone(s.value)
	if err := fn(&next); err != nil {
		var zero T
		return zero, err
	}
	s.value = next
	return clone(next), nil
}

func merge[T any](current T, patch Patch) (T, error) {
	var zero T

	base, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("failed to encode current value: %w", err)
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return zero, fmt.Errorf("value is not a JSON object, cannot merge patch: %w", err)
	}

	for key, v := range patch {
		raw, err := json.Marshal(v)
		if err != nil {
			return zero, fmt.Errorf("failed to encode patch key %q: %w", key, err)
		}
		fields[key] = raw
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return zero, fmt.Errorf("failed to encode merged value: %w", err)
	}

	var next T
	if err := json.Unmarshal(merged, &next); err != nil {
		return zero, fmt.Errorf("patch does not fit the document shape: %w", err)
	}
	return next, nil
}

// clone deep-copies v through its JSON encoding. Values that cannot be
// encoded are returned as-is.
func clone[T any](v T) T {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}
