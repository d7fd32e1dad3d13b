package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// Adapter binds one slot of a Backend to the Go type T.
type Adapter[T any] struct {
	backend Backend
	key     string
	log     zerolog.Logger
}

// NewAdapter creates an adapter for key.
func NewAdapter[T any](backend Backend, key string, log zerolog.Logger) *Adapter[T] {
	return &Adapter[T]{
		backend: backend,
		key:     key,
		log:     log.With().Str("slot", key).Logger(),
	}
}

// Key returns the slot name.
func (a *Adapter[T]) Key() string {
	return a.key
}

// Backend returns the underlying storage.
func (a *Adapter[T]) Backend() Backend {
	return a.backend
}

// Load reads and decodes the slot. It reports false when the slot is missing,
// unreadable or malformed; the failure is logged, never returned.
func (a *Adapter[T]) Load(ctx context.Context) (T, bool) {
	var zero T

	raw, ok := a.read(ctx)
	if !ok {
		return zero, false
	}

	v, err := a.Decode(raw)
	if err != nil {
		a.log.Warn().Err(err).Msg("ignoring malformed persisted value")
		return zero, false
	}
	return v, true
}

// LoadMerged returns defaults overlaid with whatever top-level keys the slot
// holds. Missing, unreadable or malformed slots yield defaults unchanged.
func (a *Adapter[T]) LoadMerged(ctx context.Context, defaults T) T {
	raw, ok := a.read(ctx)
	if !ok {
		return defaults
	}

	v, skipped, err := Overlay(defaults, raw)
	if err != nil {
		a.log.Warn().Err(err).Msg("ignoring malformed persisted value, using defaults")
		return defaults
	}
	if len(skipped) > 0 {
		a.log.Warn().Strs("keys", skipped).Msg("ignoring misshapen persisted keys, using their defaults")
	}
	return v
}

func (a *Adapter[T]) read(ctx context.Context) ([]byte, bool) {
	raw, err := a.backend.Read(ctx, a.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.log.Warn().Err(err).Msg("failed to read persisted value")
		}
		return nil, false
	}
	return raw, true
}

// Decode strictly unmarshals raw into T.
func (a *Adapter[T]) Decode(raw []byte) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to decode %s: %w", a.key, err)
	}
	return v, nil
}

// Encode marshals v in the slot's persisted format.
func (a *Adapter[T]) Encode(v T) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", a.key, err)
	}
	return data, nil
}

// Save persists v and reports whether it was written. Failures are logged;
// the caller's in-memory state stays authoritative either way.
func (a *Adapter[T]) Save(ctx context.Context, v T) bool {
	data, err := a.Encode(v)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to persist value")
		return false
	}
	if err := a.backend.Write(ctx, a.key, data); err != nil {
		a.log.Warn().Err(err).Msg("failed to persist value")
		return false
	}
	return true
}

// Clear deletes the slot and reports whether it succeeded.
func (a *Adapter[T]) Clear(ctx context.Context) bool {
	if err := a.backend.Delete(ctx, a.key); err != nil {
		a.log.Warn().Err(err).Msg("failed to clear persisted value")
		return false
	}
	return true
}

// Overlay merges raw onto defaults one level deep.
//
// When T encodes as a JSON object, each top-level key of raw that decodes into
// T replaces the default of the same name; keys that do not fit T's shape are
// skipped and reported. Other shapes (lists) are decoded wholesale. A JSON
// null is treated as absent.
func Overlay[T any](defaults T, raw []byte) (T, []string, error) {
	if !json.Valid(raw) {
		return defaults, nil, errors.New("persisted value is not valid JSON")
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return defaults, nil, nil
	}

	base, err := json.Marshal(defaults)
	if err != nil {
		return defaults, nil, fmt.Errorf("failed to encode defaults: %w", err)
	}

	if trimmed := bytes.TrimSpace(base); len(trimmed) == 0 || trimmed[0] != '{' {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return defaults, nil, fmt.Errorf("persisted value does not match expected shape: %w", err)
		}
		return v, nil, nil
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return defaults, nil, fmt.Errorf("failed to decode defaults: %w", err)
	}

	persisted := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &persisted); err != nil {
		return defaults, nil, fmt.Errorf("persisted value is not an object: %w", err)
	}

	var skipped []string
	for key, value := range persisted {
		if _, known := fields[key]; !known {
			continue
		}
		probe, _ := json.Marshal(map[string]json.RawMessage{key: value})
		var check T
		if err := json.Unmarshal(probe, &check); err != nil {
			skipped = append(skipped, key)
			continue
		}
		fields[key] = value
	}
	sort.Strings(skipped)

	merged, err := json.Marshal(fields)
	if err != nil {
		return defaults, nil, fmt.Errorf("failed to encode merged value: %w", err)
	}

	var v T
	if err := json.Unmarshal(merged, &v); err != nil {
		return defaults, nil, fmt.Errorf("failed to decode merged value: %w", err)
	}
	return v, skipped, nil
}
