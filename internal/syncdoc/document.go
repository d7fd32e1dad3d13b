// Package syncdoc composes a Store, a persistence Adapter and a listener
// Registry into one synced document.
//
// Settings documents use Deferred durability: mutations only mark the
// document Dirty and nothing is written until Save. List documents use
// Immediate durability: every mutation is persisted before subscribers are
// notified, so they are always Clean.
package syncdoc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/dyluth/careersync/internal/persist"
	"github.com/dyluth/careersync/internal/registry"
	"github.com/dyluth/careersync/internal/store"
	"github.com/rs/zerolog"
)

type Durability int

const (
	Deferred Durability = iota
	Immediate
)

func (d Durability) String() string {
	if d == Immediate {
		return "immediate"
	}
	return "deferred"
}

type State string

const (
	Clean State = "clean"
	Dirty State = "dirty"
)

// Broadcaster announces local mutations to other instances.
type Broadcaster interface {
	Broadcast(ctx context.Context, signal domain.SyncSignal) error
}

// Options configures a Document.
type Options[T any] struct {
	Name        string
	Defaults    T
	Durability  Durability
	Normalize   func(T) T
	Broadcaster Broadcaster
	Source      string
	Logger      zerolog.Logger
}

// Document is a process-wide synced value.
type Document[T any] struct {
	name        string
	defaults    T
	durability  Durability
	normalize   func(T) T
	broadcaster Broadcaster
	source      string

	store     *store.Store[T]
	adapter   *persist.Adapter[T]
	listeners *registry.Registry[T]
	log       zerolog.Logger

	mu      sync.Mutex
	dirty   bool
	version uint64
}

// Open loads the document from adapter, falling back to defaults for anything
// missing or malformed.
func Open[T any](ctx context.Context, adapter *persist.Adapter[T], opts Options[T]) *Document[T] {
	name := opts.Name
	if name == "" {
		name = adapter.Key()
	}
	log := opts.Logger.With().Str("document", name).Logger()

	d := &Document[T]{
		name:        name,
		defaults:    opts.Defaults,
		durability:  opts.Durability,
		normalize:   opts.Normalize,
		broadcaster: opts.Broadcaster,
		source:      opts.Source,
		adapter:     adapter,
		listeners:   registry.New[T](log),
		log:         log,
	}

	initial := d.applyNormalize(adapter.LoadMerged(ctx, opts.Defaults))
	d.store = store.New(initial)

	log.Debug().Str("durability", opts.Durability.String()).Msg("document opened")
	return d
}

func (d *Document[T]) Name() string { return d.name }

// Key returns the persistence slot name.
func (d *Document[T]) Key() string { return d.adapter.Key() }

func (d *Document[T]) Durability() Durability { return d.durability }

// Snapshot returns a copy of the current value.
func (d *Document[T]) Snapshot() T {
	return d.store.Read()
}

// Subscribe registers sub for change notifications.
func (d *Document[T]) Subscribe(sub registry.Subscriber[T]) *registry.Handle {
	return d.listeners.Subscribe(sub)
}

// Subscribers returns the number of live subscribers.
func (d *Document[T]) Subscribers() int {
	return d.listeners.Len()
}

// Dirty reports whether there are unsaved local changes.
func (d *Document[T]) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

func (d *Document[T]) State() State {
	if d.Dirty() {
		return Dirty
	}
	return Clean
}

// Version increments on every change to the in-memory value.
func (d *Document[T]) Version() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version
}

// Write merges patch into the document one level deep.
func (d *Document[T]) Write(ctx context.Context, patch store.Patch) (T, error) {
	next, _, err := d.mutate(ctx, func() (T, error) {
		return d.store.Write(patch)
	})
	return next, err
}

// Update applies fn to a copy of the document. Returning an error from fn
// leaves the document unchanged.
func (d *Document[T]) Update(ctx context.Context, fn func(*T) error) (T, error) {
	next, _, err := d.Commit(ctx, fn)
	return next, err
}

// Commit is Update that also reports whether the change reached storage.
// persisted is false only when an Immediate document failed to save; the
// in-memory change is kept either way.
func (d *Document[T]) Commit(ctx context.Context, fn func(*T) error) (next T, persisted bool, err error) {
	return d.mutate(ctx, func() (T, error) {
		return d.store.Update(func(v *T) error {
			if err := fn(v); err != nil {
				return err
			}
			*v = d.applyNormalize(*v)
			return nil
		})
	})
}

// Replace swaps the document wholesale as a local mutation.
func (d *Document[T]) Replace(ctx context.Context, v T) T {
	next, _, _ := d.mutate(ctx, func() (T, error) {
		return d.store.Replace(d.applyNormalize(v)), nil
	})
	return next
}

// Reset restores the defaults as a local mutation.
func (d *Document[T]) Reset(ctx context.Context) T {
	return d.Replace(ctx, d.defaults)
}

func (d *Document[T]) mutate(ctx context.Context, apply func() (T, error)) (T, bool, error) {
	d.mu.Lock()
	next, err := apply()
	if err != nil {
		d.mu.Unlock()
		var zero T
		return zero, false, err
	}
	d.version++

	persisted := true
	switch d.durability {
	case Immediate:
		persisted = d.adapter.Save(ctx, next)
	default:
		d.dirty = true
	}
	d.mu.Unlock()

	d.listeners.NotifyAll(next)
	if d.durability == Immediate && persisted {
		d.broadcast(ctx, next)
	}
	return next, persisted, nil
}

// Save persists the current value and clears the dirty flag. It is safe to
// call on a clean document. The flag stays set if the write fails.
func (d *Document[T]) Save(ctx context.Context) bool {
	d.mu.Lock()
	current := d.store.Read()
	saved := d.adapter.Save(ctx, current)
	if saved {
		d.dirty = false
	}
	d.mu.Unlock()

	if saved {
		d.broadcast(ctx, current)
	}
	return saved
}

// ApplyRemote replaces the value with one written by another instance.
// Subscribers are notified; nothing is persisted or broadcast. Remote state
// wins over unsaved local edits, leaving the document Clean.
func (d *Document[T]) ApplyRemote(v T) {
	v = d.applyNormalize(v)

	d.mu.Lock()
	d.store.Replace(v)
	d.dirty = false
	d.version++
	d.mu.Unlock()

	d.listeners.NotifyAll(d.store.Read())
}

// ApplyRaw decodes a persisted payload and applies it as a remote change.
// A malformed payload is rejected and the document is left untouched.
func (d *Document[T]) ApplyRaw(raw []byte) error {
	if raw == nil {
		d.ApplyRemote(d.defaults)
		return nil
	}

	v, skipped, err := persist.Overlay(d.defaults, raw)
	if err != nil {
		return fmt.Errorf("failed to apply remote %s: %w", d.name, err)
	}
	if len(skipped) > 0 {
		return fmt.Errorf("failed to apply remote %s: misshapen keys %v", d.name, skipped)
	}
	d.ApplyRemote(v)
	return nil
}

// Reload re-reads the persisted value and applies it as a remote change.
func (d *Document[T]) Reload(ctx context.Context) {
	d.ApplyRemote(d.adapter.LoadMerged(ctx, d.defaults))
}

func (d *Document[T]) applyNormalize(v T) T {
	if d.normalize == nil {
		return v
	}
	return d.normalize(v)
}

func (d *Document[T]) broadcast(ctx context.Context, v T) {
	if d.broadcaster == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		d.log.Warn().Err(err).Msg("failed to encode sync signal")
		return
	}

	signal := domain.SyncSignal{
		Type:      domain.UpdatedSignalType(d.adapter.Key()),
		Data:      data,
		Timestamp: time.Now().UTC(),
		Source:    d.source,
	}
	if err := d.broadcaster.Broadcast(ctx, signal); err != nil {
		d.log.Warn().Err(err).Msg("failed to broadcast sync signal")
	}
}
