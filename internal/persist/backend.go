// Package persist reads and writes synced documents to durable slots.
//
// A Backend stores raw JSON under a slot name. An Adapter binds one slot to a
// Go type and never lets a storage or decoding failure escape: reads fall back
// to defaults and writes report failure with a logged warning.
package persist

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by Backend.Read when a slot has never been written.
var ErrNotFound = errors.New("slot not found")

// Backend is durable key/value storage for raw JSON slots.
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Change describes a slot written by another process (or another backend
// handle in this process). Value is nil when the slot was deleted.
type Change struct {
	Key    string
	Value  []byte
	Source string
	At     time.Time
}

// Watcher is implemented by backends that can push slot changes.
type Watcher interface {
	Watch(ctx context.Context) (*Feed, error)
}

// Feed is a live stream of slot changes. Call Close() to stop it.
type Feed struct {
	changes <-chan Change
	errors  <-chan error
	cancel  context.CancelFunc
	once    sync.Once
}

// NewFeed wraps channels produced by a backend's watch goroutine.
// cancel must stop that goroutine, which in turn closes both channels.
func NewFeed(changes <-chan Change, errs <-chan error, cancel context.CancelFunc) *Feed {
	return &Feed{changes: changes, errors: errs, cancel: cancel}
}

// Changes returns the channel of changes. It is closed when the feed stops.
func (f *Feed) Changes() <-chan Change {
	return f.changes
}

// Errors returns non-fatal watch errors.
func (f *Feed) Errors() <-chan error {
	return f.errors
}

// Close stops the feed. Safe to call multiple times.
func (f *Feed) Close() error {
	f.once.Do(f.cancel)
	return nil
}
