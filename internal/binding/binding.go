// Package binding gives UI-like consumers a mounted view of a synced document.
//
// A Binding keeps a local copy of the document that is refreshed on every
// change while mounted. The domain hooks in this package (AdminSettings,
// EmployerSettings, Content, Partners) add typed mutation wrappers on top.
package binding

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dyluth/careersync/internal/registry"
	"github.com/dyluth/careersync/internal/syncdoc"
)

var (
	// ErrNotFound is returned when a record id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNotPersisted is returned when a save could not reach storage.
	// The in-memory value is still updated.
	ErrNotPersisted = errors.New("changes could not be persisted")
)

// Binding is a consumer's mounted view of a document.
type Binding[T any] struct {
	doc *syncdoc.Document[T]

	mu      sync.Mutex
	value   T
	handle  *registry.Handle
	mounted bool
	renders int
}

// Bind creates an unmounted binding seeded with the document's current value.
func Bind[T any](doc *syncdoc.Document[T]) *Binding[T] {
	return &Binding[T]{doc: doc, value: doc.Snapshot()}
}

// Mount subscribes to the document and re-syncs the local copy. Mounting an
// already mounted binding does nothing.
func (b *Binding[T]) Mount() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mounted {
		return
	}
	b.mounted = true
	b.handle = b.doc.Subscribe(b)
	b.value = b.doc.Snapshot()
}

// Unmount unsubscribes. Unmounting twice does nothing.
func (b *Binding[T]) Unmount() {
	b.mu.Lock()
	h := b.handle
	b.handle = nil
	b.mounted = false
	b.mu.Unlock()

	if h != nil {
		h.Unsubscribe()
	}
}

func (b *Binding[T]) Mounted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mounted
}

// Value returns the local copy.
func (b *Binding[T]) Value() T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

// Renders counts how many change notifications refreshed the local copy.
func (b *Binding[T]) Renders() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renders
}

// Document returns the bound document.
func (b *Binding[T]) Document() *syncdoc.Document[T] {
	return b.doc
}

// OnChange copies the document's current value, which is never older than
// the notified snapshot even when notifications race.
func (b *Binding[T]) OnChange(T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.mounted {
		return
	}
	b.value = b.doc.Snapshot()
	b.renders++
}

// Notifier shows mutation confirmations and warnings to the user.
type Notifier interface {
	Success(message string)
	Warning(message string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Warning(string) {}

type hookOptions struct {
	notifier   Notifier
	latency    time.Duration
	clock      func() time.Time
	authorID   string
	authorName string
}

// Option configures a domain hook.
type Option func(*hookOptions)

func WithNotifier(n Notifier) Option {
	return func(o *hookOptions) { o.notifier = n }
}

// WithLatency delays every mutation wrapper by d before it applies.
func WithLatency(d time.Duration) Option {
	return func(o *hookOptions) { o.latency = d }
}

func WithClock(clock func() time.Time) Option {
	return func(o *hookOptions) { o.clock = clock }
}

// WithAuthor sets the author recorded on new content.
func WithAuthor(id, name string) Option {
	return func(o *hookOptions) {
		o.authorID = id
		o.authorName = name
	}
}

func newHookOptions(opts []Option) hookOptions {
	o := hookOptions{
		notifier:   nopNotifier{},
		clock:      time.Now,
		authorID:   "admin",
		authorName: "Administrator",
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// settle waits out the configured latency unless ctx ends first.
func (o hookOptions) settle(ctx context.Context) error {
	if o.latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(o.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (o hookOptions) now() time.Time {
	return o.clock().UTC()
}

// advance returns a timestamp strictly after prev.
func (o hookOptions) advance(prev time.Time) time.Time {
	now := o.now()
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}

type mountChecker interface {
	Mounted() bool
}

// confirm notifies only while the consumer is still mounted.
func (o hookOptions) confirm(m mountChecker, message string) {
	if m.Mounted() {
		o.notifier.Success(message)
	}
}

func (o hookOptions) warn(m mountChecker, message string) {
	if m.Mounted() {
		o.notifier.Warning(message)
	}
}

// report confirms a committed change, or warns when it stayed in memory only.
func (o hookOptions) report(m mountChecker, persisted bool, message string) {
	if persisted {
		o.confirm(m, message)
		return
	}
	o.warn(m, message+" but could not be saved; the change is kept for this session")
}
