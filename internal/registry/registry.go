// Package registry tracks the subscribers of one synced document and
// notifies them after every mutation.
package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/rs/zerolog"
)

// Subscriber receives the document snapshot after each change.
// Snapshots are shared between subscribers and must be treated as read-only.
type Subscriber[T any] interface {
	OnChange(snapshot T)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc[T any] func(snapshot T)

func (f SubscriberFunc[T]) OnChange(snapshot T) { f(snapshot) }

type entry[T any] struct {
	id     uint64
	sub    Subscriber[T]
	handle *Handle
}

// Registry is an ordered set of subscribers.
type Registry[T any] struct {
	mu      sync.Mutex
	nextID  uint64
	entries []*entry[T]
	log     zerolog.Logger
}

// New creates an empty registry. Subscriber panics are logged to log.
func New[T any](log zerolog.Logger) *Registry[T] {
	return &Registry[T]{log: log}
}

// Subscribe adds sub and returns its handle. Subscribing the same comparable
// subscriber twice returns the existing handle without registering it again.
func (r *Registry[T]) Subscribe(sub Subscriber[T]) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	if isComparable(sub) {
		for _, e := range r.entries {
			if sameSubscriber(e.sub, sub) {
				return e.handle
			}
		}
	}

	r.nextID++
	id := r.nextID
	h := &Handle{release: func() { r.remove(id) }}
	r.entries = append(r.entries, &entry[T]{id: id, sub: sub, handle: h})
	return h
}

func (r *Registry[T]) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}

// Len returns the number of live subscribers.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// NotifyAll delivers snapshot to every subscriber in registration order and
// returns how many returned normally. A panicking subscriber is logged and
// skipped; the rest are still notified. Subscribers may subscribe or
// unsubscribe from within OnChange; such changes apply from the next call.
func (r *Registry[T]) NotifyAll(snapshot T) int {
	r.mu.Lock()
	subs := make([]Subscriber[T], len(r.entries))
	for i, e := range r.entries {
		subs[i] = e.sub
	}
	r.mu.Unlock()

	delivered := 0
	for i, sub := range subs {
		if r.deliver(i, sub, snapshot) {
			delivered++
		}
	}
	return delivered
}

func (r *Registry[T]) deliver(pos int, sub Subscriber[T], snapshot T) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn().
				Int("position", pos).
				Str("subscriber", fmt.Sprintf("%T", sub)).
				Interface("panic", rec).
				Msg("subscriber failed, continuing with remaining subscribers")
			ok = false
		}
	}()
	sub.OnChange(snapshot)
	return true
}

// isComparable guards == on interface values holding funcs, maps or slices.
func isComparable(v any) bool {
	return v != nil && reflect.TypeOf(v).Comparable()
}

// sameSubscriber compares two subscribers. A comparable struct can still
// hold an interface field whose dynamic value is a func, and == on it
// panics; such subscribers are treated as distinct.
func sameSubscriber(a, b any) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// Handle removes a subscription. Unsubscribe is idempotent.
type Handle struct {
	once     sync.Once
	mu       sync.Mutex
	released bool
	release  func()
}

// Unsubscribe removes the subscriber. Calling it more than once is harmless.
func (h *Handle) Unsubscribe() {
	h.once.Do(func() {
		h.release()
		h.mu.Lock()
		h.released = true
		h.mu.Unlock()
	})
}

// Active reports whether the subscription is still registered.
func (h *Handle) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.released
}
