package persist

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend keeps slots in process memory. Every write is pushed to all
// open feeds, which makes it useful for tests and for the "memory" backend type.
type MemoryBackend struct {
	mu     sync.RWMutex
	slots  map[string][]byte
	feeds  map[int]chan Change
	nextID int
	source string
}

// NewMemoryBackend creates an empty backend. source tags the changes it emits.
func NewMemoryBackend(source string) *MemoryBackend {
	return &MemoryBackend{
		slots:  make(map[string][]byte),
		feeds:  make(map[int]chan Change),
		source: source,
	}
}

func (m *MemoryBackend) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.slots[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryBackend) Write(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.slots[key] = append([]byte(nil), data...)
	m.broadcastLocked(Change{Key: key, Value: append([]byte(nil), data...), Source: m.source, At: time.Now()})
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.slots[key]; !ok {
		return nil
	}
	delete(m.slots, key)
	m.broadcastLocked(Change{Key: key, Source: m.source, At: time.Now()})
	return nil
}

// Set writes a slot as if another process had done it, tagging the change
// with source instead of the backend's own.
func (m *MemoryBackend) Set(key string, data []byte, source string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.slots[key] = append([]byte(nil), data...)
	m.broadcastLocked(Change{Key: key, Value: append([]byte(nil), data...), Source: source, At: time.Now()})
}

// Keys returns the names of all stored slots.
func (m *MemoryBackend) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.slots))
	for k := range m.slots {
		keys = append(keys, k)
	}
	return keys
}

// broadcastLocked drops the change for feeds whose buffer is full.
func (m *MemoryBackend) broadcastLocked(change Change) {
	for _, ch := range m.feeds {
		select {
		case ch <- change:
		default:
		}
	}
}

// Watch streams every subsequent write until ctx is done or the feed is closed.
func (m *MemoryBackend) Watch(ctx context.Context) (*Feed, error) {
	ch := make(chan Change, 32)
	errs := make(chan error)

	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.feeds[id] = ch
	m.mu.Unlock()

	watchCtx, cancel := context.WithCancel(ctx)
	go func() {
		<-watchCtx.Done()
		m.mu.Lock()
		delete(m.feeds, id)
		close(ch)
		close(errs)
		m.mu.Unlock()
	}()

	return NewFeed(ch, errs, cancel), nil
}
