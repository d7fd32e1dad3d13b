package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/dyluth/careersync/internal/persist"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastWritesSignalAndTimestamp(t *testing.T) {
	ctx := context.Background()
	backend := persist.NewMemoryBackend("tab-a")
	b := NewBroadcaster(backend, "tab-a", zerolog.Nop())

	at := time.Date(2025, time.May, 4, 10, 0, 0, 0, time.UTC)
	require.NoError(t, b.Broadcast(ctx, domain.SyncSignal{
		Type:      "cms_content.updated",
		Data:      json.RawMessage(`[]`),
		Timestamp: at,
	}))

	raw, err := backend.Read(ctx, domain.SlotSyncData)
	require.NoError(t, err)
	var signal domain.SyncSignal
	require.NoError(t, json.Unmarshal(raw, &signal))
	assert.Equal(t, "cms_content.updated", signal.Type)
	assert.Equal(t, "tab-a", signal.Source)
	assert.True(t, signal.Timestamp.Equal(at))

	stamp, err := backend.Read(ctx, domain.SlotSyncTimestamp)
	require.NoError(t, err)
	assert.Equal(t, `"2025-05-04T10:00:00Z"`, string(stamp))
}

func TestSignalWatcher(t *testing.T) {
	ctx := context.Background()
	backend := persist.NewMemoryBackend("shared")
	other := NewBroadcaster(backend, "tab-b", zerolog.Nop())
	self := NewBroadcaster(backend, "tab-a", zerolog.Nop())

	var received []domain.SyncSignal
	w := NewSignalWatcher(backend, "tab-a", func(_ context.Context, s domain.SyncSignal) {
		received = append(received, s)
	})

	t.Run("first poll only primes", func(t *testing.T) {
		require.NoError(t, other.Broadcast(ctx, domain.SyncSignal{Type: "old"}))
		require.NoError(t, w.Poll(ctx))
		assert.Empty(t, received)
	})

	t.Run("unchanged timestamp is ignored", func(t *testing.T) {
		require.NoError(t, w.Poll(ctx))
		assert.Empty(t, received)
	})

	t.Run("new signal from another source is delivered", func(t *testing.T) {
		require.NoError(t, other.Broadcast(ctx, domain.SyncSignal{Type: "partners.updated", Timestamp: time.Now().Add(time.Second)}))
		require.NoError(t, w.Poll(ctx))
		require.Len(t, received, 1)
		assert.Equal(t, "partners.updated", received[0].Type)
		assert.Equal(t, "tab-b", received[0].Source)
	})

	t.Run("own signals are ignored", func(t *testing.T) {
		require.NoError(t, self.Broadcast(ctx, domain.SyncSignal{Type: "mine", Timestamp: time.Now().Add(2 * time.Second)}))
		require.NoError(t, w.Poll(ctx))
		assert.Len(t, received, 1)
	})

	t.Run("malformed signal body is a poll failure", func(t *testing.T) {
		backend.Set(domain.SlotSyncData, []byte(`{"type":`), "tab-b")
		backend.Set(domain.SlotSyncTimestamp, []byte(`"later"`), "tab-b")
		assert.Error(t, w.Poll(ctx))
		assert.Len(t, received, 1)

		assert.NoError(t, w.Poll(ctx), "a malformed signal is skipped once reported")
	})
}

// flakySignalBackend fails reads of the signal body a set number of times.
type flakySignalBackend struct {
	*persist.MemoryBackend
	mu       sync.Mutex
	failures int
}

func (f *flakySignalBackend) Read(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	fail := key == domain.SlotSyncData && f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()
	if fail {
		return nil, errors.New("transient")
	}
	return f.MemoryBackend.Read(ctx, key)
}

func TestSignalWatcherRetriesAfterTransientFailure(t *testing.T) {
	ctx := context.Background()
	backend := &flakySignalBackend{MemoryBackend: persist.NewMemoryBackend("shared")}
	other := NewBroadcaster(backend, "tab-b", zerolog.Nop())

	var received []domain.SyncSignal
	w := NewSignalWatcher(backend, "tab-a", func(_ context.Context, s domain.SyncSignal) {
		received = append(received, s)
	})
	require.NoError(t, w.Poll(ctx))

	require.NoError(t, other.Broadcast(ctx, domain.SyncSignal{Type: "cms_content.updated"}))
	backend.mu.Lock()
	backend.failures = 1
	backend.mu.Unlock()

	err := w.Poll(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transient")
	assert.Empty(t, received)

	require.NoError(t, w.Poll(ctx))
	require.Len(t, received, 1)
	assert.Equal(t, "cms_content.updated", received[0].Type)

	require.NoError(t, w.Poll(ctx))
	assert.Len(t, received, 1, "a delivered signal is not delivered again")
}

func TestSignalWatcherReadFailure(t *testing.T) {
	w := NewSignalWatcher(failingBackend{}, "tab-a", func(context.Context, domain.SyncSignal) {})
	assert.Error(t, w.Poll(context.Background()))
}

func TestSignalWatcherDrivesPoller(t *testing.T) {
	w := NewSignalWatcher(failingBackend{}, "tab-a", func(context.Context, domain.SyncSignal) {})
	p := NewPoller(Config{Interval: 5 * time.Millisecond, MaxFailures: 3}, w.Poll)

	p.Start(context.Background())
	defer p.Stop()

	require.Eventually(t, func() bool { return p.Status() == StatusDisconnected }, 2*time.Second, 5*time.Millisecond)
	assert.Contains(t, p.LastError().Error(), "network down")
}

type failingBackend struct{}

func (failingBackend) Read(context.Context, string) ([]byte, error) {
	return nil, errors.New("network down")
}
func (failingBackend) Write(context.Context, string, []byte) error { return errors.New("network down") }
func (failingBackend) Delete(context.Context, string) error        { return errors.New("network down") }
