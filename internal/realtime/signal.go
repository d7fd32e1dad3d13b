package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/dyluth/careersync/internal/persist"
	"github.com/rs/zerolog"
)

// Broadcaster publishes sync signals through the shared storage: the signal
// body goes to realtime_sync_data and its timestamp to realtime_sync, which
// is the slot pollers watch.
type Broadcaster struct {
	backend persist.Backend
	source  string
	log     zerolog.Logger
}

func NewBroadcaster(backend persist.Backend, source string, log zerolog.Logger) *Broadcaster {
	return &Broadcaster{backend: backend, source: source, log: log}
}

// Broadcast writes signal, filling in Source and Timestamp when unset.
func (b *Broadcaster) Broadcast(ctx context.Context, signal domain.SyncSignal) error {
	if signal.Source == "" {
		signal.Source = b.source
	}
	if signal.Timestamp.IsZero() {
		signal.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(signal)
	if err != nil {
		return fmt.Errorf("failed to encode sync signal: %w", err)
	}
	if err := b.backend.Write(ctx, domain.SlotSyncData, data); err != nil {
		return fmt.Errorf("failed to write sync signal: %w", err)
	}

	stamp, err := json.Marshal(signal.Timestamp.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to encode sync timestamp: %w", err)
	}
	if err := b.backend.Write(ctx, domain.SlotSyncTimestamp, stamp); err != nil {
		return fmt.Errorf("failed to write sync timestamp: %w", err)
	}

	b.log.Debug().Str("type", signal.Type).Msg("sync signal broadcast")
	return nil
}

// SignalHandler receives signals written by other instances.
type SignalHandler func(ctx context.Context, signal domain.SyncSignal)

// SignalWatcher is a PollFunc source: each Poll checks whether the shared
// timestamp moved and, if so, hands the new signal to the handler.
type SignalWatcher struct {
	backend persist.Backend
	source  string
	handler SignalHandler

	mu     sync.Mutex
	primed bool
	last   string
}

func NewSignalWatcher(backend persist.Backend, source string, handler SignalHandler) *SignalWatcher {
	return &SignalWatcher{backend: backend, source: source, handler: handler}
}

// Poll reads the shared timestamp. The first successful poll only records
// the current value; later changes from other sources reach the handler. A
// timestamp is only marked as seen once its signal has been delivered or
// deliberately skipped, so a failed read is retried on the next poll.
func (w *SignalWatcher) Poll(ctx context.Context) error {
	raw, err := w.backend.Read(ctx, domain.SlotSyncTimestamp)
	if err != nil && !errors.Is(err, persist.ErrNotFound) {
		return fmt.Errorf("failed to read sync timestamp: %w", err)
	}
	stamp := decodeStamp(raw)

	w.mu.Lock()
	primed, last := w.primed, w.last
	if !primed {
		w.primed = true
		w.last = stamp
	}
	w.mu.Unlock()

	if !primed || stamp == last || stamp == "" {
		return nil
	}

	data, err := w.backend.Read(ctx, domain.SlotSyncData)
	if err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			w.markSeen(stamp)
			return nil
		}
		return fmt.Errorf("failed to read sync signal: %w", err)
	}

	var signal domain.SyncSignal
	if err := json.Unmarshal(data, &signal); err != nil {
		w.markSeen(stamp)
		return fmt.Errorf("failed to decode sync signal: %w", err)
	}
	if signal.Source != w.source {
		w.handler(ctx, signal)
	}
	w.markSeen(stamp)
	return nil
}

func (w *SignalWatcher) markSeen(stamp string) {
	w.mu.Lock()
	w.last = stamp
	w.mu.Unlock()
}

func decodeStamp(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw)
	}
	return s
}
