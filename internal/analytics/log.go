// Package analytics records user actions in a log capped at the most recent
// MaxEvents entries.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/dyluth/careersync/internal/persist"
	"github.com/dyluth/careersync/pkg/slots"
	"github.com/rs/zerolog"
)

// MaxEvents is the exact number of events retained.
const MaxEvents = 100

// Log stores analytics events oldest first.
type Log interface {
	Append(ctx context.Context, event domain.AnalyticsEvent) error
	Events(ctx context.Context) ([]domain.AnalyticsEvent, error)
	Clear(ctx context.Context) error
}

// SlotLog keeps the whole log as one JSON array in a persistence slot and
// rewrites it on every append.
type SlotLog struct {
	mu      sync.Mutex
	adapter *persist.Adapter[[]domain.AnalyticsEvent]
}

func NewSlotLog(backend persist.Backend, log zerolog.Logger) *SlotLog {
	return &SlotLog{adapter: persist.NewAdapter[[]domain.AnalyticsEvent](backend, domain.SlotAnalyticsEvents, log)}
}

func (l *SlotLog) Append(ctx context.Context, event domain.AnalyticsEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	events, _ := l.adapter.Load(ctx)
	events = append(events, event)
	if len(events) > MaxEvents {
		events = events[len(events)-MaxEvents:]
	}
	if !l.adapter.Save(ctx, events) {
		return fmt.Errorf("failed to persist analytics event %s", event.Action)
	}
	return nil
}

func (l *SlotLog) Events(ctx context.Context) ([]domain.AnalyticsEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	events, _ := l.adapter.Load(ctx)
	return events, nil
}

func (l *SlotLog) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.adapter.Clear(ctx) {
		return fmt.Errorf("failed to clear analytics events")
	}
	return nil
}

// RedisLog keeps one list entry per event and trims the list server-side.
type RedisLog struct {
	client *slots.Client
	log    zerolog.Logger
}

func NewRedisLog(client *slots.Client, log zerolog.Logger) *RedisLog {
	return &RedisLog{client: client, log: log}
}

func (l *RedisLog) Append(ctx context.Context, event domain.AnalyticsEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode analytics event: %w", err)
	}
	return l.client.AppendCapped(ctx, domain.SlotAnalyticsEvents, data, MaxEvents)
}

// Events returns the stored events, skipping entries that fail to decode.
func (l *RedisLog) Events(ctx context.Context) ([]domain.AnalyticsEvent, error) {
	entries, err := l.client.ListRange(ctx, domain.SlotAnalyticsEvents)
	if err != nil {
		return nil, err
	}

	events := make([]domain.AnalyticsEvent, 0, len(entries))
	for i, entry := range entries {
		var e domain.AnalyticsEvent
		if err := json.Unmarshal(entry, &e); err != nil {
			l.log.Warn().Err(err).Int("index", i).Msg("skipping malformed analytics event")
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func (l *RedisLog) Clear(ctx context.Context) error {
	return l.client.DeleteSlot(ctx, domain.SlotAnalyticsEvents, "")
}
