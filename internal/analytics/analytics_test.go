package analytics

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/careersync/internal/domain"
	"github.com/dyluth/careersync/internal/persist"
	"github.com/dyluth/careersync/pkg/slots"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisLog(t *testing.T) (*RedisLog, *slots.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := slots.NewClient(&redis.Options{Addr: mr.Addr()}, "test")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewRedisLog(client, zerolog.Nop()), client
}

func TestLogsKeepMostRecentHundred(t *testing.T) {
	rl, _ := redisLog(t)
	logs := map[string]Log{
		"slot":  NewSlotLog(persist.NewMemoryBackend("test"), zerolog.Nop()),
		"redis": rl,
	}

	for name, l := range logs {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			tracker := NewTracker(l, Config{Enabled: true, UserID: "u-1"}, zerolog.Nop())

			for i := 0; i < 150; i++ {
				require.NoError(t, tracker.Track(ctx, fmt.Sprintf("action-%d", i), "test"))
			}

			events, err := tracker.Events(ctx)
			require.NoError(t, err)
			require.Len(t, events, MaxEvents)
			for i, e := range events {
				assert.Equal(t, fmt.Sprintf("action-%d", i+50), e.Action)
			}
			assert.Equal(t, "u-1", events[0].UserID)
			assert.Equal(t, tracker.SessionID(), events[99].SessionID)

			require.NoError(t, tracker.Clear(ctx))
			events, err = tracker.Events(ctx)
			require.NoError(t, err)
			assert.Empty(t, events)
		})
	}
}

func TestTrackOptions(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(NewSlotLog(persist.NewMemoryBackend("test"), zerolog.Nop()), Config{Enabled: true}, zerolog.Nop())

	require.NoError(t, tracker.Track(ctx, "apply", "jobs",
		WithLabel("backend-engineer"),
		WithValue(3),
		WithMetadata(map[string]any{"source": "search"}),
	))
	require.NoError(t, tracker.TrackPageView(ctx, "/jobs"))

	events, err := tracker.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "anonymous", events[0].UserID)
	assert.Equal(t, "backend-engineer", events[0].Label)
	require.NotNil(t, events[0].Value)
	assert.Equal(t, 3.0, *events[0].Value)
	assert.Equal(t, "search", events[0].Metadata["source"])

	assert.Equal(t, "page_view", events[1].Action)
	assert.Equal(t, "/jobs", events[1].Label)
	assert.NotEmpty(t, tracker.SessionID())
}

func TestTrackValidation(t *testing.T) {
	tracker := NewTracker(NewSlotLog(persist.NewMemoryBackend("test"), zerolog.Nop()), Config{Enabled: true}, zerolog.Nop())
	err := tracker.Track(context.Background(), "", "jobs")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDisabledTrackerDropsEvents(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(NewSlotLog(persist.NewMemoryBackend("test"), zerolog.Nop()), Config{Enabled: false}, zerolog.Nop())

	require.NoError(t, tracker.Track(ctx, "apply", "jobs"))
	events, err := tracker.Events(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.False(t, tracker.Enabled())
}

func TestSlotLogRecoversFromMalformedData(t *testing.T) {
	ctx := context.Background()
	backend := persist.NewMemoryBackend("test")
	require.NoError(t, backend.Write(ctx, domain.SlotAnalyticsEvents, []byte("not json")))

	l := NewSlotLog(backend, zerolog.Nop())
	events, err := l.Events(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)

	require.NoError(t, l.Append(ctx, domain.AnalyticsEvent{Action: "a", Category: "c"}))
	events, err = l.Events(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestRedisLogSkipsMalformedEntries(t *testing.T) {
	ctx := context.Background()
	l, client := redisLog(t)

	require.NoError(t, client.AppendCapped(ctx, domain.SlotAnalyticsEvents, []byte("garbage"), MaxEvents))
	require.NoError(t, l.Append(ctx, domain.AnalyticsEvent{Action: "a", Category: "c"}))

	events, err := l.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "a", events[0].Action)
}
