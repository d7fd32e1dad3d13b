package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/careersync/internal/persist"
	"github.com/dyluth/careersync/pkg/slots"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T, mr *miniredis.Miniredis, source string) *Store {
	t.Helper()
	client, err := slots.NewClient(&redis.Options{Addr: mr.Addr()}, "test-ws")
	require.NoError(t, err)
	s := New(client, source, zerolog.Nop())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReadMapsMissingSlotToNotFound(t *testing.T) {
	mr := miniredis.RunT(t)
	s := setupStore(t, mr, "tab-a")

	_, err := s.Read(context.Background(), "partners")
	assert.ErrorIs(t, err, persist.ErrNotFound)
}

func TestWriteReadDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	s := setupStore(t, mr, "tab-a")
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "partners", []byte(`[]`)))
	got, err := s.Read(ctx, "partners")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, s.Delete(ctx, "partners"))
	_, err = s.Read(ctx, "partners")
	assert.ErrorIs(t, err, persist.ErrNotFound)
}

func TestWatchDeliversChangesFromOtherWriters(t *testing.T) {
	mr := miniredis.RunT(t)
	reader := setupStore(t, mr, "tab-a")
	writer := setupStore(t, mr, "tab-b")
	ctx := context.Background()

	feed, err := reader.Watch(ctx)
	require.NoError(t, err)
	defer feed.Close()

	require.NoError(t, writer.Write(ctx, "admin_settings", []byte(`{"general":{"siteName":"Jobs"}}`)))

	select {
	case change := <-feed.Changes():
		assert.Equal(t, "admin_settings", change.Key)
		assert.Equal(t, "tab-b", change.Source)
		assert.JSONEq(t, `{"general":{"siteName":"Jobs"}}`, string(change.Value))
		assert.False(t, change.At.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
	}

	require.NoError(t, writer.Delete(ctx, "admin_settings"))

	select {
	case change := <-feed.Changes():
		assert.Equal(t, "admin_settings", change.Key)
		assert.Nil(t, change.Value)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delete")
	}
}

func TestWatchReportsMalformedEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	s := setupStore(t, mr, "tab-a")
	ctx := context.Background()

	feed, err := s.Watch(ctx)
	require.NoError(t, err)
	defer feed.Close()

	mr.Publish(slots.SlotEventsChannel("test-ws"), `{"key":"partners","source":"x","timestamp_ms":0,"value":[]}`)

	select {
	case err := <-feed.Errors():
		assert.ErrorContains(t, err, "invalid change event")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error")
	}
}

func TestFeedCloseStopsChannels(t *testing.T) {
	mr := miniredis.RunT(t)
	s := setupStore(t, mr, "tab-a")

	feed, err := s.Watch(context.Background())
	require.NoError(t, err)
	require.NoError(t, feed.Close())
	require.NoError(t, feed.Close())

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-feed.Changes():
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
