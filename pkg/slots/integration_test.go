//go:build integration

package slots

import (
	"context"
	"testing"
	"time"

	"github.com/dyluth/careersync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSlotsAgainstRealRedis exercises pub/sub delivery between two clients
// sharing a real Redis server.
func TestSlotsAgainstRealRedis(t *testing.T) {
	redisURL := testutil.StartRedis(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	writer, err := NewClientFromURL(redisURL, "it")
	require.NoError(t, err)
	defer writer.Close()

	reader, err := NewClientFromURL(redisURL, "it")
	require.NoError(t, err)
	defer reader.Close()

	sub, err := reader.SubscribeSlotEvents(ctx)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, writer.SetSlot(ctx, "employer_settings", []byte(`{"company":{"name":"Acme"}}`), "writer"))

	select {
	case event := <-sub.Events():
		assert.Equal(t, "employer_settings", event.Key)
		assert.Equal(t, "writer", event.Source)
	case <-ctx.Done():
		t.Fatal("timeout waiting for change event")
	}

	got, err := reader.GetSlot(ctx, "employer_settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"company":{"name":"Acme"}}`, string(got))

	for i := 0; i < 120; i++ {
		require.NoError(t, writer.AppendCapped(ctx, "analytics_events", []byte(`{}`), 100))
	}
	entries, err := reader.ListRange(ctx, "analytics_events")
	require.NoError(t, err)
	assert.Len(t, entries, 100)
}
