package persist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackendReadWrite(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend("tab-a")

	_, err := m.Read(ctx, "partners")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Write(ctx, "partners", []byte(`[]`)))
	got, err := m.Read(ctx, "partners")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	got[0] = 'X'
	again, _ := m.Read(ctx, "partners")
	assert.Equal(t, `[]`, string(again), "reads return copies")

	assert.ElementsMatch(t, []string{"partners"}, m.Keys())

	require.NoError(t, m.Delete(ctx, "partners"))
	require.NoError(t, m.Delete(ctx, "partners"))
	_, err = m.Read(ctx, "partners")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryBackendWatch(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend("tab-a")

	feed, err := m.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Write(ctx, "cms_content", []byte(`[1]`)))
	m.Set("cms_content", []byte(`[2]`), "tab-b")

	select {
	case change := <-feed.Changes():
		assert.Equal(t, "cms_content", change.Key)
		assert.Equal(t, "tab-a", change.Source)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for own write")
	}

	select {
	case change := <-feed.Changes():
		assert.Equal(t, "tab-b", change.Source)
		assert.Equal(t, `[2]`, string(change.Value))
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for foreign write")
	}

	require.NoError(t, feed.Close())
	require.NoError(t, feed.Close())

	select {
	case _, ok := <-feed.Changes():
		assert.False(t, ok, "changes channel closes after Close")
	case <-time.After(time.Second):
		t.Fatal("feed did not close")
	}
}
