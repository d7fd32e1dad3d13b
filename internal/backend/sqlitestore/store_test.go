package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dyluth/careersync/internal/persist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.ErrorContains(t, err, "database path cannot be empty")
}

func TestReadWriteDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "nested", "careersync.db"))

	_, err := s.Read(ctx, "partners")
	assert.ErrorIs(t, err, persist.ErrNotFound)

	require.NoError(t, s.Write(ctx, "partners", []byte(`[{"id":"p1"}]`)))
	require.NoError(t, s.Write(ctx, "partners", []byte(`[{"id":"p2"}]`)))

	got, err := s.Read(ctx, "partners")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"p2"}]`, string(got))

	require.NoError(t, s.Write(ctx, "admin_settings", []byte(`{}`)))
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin_settings", "partners"}, keys)

	require.NoError(t, s.Delete(ctx, "partners"))
	_, err = s.Read(ctx, "partners")
	assert.ErrorIs(t, err, persist.ErrNotFound)
	assert.NoError(t, s.Ping(ctx))
}

func TestDataSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "careersync.db")

	first, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Write(ctx, "cms_content", []byte(`[]`)))
	require.NoError(t, first.Close())

	second := openTestStore(t, path)
	got, err := second.Read(ctx, "cms_content")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	version, err := SchemaVersion(second.db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)
}
