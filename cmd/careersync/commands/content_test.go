package commands

import (
	"encoding/json"
	"testing"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listContent(t *testing.T, cfg string, args ...string) []domain.ContentItem {
	t.Helper()
	out, err := executeCommand(t, cfg, append([]string{"content", "list", "-o", "json"}, args...)...)
	require.NoError(t, err)

	var items []domain.ContentItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	return items
}

func findContent(items []domain.ContentItem, title string) (domain.ContentItem, bool) {
	for _, c := range items {
		if c.Title == title {
			return c, true
		}
	}
	return domain.ContentItem{}, false
}

func TestContentCommand_Lifecycle(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := executeCommand(t, cfg, "content", "add", "--title", "Spring Hiring Fair", "--type", "event", "--location", "Leeds")
	require.NoError(t, err)

	item, ok := findContent(listContent(t, cfg), "Spring Hiring Fair")
	require.True(t, ok, "added item should be listed")
	assert.Equal(t, domain.ContentStatusDraft, item.Status)
	assert.Equal(t, "spring-hiring-fair", item.Slug)
	assert.Equal(t, "Leeds", item.Location)

	t.Run("filters by type and status", func(t *testing.T) {
		events := listContent(t, cfg, "--type", "event")
		_, ok := findContent(events, "Spring Hiring Fair")
		assert.True(t, ok)
		for _, c := range events {
			assert.Equal(t, domain.ContentTypeEvent, c.Type)
		}

		published := listContent(t, cfg, "--status", "published")
		_, ok = findContent(published, "Spring Hiring Fair")
		assert.False(t, ok, "draft should not appear in published list")
	})

	t.Run("update by short id", func(t *testing.T) {
		_, err := executeCommand(t, cfg, "content", "update", item.ID[:8], "--excerpt", "Meet 40 employers")
		require.NoError(t, err)

		updated, ok := findContent(listContent(t, cfg), "Spring Hiring Fair")
		require.True(t, ok)
		assert.Equal(t, "Meet 40 employers", updated.Excerpt)
		assert.Equal(t, item.CreatedAt, updated.CreatedAt)
		assert.True(t, updated.UpdatedAt.After(item.UpdatedAt))
	})

	t.Run("update without fields is rejected", func(t *testing.T) {
		_, err := executeCommand(t, cfg, "content", "update", item.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nothing to update")
	})

	t.Run("publish then get by slug", func(t *testing.T) {
		_, err := executeCommand(t, cfg, "content", "publish", item.ID)
		require.NoError(t, err)

		out, err := executeCommand(t, cfg, "content", "get", "spring-hiring-fair")
		require.NoError(t, err)
		var got domain.ContentItem
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, item.ID, got.ID)
		assert.Equal(t, domain.ContentStatusPublished, got.Status)
	})

	t.Run("delete", func(t *testing.T) {
		_, err := executeCommand(t, cfg, "content", "delete", item.ID)
		require.NoError(t, err)

		_, ok := findContent(listContent(t, cfg), "Spring Hiring Fair")
		assert.False(t, ok)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := executeCommand(t, cfg, "content", "delete", "does-not-exist")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestContentCommand_AddRequiresTitleAndType(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := executeCommand(t, cfg, "content", "add", "--title", "No Type")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type")
}

func TestContentCommand_AddRejectsInvalidType(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := executeCommand(t, cfg, "content", "add", "--title", "Odd", "--type", "podcast")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add content")
}
