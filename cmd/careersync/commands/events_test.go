package commands

import (
	"encoding/json"
	"testing"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listEvents(t *testing.T, cfg string, args ...string) []domain.AnalyticsEvent {
	t.Helper()
	out, err := executeCommand(t, cfg, append([]string{"events", "list", "-o", "json"}, args...)...)
	require.NoError(t, err)

	var events []domain.AnalyticsEvent
	require.NoError(t, json.Unmarshal([]byte(out), &events))
	return events
}

func TestEventsCommand(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := executeCommand(t, cfg, "events", "track", "job_apply", "jobs",
		"--label", "frontend-dev", "--value", "1", "--meta", "source=search")
	require.NoError(t, err)
	_, err = executeCommand(t, cfg, "events", "track", "page_view", "navigation", "--label", "/jobs")
	require.NoError(t, err)

	t.Run("list returns events oldest first", func(t *testing.T) {
		events := listEvents(t, cfg)
		require.Len(t, events, 2)
		assert.Equal(t, "job_apply", events[0].Action)
		assert.Equal(t, "frontend-dev", events[0].Label)
		require.NotNil(t, events[0].Value)
		assert.Equal(t, 1.0, *events[0].Value)
		assert.Equal(t, "search", events[0].Metadata["source"])
		assert.Equal(t, "page_view", events[1].Action)
	})

	t.Run("filters", func(t *testing.T) {
		jobs := listEvents(t, cfg, "--action", "job_*")
		require.Len(t, jobs, 1)
		assert.Equal(t, "job_apply", jobs[0].Action)

		nav := listEvents(t, cfg, "--category", "navigation", "--since", "1h")
		require.Len(t, nav, 1)

		assert.Empty(t, listEvents(t, cfg, "--user", "someone-else"))
	})

	t.Run("limit keeps most recent", func(t *testing.T) {
		events := listEvents(t, cfg, "--limit", "1")
		require.Len(t, events, 1)
		assert.Equal(t, "page_view", events[0].Action)
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := executeCommand(t, cfg, "events", "track", "job_apply", "jobs", "--value", "lots")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid value")
	})

	t.Run("invalid metadata", func(t *testing.T) {
		_, err := executeCommand(t, cfg, "events", "track", "job_apply", "jobs", "--meta", "novalue")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid metadata")
	})

	t.Run("invalid time filter", func(t *testing.T) {
		_, err := executeCommand(t, cfg, "events", "list", "--since", "yesterday-ish")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid time filter")
	})

	t.Run("clear", func(t *testing.T) {
		_, err := executeCommand(t, cfg, "events", "clear")
		require.NoError(t, err)
		assert.Empty(t, listEvents(t, cfg))
	})
}
