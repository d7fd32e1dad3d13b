package binding

import (
	"context"
	"testing"
	"time"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/dyluth/careersync/internal/persist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentCRUD(t *testing.T) {
	ctx := context.Background()
	backend := persist.NewMemoryBackend("test")
	notifier := &captureNotifier{}
	start := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	h := NewContent(contentDoc(t, backend), WithNotifier(notifier), WithClock(steppingClock(start, time.Minute)))

	initial := len(h.Items())

	item, err := h.AddContent(ctx, domain.ContentInput{
		Title:   "Hiring Trends 2025",
		Type:    domain.ContentTypeBlog,
		Content: "Remote roles keep growing.",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "hiring-trends-2025", item.Slug)
	assert.Equal(t, domain.ContentStatusDraft, item.Status)
	assert.True(t, item.CreatedAt.Equal(item.UpdatedAt))
	assert.Equal(t, "admin", item.AuthorID)
	assert.Len(t, h.Items(), initial+1)

	for _, other := range h.Items()[:initial] {
		assert.NotEqual(t, other.ID, item.ID)
	}

	updated, err := h.UpdateContent(ctx, item.ID, domain.ContentPatch{Status: ptr(domain.ContentStatusPublished)})
	require.NoError(t, err)
	assert.Equal(t, domain.ContentStatusPublished, updated.Status)
	assert.True(t, updated.CreatedAt.Equal(item.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(item.UpdatedAt))
	assert.Equal(t, "Hiring Trends 2025", updated.Title)

	got, ok := h.GetContent(item.ID)
	require.True(t, ok)
	assert.Equal(t, domain.ContentStatusPublished, got.Status)

	// Immediately persisted: a fresh reader sees the change.
	fresh := NewContent(contentDoc(t, backend))
	persisted, ok := fresh.GetContent(item.ID)
	require.True(t, ok)
	assert.Equal(t, domain.ContentStatusPublished, persisted.Status)

	require.NoError(t, h.DeleteContent(ctx, item.ID))
	_, ok = h.GetContent(item.ID)
	assert.False(t, ok)
	assert.Len(t, h.Items(), initial)

	assert.Equal(t, []string{
		`Content "Hiring Trends 2025" created`,
		`Content "Hiring Trends 2025" updated`,
		"Content deleted",
	}, notifier.successes())
}

func TestAddContentGeneratesUniqueIDs(t *testing.T) {
	ctx := context.Background()
	h := NewContent(contentDoc(t, persist.NewMemoryBackend("test")))

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		item, err := h.AddContent(ctx, domain.ContentInput{Title: "FAQ entry", Type: domain.ContentTypeFAQ})
		require.NoError(t, err)
		assert.False(t, seen[item.ID])
		seen[item.ID] = true
	}
}

func TestUpdatedAtAdvancesOnCoarseClock(t *testing.T) {
	ctx := context.Background()
	frozen := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	h := NewContent(contentDoc(t, persist.NewMemoryBackend("test")), WithClock(func() time.Time { return frozen }))

	item, err := h.AddContent(ctx, domain.ContentInput{Title: "Frozen", Type: domain.ContentTypePage})
	require.NoError(t, err)

	updated, err := h.UpdateContent(ctx, item.ID, domain.ContentPatch{Title: ptr("Thawed")})
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(item.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(frozen))
}

func TestContentValidationAndMissingIDs(t *testing.T) {
	ctx := context.Background()
	h := NewContent(contentDoc(t, persist.NewMemoryBackend("test")))
	before := len(h.Items())

	_, err := h.AddContent(ctx, domain.ContentInput{Type: domain.ContentTypeBlog})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.AddContent(ctx, domain.ContentInput{Title: "Bad type", Type: "podcast"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.UpdateContent(ctx, "missing", domain.ContentPatch{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.UpdateContent(ctx, "content-about", domain.ContentPatch{Slug: ptr("Not Valid")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.ErrorIs(t, h.DeleteContent(ctx, "missing"), ErrNotFound)
	assert.Len(t, h.Items(), before)
}

func TestContentQueries(t *testing.T) {
	ctx := context.Background()
	h := NewContent(contentDoc(t, persist.NewMemoryBackend("test")))

	item, ok := h.GetContentBySlug("about-us")
	require.True(t, ok)
	assert.Equal(t, "content-about", item.ID)

	_, ok = h.GetContentBySlug("nope")
	assert.False(t, ok)

	assert.Len(t, h.ContentByType(domain.ContentTypeEvent), 1)
	drafts := h.ContentByStatus(domain.ContentStatusDraft)
	require.Len(t, drafts, 1)

	published, err := h.PublishContent(ctx, drafts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContentStatusPublished, published.Status)
	assert.Empty(t, h.ContentByStatus(domain.ContentStatusDraft))
}

func ptr[T any](v T) *T {
	return &v
}

func TestContentSaveFailureWarns(t *testing.T) {
	ctx := context.Background()
	notifier := &captureNotifier{}
	h := NewContent(contentDoc(t, readOnlyBackend{persist.NewMemoryBackend("test")}), WithNotifier(notifier))

	item, err := h.AddContent(ctx, domain.ContentInput{Title: "Offline Post", Type: domain.ContentTypeNews})
	require.NoError(t, err)

	got, ok := h.GetContent(item.ID)
	require.True(t, ok, "change is kept in memory")
	assert.Equal(t, "Offline Post", got.Title)
	assert.Empty(t, notifier.successes())
	require.Len(t, notifier.warns(), 1)
	assert.Contains(t, notifier.warns()[0], "could not be saved")

	require.NoError(t, h.DeleteContent(ctx, item.ID))
	assert.Len(t, notifier.warns(), 2)
}
