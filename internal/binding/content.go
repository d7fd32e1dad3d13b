package binding

import (
	"context"
	"fmt"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/dyluth/careersync/internal/syncdoc"
	"github.com/google/uuid"
)

// Content binds the CMS content list. Every mutation is persisted immediately.
type Content struct {
	*Binding[[]domain.ContentItem]
	opts hookOptions
}

// NewContent creates a mounted hook.
func NewContent(doc *syncdoc.Document[[]domain.ContentItem], opts ...Option) *Content {
	h := &Content{Binding: Bind(doc), opts: newHookOptions(opts)}
	h.Mount()
	return h
}

// Items returns every content item in list order.
func (h *Content) Items() []domain.ContentItem { return h.Value() }

// AddContent appends a new item with a generated id. CreatedAt and UpdatedAt
// are set to the same instant.
func (h *Content) AddContent(ctx context.Context, in domain.ContentInput) (domain.ContentItem, error) {
	if err := h.opts.settle(ctx); err != nil {
		return domain.ContentItem{}, err
	}

	now := h.opts.now()
	item := domain.ContentItem{
		ID:         uuid.NewString(),
		Title:      in.Title,
		Slug:       in.Slug,
		Type:       in.Type,
		Status:     in.Status,
		Content:    in.Content,
		Excerpt:    in.Excerpt,
		Location:   in.Location,
		AuthorID:   h.opts.authorID,
		AuthorName: h.opts.authorName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if item.Slug == "" {
		item.Slug = domain.Slugify(in.Title)
	}
	if item.Status == "" {
		item.Status = domain.ContentStatusDraft
	}
	if err := domain.Validate(item); err != nil {
		return domain.ContentItem{}, err
	}

	_, persisted, err := h.doc.Commit(ctx, func(items *[]domain.ContentItem) error {
		for _, existing := range *items {
			if existing.ID == item.ID {
				return fmt.Errorf("content id %s already exists", item.ID)
			}
		}
		*items = append(*items, item)
		return nil
	})
	if err != nil {
		return domain.ContentItem{}, err
	}

	h.opts.report(h, persisted, fmt.Sprintf("Content %q created", item.Title))
	return item, nil
}

// UpdateContent applies patch to the item with the given id and advances its
// UpdatedAt. CreatedAt never changes.
func (h *Content) UpdateContent(ctx context.Context, id string, patch domain.ContentPatch) (domain.ContentItem, error) {
	if err := h.opts.settle(ctx); err != nil {
		return domain.ContentItem{}, err
	}

	var updated domain.ContentItem
	_, persisted, err := h.doc.Commit(ctx, func(items *[]domain.ContentItem) error {
		i := indexOfContent(*items, id)
		if i < 0 {
			return fmt.Errorf("content %s: %w", id, ErrNotFound)
		}
		item := (*items)[i]
		patch.Apply(&item)
		item.UpdatedAt = h.opts.advance(item.UpdatedAt)
		if err := domain.Validate(item); err != nil {
			return err
		}
		(*items)[i] = item
		updated = item
		return nil
	})
	if err != nil {
		return domain.ContentItem{}, err
	}

	h.opts.report(h, persisted, fmt.Sprintf("Content %q updated", updated.Title))
	return updated, nil
}

// PublishContent sets the item's status to published.
func (h *Content) PublishContent(ctx context.Context, id string) (domain.ContentItem, error) {
	status := domain.ContentStatusPublished
	return h.UpdateContent(ctx, id, domain.ContentPatch{Status: &status})
}

// DeleteContent removes the item with the given id.
func (h *Content) DeleteContent(ctx context.Context, id string) error {
	if err := h.opts.settle(ctx); err != nil {
		return err
	}

	_, persisted, err := h.doc.Commit(ctx, func(items *[]domain.ContentItem) error {
		i := indexOfContent(*items, id)
		if i < 0 {
			return fmt.Errorf("content %s: %w", id, ErrNotFound)
		}
		*items = append((*items)[:i], (*items)[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	h.opts.report(h, persisted, "Content deleted")
	return nil
}

func (h *Content) GetContent(id string) (domain.ContentItem, bool) {
	items := h.Value()
	if i := indexOfContent(items, id); i >= 0 {
		return items[i], true
	}
	return domain.ContentItem{}, false
}

func (h *Content) GetContentBySlug(slug string) (domain.ContentItem, bool) {
	for _, item := range h.Value() {
		if item.Slug == slug {
			return item, true
		}
	}
	return domain.ContentItem{}, false
}

func (h *Content) ContentByType(t domain.ContentType) []domain.ContentItem {
	var out []domain.ContentItem
	for _, item := range h.Value() {
		if item.Type == t {
			out = append(out, item)
		}
	}
	return out
}

func (h *Content) ContentByStatus(s domain.ContentStatus) []domain.ContentItem {
	var out []domain.ContentItem
	for _, item := range h.Value() {
		if item.Status == s {
			out = append(out, item)
		}
	}
	return out
}

func indexOfContent(items []domain.ContentItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
