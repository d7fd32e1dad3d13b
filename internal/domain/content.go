package domain

import (
	"regexp"
	"strings"
	"time"
)

type ContentType string

const (
	ContentTypePage  ContentType = "page"
	ContentTypeBlog  ContentType = "blog"
	ContentTypeNews  ContentType = "news"
	ContentTypeFAQ   ContentType = "faq"
	ContentTypeEvent ContentType = "event"
)

type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusArchived  ContentStatus = "archived"
)

// ContentItem is a CMS record. IDs are unique within the list.
type ContentItem struct {
	ID         string        `json:"id" validate:"required"`
	Title      string        `json:"title" validate:"required,max=200"`
	Slug       string        `json:"slug" validate:"required,slug"`
	Type       ContentType   `json:"type" validate:"required,oneof=page blog news faq event"`
	Status     ContentStatus `json:"status" validate:"required,oneof=draft published archived"`
	Content    string        `json:"content"`
	Excerpt    string        `json:"excerpt" validate:"max=500"`
	Location   string        `json:"location,omitempty"`
	AuthorID   string        `json:"authorId"`
	AuthorName string        `json:"authorName"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// ContentInput carries the caller-supplied fields of a new content item.
// Slug is derived from Title when empty; Status defaults to draft.
type ContentInput struct {
	Title    string        `json:"title"`
	Slug     string        `json:"slug,omitempty"`
	Type     ContentType   `json:"type"`
	Status   ContentStatus `json:"status,omitempty"`
	Content  string        `json:"content"`
	Excerpt  string        `json:"excerpt,omitempty"`
	Location string        `json:"location,omitempty"`
}

// ContentPatch updates the non-nil fields of a content item.
type ContentPatch struct {
	Title    *string        `json:"title,omitempty"`
	Slug     *string        `json:"slug,omitempty"`
	Type     *ContentType   `json:"type,omitempty"`
	Status   *ContentStatus `json:"status,omitempty"`
	Content  *string        `json:"content,omitempty"`
	Excerpt  *string        `json:"excerpt,omitempty"`
	Location *string        `json:"location,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ContentPatch) IsEmpty() bool {
	return p == ContentPatch{}
}

// Apply copies every non-nil field onto item.
func (p ContentPatch) Apply(item *ContentItem) {
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Slug != nil {
		item.Slug = *p.Slug
	}
	if p.Type != nil {
		item.Type = *p.Type
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.Content != nil {
		item.Content = *p.Content
	}
	if p.Excerpt != nil {
		item.Excerpt = *p.Excerpt
	}
	if p.Location != nil {
		item.Location = *p.Location
	}
}

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}

// DefaultContent returns the seed content shown before anything is persisted.
func DefaultContent() []ContentItem {
	seeded := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	return []ContentItem{
		{
			ID:         "content-about",
			Title:      "About Us",
			Slug:       "about-us",
			Type:       ContentTypePage,
			Status:     ContentStatusPublished,
			Content:    "CareerSync connects job seekers, freelancers and employers.",
			Excerpt:    "Who we are and what we do.",
			AuthorID:   "admin",
			AuthorName: "Administrator",
			CreatedAt:  seeded,
			UpdatedAt:  seeded,
		},
		{
			ID:         "content-resume-tips",
			Title:      "10 Tips for a Standout Resume",
			Slug:       "10-tips-for-a-standout-resume",
			Type:       ContentTypeBlog,
			Status:     ContentStatusPublished,
			Content:    "Lead with impact, quantify results and tailor every application.",
			Excerpt:    "Make recruiters stop scrolling.",
			AuthorID:   "admin",
			AuthorName: "Administrator",
			CreatedAt:  seeded.Add(24 * time.Hour),
			UpdatedAt:  seeded.Add(24 * time.Hour),
		},
		{
			ID:         "content-career-fair",
			Title:      "Spring Career Fair",
			Slug:       "spring-career-fair",
			Type:       ContentTypeEvent,
			Status:     ContentStatusDraft,
			Content:    "Meet hiring teams from over fifty companies.",
			Excerpt:    "Save the date.",
			Location:   "Convention Center, Hall B",
			AuthorID:   "admin",
			AuthorName: "Administrator",
			CreatedAt:  seeded.Add(48 * time.Hour),
			UpdatedAt:  seeded.Add(48 * time.Hour),
		},
	}
}
