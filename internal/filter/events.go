package filter

import (
	"path/filepath"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/dyluth/careersync/internal/timespec"
)

// EventCriteria defines filtering criteria for analytics events.
// All filters are ANDed together - an event must match ALL criteria to pass.
type EventCriteria struct {
	Window     timespec.Range
	ActionGlob string // Glob pattern for the action, empty = no filter
	Category   string // Exact match, empty = no filter
	UserID     string // Exact match, empty = no filter
	Limit      int    // Keep only the most recent N matches, 0 = all
}

// Matches returns true if the event matches all filter criteria.
// Empty/zero criteria values are treated as "match all" for that criterion.
func (c *EventCriteria) Matches(e domain.AnalyticsEvent) bool {
	if !c.Window.Contains(e.Timestamp) {
		return false
	}

	if c.ActionGlob != "" {
		matched, err := filepath.Match(c.ActionGlob, e.Action)
		if err != nil || !matched {
			return false
		}
	}

	if c.Category != "" && e.Category != c.Category {
		return false
	}
	if c.UserID != "" && e.UserID != c.UserID {
		return false
	}
	return true
}

// HasFilters returns true if any filters are active.
func (c *EventCriteria) HasFilters() bool {
	return !c.Window.IsZero() ||
		c.ActionGlob != "" ||
		c.Category != "" ||
		c.UserID != "" ||
		c.Limit > 0
}

// Apply returns the matching events in their original order.
func (c *EventCriteria) Apply(events []domain.AnalyticsEvent) []domain.AnalyticsEvent {
	out := make([]domain.AnalyticsEvent, 0, len(events))
	for _, e := range events {
		if c.Matches(e) {
			out = append(out, e)
		}
	}
	if c.Limit > 0 && len(out) > c.Limit {
		out = out[len(out)-c.Limit:]
	}
	return out
}
