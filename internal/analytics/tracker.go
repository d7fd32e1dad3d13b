package analytics

import (
	"context"
	"time"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Config struct {
	Enabled bool
	UserID  string
}

// EventOption sets an optional field of a tracked event.
type EventOption func(*domain.AnalyticsEvent)

func WithLabel(label string) EventOption {
	return func(e *domain.AnalyticsEvent) { e.Label = label }
}

func WithValue(v float64) EventOption {
	return func(e *domain.AnalyticsEvent) { e.Value = &v }
}

func WithMetadata(m map[string]any) EventOption {
	return func(e *domain.AnalyticsEvent) { e.Metadata = m }
}

// Tracker stamps events with the user, session and time before logging them.
type Tracker struct {
	events    Log
	cfg       Config
	sessionID string
	clock     func() time.Time
	log       zerolog.Logger
}

// NewTracker starts a new session.
func NewTracker(events Log, cfg Config, log zerolog.Logger) *Tracker {
	if cfg.UserID == "" {
		cfg.UserID = "anonymous"
	}
	return &Tracker{
		events:    events,
		cfg:       cfg,
		sessionID: uuid.NewString(),
		clock:     time.Now,
		log:       log,
	}
}

func (t *Tracker) SessionID() string { return t.sessionID }

func (t *Tracker) Enabled() bool { return t.cfg.Enabled }

// Track records one event. Disabled trackers drop events silently.
func (t *Tracker) Track(ctx context.Context, action, category string, opts ...EventOption) error {
	if !t.cfg.Enabled {
		return nil
	}

	event := domain.AnalyticsEvent{
		Action:    action,
		Category:  category,
		Timestamp: t.clock().UTC(),
		UserID:    t.cfg.UserID,
		SessionID: t.sessionID,
	}
	for _, opt := range opts {
		opt(&event)
	}
	if err := domain.Validate(event); err != nil {
		return err
	}

	if err := t.events.Append(ctx, event); err != nil {
		t.log.Warn().Err(err).Str("action", action).Msg("failed to record analytics event")
		return err
	}
	return nil
}

// TrackPageView records a navigation to page.
func (t *Tracker) TrackPageView(ctx context.Context, page string) error {
	return t.Track(ctx, "page_view", "navigation", WithLabel(page))
}

func (t *Tracker) Events(ctx context.Context) ([]domain.AnalyticsEvent, error) {
	return t.events.Events(ctx)
}

func (t *Tracker) Clear(ctx context.Context) error {
	return t.events.Clear(ctx)
}
