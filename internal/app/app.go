// Package app is the composition root: it opens the configured backend and
// wires the synced documents, hooks, analytics and sync machinery together.
// Nothing here is global; every consumer gets what it needs from Repositories.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dyluth/careersync/internal/analytics"
	"github.com/dyluth/careersync/internal/backend/redisstore"
	"github.com/dyluth/careersync/internal/binding"
	"github.com/dyluth/careersync/internal/config"
	"github.com/dyluth/careersync/internal/crosstab"
	"github.com/dyluth/careersync/internal/domain"
	"github.com/dyluth/careersync/internal/health"
	"github.com/dyluth/careersync/internal/logging"
	"github.com/dyluth/careersync/internal/persist"
	"github.com/dyluth/careersync/internal/realtime"
	"github.com/dyluth/careersync/internal/syncdoc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Option customises Build.
type Option func(*buildOptions)

type buildOptions struct {
	backend   Backend
	source    string
	logger    zerolog.Logger
	notifier  binding.Notifier
	observers []realtime.StatusFunc
	clock     func() time.Time
}

// WithBackend uses b instead of opening cfg.Backend. Build takes ownership.
func WithBackend(b Backend) Option {
	return func(o *buildOptions) { o.backend = b }
}

// WithSource sets the instance identity stamped on writes and signals.
func WithSource(source string) Option {
	return func(o *buildOptions) { o.source = source }
}

func WithLogger(log zerolog.Logger) Option {
	return func(o *buildOptions) { o.logger = log }
}

// WithNotifier routes hook confirmations and warnings to n.
func WithNotifier(n binding.Notifier) Option {
	return func(o *buildOptions) { o.notifier = n }
}

// WithClock overrides the time source used by hooks.
func WithClock(clock func() time.Time) Option {
	return func(o *buildOptions) { o.clock = clock }
}

// OnSyncStatus observes polling status transitions.
func OnSyncStatus(fn realtime.StatusFunc) Option {
	return func(o *buildOptions) { o.observers = append(o.observers, fn) }
}

// NewSource returns a fresh instance identity.
func NewSource() string {
	return "careersync-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// Repositories owns every long-lived object of one careersync instance.
type Repositories struct {
	Config  *config.Config
	Source  string
	Backend Backend

	Admin    *syncdoc.Document[domain.AdminSettings]
	Employer *syncdoc.Document[domain.EmployerSettings]
	Content  *syncdoc.Document[[]domain.ContentItem]
	Partners *syncdoc.Document[[]domain.Partner]

	Tracker     *analytics.Tracker
	Broadcaster *realtime.Broadcaster
	Signals     *realtime.SignalWatcher
	Poller      *realtime.Poller
	// Listener is nil when the backend cannot push changes or cross-instance
	// sync is disabled.
	Listener *crosstab.Listener

	log      zerolog.Logger
	hookOpts []binding.Option
}

// Build opens the backend and all documents described by cfg.
func Build(ctx context.Context, cfg *config.Config, opts ...Option) (*Repositories, error) {
	o := buildOptions{logger: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.source == "" {
		o.source = NewSource()
	}
	log := o.logger.With().Str("source", o.source).Logger()

	backend := o.backend
	if backend == nil {
		var err error
		backend, err = OpenBackend(ctx, cfg, o.source, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Backend.Type, err)
		}
	}

	r := &Repositories{
		Config:  cfg,
		Source:  o.source,
		Backend: backend,
		log:     log,
	}

	r.Broadcaster = realtime.NewBroadcaster(backend, o.source, logging.Component(log, "realtime"))
	docLog := logging.Component(log, "syncdoc")
	persistLog := logging.Component(log, "persist")

	r.Admin = syncdoc.Open(ctx, persist.NewAdapter[domain.AdminSettings](backend, domain.SlotAdminSettings, persistLog),
		syncdoc.Options[domain.AdminSettings]{
			Name:        "admin settings",
			Defaults:    domain.DefaultAdminSettings(),
			Durability:  syncdoc.Deferred,
			Broadcaster: r.Broadcaster,
			Source:      o.source,
			Logger:      docLog,
		})
	r.Employer = syncdoc.Open(ctx, persist.NewAdapter[domain.EmployerSettings](backend, domain.SlotEmployerSettings, persistLog),
		syncdoc.Options[domain.EmployerSettings]{
			Name:        "employer settings",
			Defaults:    domain.DefaultEmployerSettings(),
			Durability:  syncdoc.Deferred,
			Broadcaster: r.Broadcaster,
			Source:      o.source,
			Logger:      docLog,
		})
	r.Content = syncdoc.Open(ctx, persist.NewAdapter[[]domain.ContentItem](backend, domain.SlotContent, persistLog),
		syncdoc.Options[[]domain.ContentItem]{
			Name:        "content",
			Defaults:    domain.DefaultContent(),
			Durability:  syncdoc.Immediate,
			Normalize:   domain.UniqueContent,
			Broadcaster: r.Broadcaster,
			Source:      o.source,
			Logger:      docLog,
		})
	r.Partners = syncdoc.Open(ctx, persist.NewAdapter[[]domain.Partner](backend, domain.SlotPartners, persistLog),
		syncdoc.Options[[]domain.Partner]{
			Name:        "partners",
			Defaults:    domain.DefaultPartners(),
			Durability:  syncdoc.Immediate,
			Normalize:   domain.UniquePartners,
			Broadcaster: r.Broadcaster,
			Source:      o.source,
			Logger:      docLog,
		})

	analyticsLog := logging.Component(log, "analytics")
	var events analytics.Log = analytics.NewSlotLog(backend, analyticsLog)
	if rs, ok := backend.(*redisstore.Store); ok {
		events = analytics.NewRedisLog(rs.Client(), analyticsLog)
	}
	r.Tracker = analytics.NewTracker(events, analytics.Config{
		Enabled: cfg.AnalyticsEnabled(),
		UserID:  cfg.Analytics.UserID,
	}, analyticsLog)

	r.Signals = realtime.NewSignalWatcher(backend, o.source, r.handleSignal)
	pollerOpts := []realtime.Option{realtime.WithLogger(logging.Component(log, "realtime"))}
	for _, fn := range o.observers {
		pollerOpts = append(pollerOpts, realtime.OnStatusChange(fn))
	}
	r.Poller = realtime.NewPoller(realtime.Config{
		Interval:    cfg.Sync.PollInterval,
		MaxFailures: cfg.Sync.MaxFailures,
	}, r.Signals.Poll, pollerOpts...)

	if watcher, ok := backend.(persist.Watcher); ok && cfg.CrossInstanceEnabled() {
		r.Listener = crosstab.New(watcher, o.source, logging.Component(log, "crosstab"), r.Admin, r.Employer)
	}

	r.hookOpts = []binding.Option{binding.WithLatency(cfg.MutationLatency)}
	if o.notifier != nil {
		r.hookOpts = append(r.hookOpts, binding.WithNotifier(o.notifier))
	}
	if o.clock != nil {
		r.hookOpts = append(r.hookOpts, binding.WithClock(o.clock))
	}

	log.Debug().
		Str("backend", cfg.Backend.Type).
		Str("workspace", cfg.Workspace).
		Bool("cross_instance", r.Listener != nil).
		Msg("careersync ready")
	return r, nil
}

// handleSignal reloads the document named by another instance's signal.
func (r *Repositories) handleSignal(ctx context.Context, signal domain.SyncSignal) {
	slot, ok := strings.CutSuffix(signal.Type, ".updated")
	if !ok {
		r.log.Debug().Str("type", signal.Type).Msg("ignoring unknown sync signal")
		return
	}

	switch slot {
	case domain.SlotAdminSettings:
		r.Admin.Reload(ctx)
	case domain.SlotEmployerSettings:
		r.Employer.Reload(ctx)
	case domain.SlotContent:
		r.Content.Reload(ctx)
	case domain.SlotPartners:
		r.Partners.Reload(ctx)
	default:
		r.log.Debug().Str("slot", slot).Msg("ignoring sync signal for unknown slot")
		return
	}
	r.log.Debug().Str("slot", slot).Str("from", signal.Source).Msg("reloaded after sync signal")
}

// AdminSettings returns a new mounted admin settings hook.
func (r *Repositories) AdminSettings(opts ...binding.Option) *binding.AdminSettings {
	return binding.NewAdminSettings(r.Admin, r.withHookOpts(opts)...)
}

// EmployerSettings returns a new mounted employer settings hook.
func (r *Repositories) EmployerSettings(opts ...binding.Option) *binding.EmployerSettings {
	return binding.NewEmployerSettings(r.Employer, r.withHookOpts(opts)...)
}

// ContentHook returns a new mounted content hook.
func (r *Repositories) ContentHook(opts ...binding.Option) *binding.Content {
	return binding.NewContent(r.Content, r.withHookOpts(opts)...)
}

// PartnersHook returns a new mounted partners hook.
func (r *Repositories) PartnersHook(opts ...binding.Option) *binding.Partners {
	return binding.NewPartners(r.Partners, r.withHookOpts(opts)...)
}

func (r *Repositories) withHookOpts(opts []binding.Option) []binding.Option {
	return append(append([]binding.Option(nil), r.hookOpts...), opts...)
}

// Ping checks the backend.
func (r *Repositories) Ping(ctx context.Context) error {
	return r.Backend.Ping(ctx)
}

// SyncStatus reports the polling status for health checks.
func (r *Repositories) SyncStatus() string {
	return string(r.Poller.Status())
}

// Run keeps the instance in sync until ctx is done: the cross-instance
// listener and the poller run side by side.
func (r *Repositories) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if r.Listener != nil {
		g.Go(func() error { return r.Listener.Run(gctx) })
	}
	g.Go(func() error { return r.Poller.Run(gctx) })

	return g.Wait()
}

// Serve runs the instance with a health endpoint on port.
func (r *Repositories) Serve(ctx context.Context, port int) error {
	srv := health.NewServer(r, port, logging.Component(r.log, "health"))
	if err := srv.Start(); err != nil {
		return err
	}
	r.log.Info().Str("addr", srv.Addr()).Msg("health endpoint listening")

	runErr := r.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Join(runErr, srv.Shutdown(shutdownCtx))
}

// Close stops polling and releases the backend. Unsaved settings edits are
// discarded.
func (r *Repositories) Close() error {
	r.Poller.Stop()
	return r.Backend.Close()
}
