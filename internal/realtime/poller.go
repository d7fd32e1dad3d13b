// Package realtime keeps an instance in step with others by polling a shared
// sync signal, and publishes that signal after local mutations.
package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrDisconnected is returned by PollNow once the failure budget is spent.
var ErrDisconnected = errors.New("realtime sync disconnected")

type Status string

const (
	StatusIdle         Status = "idle"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusStopped      Status = "stopped"
)

// Config controls polling cadence and the failure budget.
type Config struct {
	Interval    time.Duration
	MaxFailures int
}

// DefaultConfig polls every two seconds and gives up after three consecutive failures.
func DefaultConfig() Config {
	return Config{Interval: 2 * time.Second, MaxFailures: 3}
}

// PollFunc performs one poll. A non-nil error counts as a failure.
type PollFunc func(ctx context.Context) error

// StatusFunc observes status transitions. err is the last poll error, if any.
type StatusFunc func(status Status, err error)

type Option func(*Poller)

func WithLogger(log zerolog.Logger) Option {
	return func(p *Poller) { p.log = log }
}

// OnStatusChange registers fn for every status transition. fn runs on the
// polling goroutine and must not call Reconnect or Stop synchronously.
func OnStatusChange(fn StatusFunc) Option {
	return func(p *Poller) { p.observers = append(p.observers, fn) }
}

// Poller runs a PollFunc on a ticker. After MaxFailures consecutive failures
// it stops and reports StatusDisconnected until Reconnect is called.
type Poller struct {
	cfg       Config
	poll      PollFunc
	log       zerolog.Logger
	observers []StatusFunc

	pollMu sync.Mutex

	mu       sync.Mutex
	status   Status
	failures int
	lastErr  error
	parent   context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewPoller creates a stopped poller.
func NewPoller(cfg Config, poll PollFunc, opts ...Option) *Poller {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = def.MaxFailures
	}

	p := &Poller{
		cfg:    cfg,
		poll:   poll,
		log:    zerolog.Nop(),
		status: StatusIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins polling immediately and then on every interval. Starting a
// running poller does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}
	p.parent = ctx
	p.startLocked()
}

func (p *Poller) startLocked() {
	runCtx, cancel := context.WithCancel(p.parent)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go p.loop(runCtx, done)
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	if !p.tick(ctx) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.tick(ctx) {
				return
			}
		}
	}
}

// tick polls once and reports whether polling should continue.
func (p *Poller) tick(ctx context.Context) bool {
	err := p.runPoll(ctx)
	if ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, ErrDisconnected) && p.Status() != StatusDisconnected
}

// PollNow runs one poll synchronously and records the outcome.
func (p *Poller) PollNow(ctx context.Context) error {
	if p.Status() == StatusDisconnected {
		return ErrDisconnected
	}
	return p.runPoll(ctx)
}

func (p *Poller) runPoll(ctx context.Context) error {
	p.pollMu.Lock()
	err := p.poll(ctx)
	p.pollMu.Unlock()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	p.mu.Lock()
	prev := p.status
	if err == nil {
		p.failures = 0
		p.lastErr = nil
		p.status = StatusConnected
	} else {
		p.failures++
		p.lastErr = err
		if p.failures >= p.cfg.MaxFailures {
			p.status = StatusDisconnected
		}
	}
	status, failures := p.status, p.failures
	p.mu.Unlock()

	if err != nil {
		p.log.Warn().Err(err).Int("failures", failures).Int("max_failures", p.cfg.MaxFailures).Msg("sync poll failed")
	}
	if status != prev {
		p.notify(status, err)
	}
	if status == StatusDisconnected {
		return ErrDisconnected
	}
	return err
}

func (p *Poller) notify(status Status, err error) {
	switch status {
	case StatusDisconnected:
		p.log.Warn().Err(err).Msg("sync disconnected, polling stopped")
	default:
		p.log.Info().Str("status", string(status)).Msg("sync status changed")
	}
	for _, fn := range p.observers {
		fn(status, err)
	}
}

// Reconnect resets the failure counter and restarts polling.
func (p *Poller) Reconnect(ctx context.Context) {
	p.halt()

	p.mu.Lock()
	p.failures = 0
	p.lastErr = nil
	p.status = StatusIdle
	p.parent = ctx
	p.startLocked()
	p.mu.Unlock()

	p.log.Info().Msg("sync reconnecting")
}

// Stop halts polling. The poller can be restarted with Start or Reconnect.
func (p *Poller) Stop() {
	p.halt()

	p.mu.Lock()
	if p.status != StatusDisconnected {
		p.status = StatusStopped
	}
	p.mu.Unlock()
}

func (p *Poller) halt() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Run polls until ctx is done. It is meant for errgroup-style supervisors.
func (p *Poller) Run(ctx context.Context) error {
	p.Start(ctx)
	<-ctx.Done()
	p.Stop()
	return nil
}

func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) Failures() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures
}

func (p *Poller) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Done is closed when the current polling loop exits, either because it was
// stopped or because it disconnected. It returns nil before the first Start.
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}
