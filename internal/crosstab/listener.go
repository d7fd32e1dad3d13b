// Package crosstab applies document changes written by other processes that
// share the same storage.
package crosstab

import (
	"context"
	"fmt"
	"sync"

	"github.com/dyluth/careersync/internal/persist"
	"github.com/rs/zerolog"
)

// Target is a document that can absorb a remotely written payload.
type Target interface {
	Key() string
	Name() string
	ApplyRaw(raw []byte) error
}

// AppliedFunc is called after a remote change has been applied.
type AppliedFunc func(name string, change persist.Change)

// Listener routes slot changes from a Watcher to the matching Target.
type Listener struct {
	watcher persist.Watcher
	source  string
	targets map[string]Target
	log     zerolog.Logger

	mu        sync.Mutex
	onApplied []AppliedFunc
}

// New creates a listener. Changes tagged with source are this process's own
// writes and are ignored.
func New(watcher persist.Watcher, source string, log zerolog.Logger, targets ...Target) *Listener {
	l := &Listener{
		watcher: watcher,
		source:  source,
		targets: make(map[string]Target, len(targets)),
		log:     log,
	}
	for _, t := range targets {
		l.targets[t.Key()] = t
	}
	return l
}

// OnApplied registers fn to run after every applied change.
func (l *Listener) OnApplied(fn AppliedFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onApplied = append(l.onApplied, fn)
}

// Run consumes the watcher's feed until ctx is done or the feed closes.
func (l *Listener) Run(ctx context.Context) error {
	feed, err := l.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch for remote changes: %w", err)
	}
	defer feed.Close()

	l.log.Info().Int("documents", len(l.targets)).Msg("listening for remote changes")

	changes := feed.Changes()
	errs := feed.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			l.Handle(change)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			l.log.Warn().Err(err).Msg("remote change stream error")
		}
	}
}

// Handle applies one change and reports whether it was applied.
func (l *Listener) Handle(change persist.Change) bool {
	if change.Source != "" && change.Source == l.source {
		return false
	}

	target, ok := l.targets[change.Key]
	if !ok {
		return false
	}

	if err := target.ApplyRaw(change.Value); err != nil {
		l.log.Warn().
			Err(err).
			Str("slot", change.Key).
			Str("source", change.Source).
			Msg("ignoring malformed remote change")
		return false
	}

	l.log.Debug().Str("slot", change.Key).Str("source", change.Source).Msg("applied remote change")

	l.mu.Lock()
	hooks := append([]AppliedFunc(nil), l.onApplied...)
	l.mu.Unlock()
	for _, fn := range hooks {
		fn(target.Name(), change)
	}
	return true
}
