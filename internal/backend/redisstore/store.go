// Package redisstore persists document slots in Redis and streams changes
// made by other processes over the workspace's pub/sub channel.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dyluth/careersync/internal/persist"
	"github.com/dyluth/careersync/pkg/slots"
	"github.com/rs/zerolog"
)

// Store implements persist.Backend and persist.Watcher on a slots.Client.
type Store struct {
	client *slots.Client
	source string
	log    zerolog.Logger
}

// New wraps client. source tags every write so subscribers can drop their
// own echoes.
func New(client *slots.Client, source string, log zerolog.Logger) *Store {
	return &Store{client: client, source: source, log: log}
}

// Client returns the underlying slots client.
func (s *Store) Client() *slots.Client {
	return s.client
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.GetSlot(ctx, key)
	if err != nil {
		if slots.IsNotFound(err) {
			return nil, persist.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	return s.client.SetSlot(ctx, key, data, s.source)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.DeleteSlot(ctx, key, s.source)
}

// Watch subscribes to slot events. Malformed events are reported on the
// feed's error channel and skipped.
func (s *Store) Watch(ctx context.Context) (*persist.Feed, error) {
	sub, err := s.client.SubscribeSlotEvents(ctx)
	if err != nil {
		return nil, err
	}

	changes := make(chan persist.Change, 10)
	errs := make(chan error, 10)
	watchCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer close(changes)
		defer close(errs)
		defer sub.Close()

		for {
			select {
			case <-watchCtx.Done():
				return
			case err, ok := <-sub.Errors():
				if !ok {
					return
				}
				s.forward(watchCtx, errs, err)
			case event, ok := <-sub.Events():
				if !ok {
					return
				}
				if err := event.Validate(); err != nil {
					s.forward(watchCtx, errs, fmt.Errorf("invalid change event: %w", err))
					continue
				}
				change := persist.Change{
					Key:    event.Key,
					Source: event.Source,
					At:     time.UnixMilli(event.TimestampMs),
				}
				if !event.Deleted {
					change.Value = []byte(event.Value)
				}
				select {
				case changes <- change:
				case <-watchCtx.Done():
					return
				}
			}
		}
	}()

	return persist.NewFeed(changes, errs, cancel), nil
}

func (s *Store) forward(ctx context.Context, errs chan<- error, err error) {
	s.log.Debug().Err(err).Msg("slot event rejected")
	select {
	case errs <- err:
	case <-ctx.Done():
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *Store) Close() error {
	return s.client.Close()
}
