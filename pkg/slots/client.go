package slots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client provides workspace-scoped Redis operations for document slots.
// All keys and channels are automatically namespaced with the workspace name.
// The client is thread-safe and can be used concurrently from multiple goroutines.
type Client struct {
	rdb       *redis.Client
	workspace string
}

// NewClient creates a new slot client for the specified workspace.
//
// Parameters:
//   - redisOpts: Redis connection options (address, password, DB, etc.)
//   - workspace: namespace for keys and channels (must not be empty)
//
// Returns an error if workspace is empty.
func NewClient(redisOpts *redis.Options, workspace string) (*Client, error) {
	if workspace == "" {
		return nil, fmt.Errorf("workspace cannot be empty")
	}

	return &Client{
		rdb:       redis.NewClient(redisOpts),
		workspace: workspace,
	}, nil
}

// NewClientFromURL parses a redis:// URL and creates a client for the workspace.
func NewClientFromURL(url, workspace string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return NewClient(opts, workspace)
}

// Workspace returns the namespace this client writes under.
func (c *Client) Workspace() string {
	return c.workspace
}

// RedisClient exposes the underlying connection for callers that need raw commands.
func (c *Client) RedisClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// GetSlot reads the raw JSON stored in a slot.
// Returns (nil, redis.Nil) if the slot doesn't exist. Use IsNotFound() to check.
func (c *Client) GetSlot(ctx context.Context, name string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, SlotKey(c.workspace, name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, redis.Nil
		}
		return nil, fmt.Errorf("failed to read slot %s: %w", name, err)
	}
	return data, nil
}

// SetSlot writes raw JSON to a slot and publishes a ChangeEvent.
// source identifies the writer so that it can ignore its own echo.
func (c *Client) SetSlot(ctx context.Context, name string, value []byte, source string) error {
	if err := ValidateSlotName(name); err != nil {
		return fmt.Errorf("invalid slot: %w", err)
	}
	if !json.Valid(value) {
		return fmt.Errorf("invalid slot: value for %s is not valid JSON", name)
	}

	if err := c.rdb.Set(ctx, SlotKey(c.workspace, name), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write slot to Redis: %w", err)
	}

	return c.publish(ctx, &ChangeEvent{
		Key:         name,
		Value:       json.RawMessage(value),
		Source:      source,
		TimestampMs: time.Now().UnixMilli(),
	})
}

// DeleteSlot removes a slot and publishes a deletion ChangeEvent.
// Deleting a missing slot is not an error.
func (c *Client) DeleteSlot(ctx context.Context, name string, source string) error {
	if err := c.rdb.Del(ctx, SlotKey(c.workspace, name)).Err(); err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}

	return c.publish(ctx, &ChangeEvent{
		Key:         name,
		Source:      source,
		TimestampMs: time.Now().UnixMilli(),
		Deleted:     true,
	})
}

// SlotExists checks if a slot exists without fetching it.
func (c *Client) SlotExists(ctx context.Context, name string) (bool, error) {
	exists, err := c.rdb.Exists(ctx, SlotKey(c.workspace, name)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check slot existence: %w", err)
	}
	return exists > 0, nil
}

// AppendCapped appends an entry to the list stored at a slot and trims the
// list to its most recent max entries. Both commands run in one transaction.
func (c *Client) AppendCapped(ctx context.Context, name string, entry []byte, max int) error {
	if max <= 0 {
		return fmt.Errorf("max must be positive, got %d", max)
	}

	key := SlotKey(c.workspace, name)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, entry)
		pipe.LTrim(ctx, key, int64(-max), -1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append to %s: %w", name, err)
	}
	return nil
}

// ListRange returns every entry of a capped list, oldest first.
// A missing list yields an empty slice.
func (c *Client) ListRange(ctx context.Context, name string) ([][]byte, error) {
	values, err := c.rdb.LRange(ctx, SlotKey(c.workspace, name), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read list %s: %w", name, err)
	}

	entries := make([][]byte, 0, len(values))
	for _, v := range values {
		entries = append(entries, []byte(v))
	}
	return entries, nil
}

func (c *Client) publish(ctx context.Context, event *ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	if err := c.rdb.Publish(ctx, SlotEventsChannel(c.workspace), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	return nil
}

// Subscription represents an active Pub/Sub subscription to slot change events.
// Call Close() to unsubscribe and clean up resources.
type Subscription struct {
	events <-chan *ChangeEvent
	errors <-chan error
	cancel context.CancelFunc
	once   sync.Once
}

// Events returns the channel of change events.
// The channel will be closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *ChangeEvent {
	return s.events
}

// Errors returns the channel of subscription errors (malformed events).
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close unsubscribes and releases resources. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeSlotEvents subscribes to change events for this workspace.
// Caller must call subscription.Close() when done.
// Context cancellation also stops the subscription.
//
// Events are delivered on a buffered channel (size 10).
func (c *Client) SubscribeSlotEvents(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, SlotEventsChannel(c.workspace))

	// Wait for the subscription to be confirmed so no write is missed after return.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to slot events: %w", err)
	}

	eventsChan := make(chan *ChangeEvent, 10)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal change event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// IsNotFound returns true if the error is a Redis "key not found" error (redis.Nil).
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
