// Package watch renders the live stream of slot changes and sync status
// transitions for `careersync watch`.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/careersync/internal/persist"
)

// OutputFormat selects line rendering.
type OutputFormat string

const (
	OutputFormatDefault OutputFormat = "default"
	OutputFormatJSONL   OutputFormat = "jsonl"
)

// Event kinds.
const (
	KindChange = "change"
	KindStatus = "status"
)

// Event is one line of watch output.
type Event struct {
	Kind     string          `json:"kind"`
	Slot     string          `json:"slot,omitempty"`
	Source   string          `json:"source,omitempty"`
	Deleted  bool            `json:"deleted,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
	Status   string          `json:"status,omitempty"`
	Failures int             `json:"failures,omitempty"`
	At       time.Time       `json:"at"`
}

// FromChange converts a backend change into a watch event.
func FromChange(c persist.Change) Event {
	ev := Event{Kind: KindChange, Slot: c.Key, Source: c.Source, At: c.At, Deleted: c.Value == nil}
	if json.Valid(c.Value) {
		ev.Value = json.RawMessage(c.Value)
	}
	return ev
}

// Format writes one event as a single line.
func Format(w io.Writer, format OutputFormat, ev Event) error {
	switch format {
	case OutputFormatJSONL:
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case OutputFormatDefault, "":
		ts := ev.At.Local().Format("15:04:05")
		switch {
		case ev.Kind == KindStatus:
			_, err := fmt.Fprintf(w, "[%s] sync %s (failures: %d)\n", ts, ev.Status, ev.Failures)
			return err
		case ev.Deleted:
			_, err := fmt.Fprintf(w, "[%s] %-18s deleted by %s\n", ts, ev.Slot, ev.Source)
			return err
		default:
			_, err := fmt.Fprintf(w, "[%s] %-18s updated by %s (%d bytes)\n", ts, ev.Slot, ev.Source, len(ev.Value))
			return err
		}
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// StreamChanges formats every change from feed until ctx is done or the feed
// closes. Feed errors are written as comments in default format and skipped.
func StreamChanges(ctx context.Context, feed *persist.Feed, format OutputFormat, w io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-feed.Errors():
			if !ok {
				return nil
			}
			if format != OutputFormatJSONL {
				fmt.Fprintf(w, "# watch error: %v\n", err)
			}
		case change, ok := <-feed.Changes():
			if !ok {
				return nil
			}
			if err := Format(w, format, FromChange(change)); err != nil {
				return fmt.Errorf("failed to write change: %w", err)
			}
		}
	}
}
