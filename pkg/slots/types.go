package slots

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

var slotNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ChangeEvent is published after every slot write or delete.
// Value carries the new raw JSON; it is empty when the slot was deleted.
type ChangeEvent struct {
	Key         string          `json:"key"`
	Value       json.RawMessage `json:"value,omitempty"`
	Source      string          `json:"source"`
	TimestampMs int64           `json:"timestamp_ms"`
	Deleted     bool            `json:"deleted,omitempty"`
}

// Validate checks the event is well formed.
func (e *ChangeEvent) Validate() error {
	if err := ValidateSlotName(e.Key); err != nil {
		return err
	}
	if e.TimestampMs <= 0 {
		return errors.New("timestamp_ms must be positive")
	}
	if !e.Deleted && len(e.Value) == 0 {
		return errors.New("value is required unless the slot was deleted")
	}
	if len(e.Value) > 0 && !json.Valid(e.Value) {
		return errors.New("value must be valid JSON")
	}
	return nil
}

// ValidateSlotName ensures a slot name is lower snake case.
func ValidateSlotName(name string) error {
	if name == "" {
		return errors.New("slot name cannot be empty")
	}
	if !slotNamePattern.MatchString(name) {
		return fmt.Errorf("invalid slot name %q: must match %s", name, slotNamePattern.String())
	}
	return nil
}
