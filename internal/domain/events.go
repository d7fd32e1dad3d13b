package domain

import (
	"encoding/json"
	"time"
)

// AnalyticsEvent is one entry of the capped analytics log.
type AnalyticsEvent struct {
	Action    string         `json:"action" validate:"required"`
	Category  string         `json:"category" validate:"required"`
	Label     string         `json:"label,omitempty"`
	Value     *float64       `json:"value,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	UserID    string         `json:"userId"`
	SessionID string         `json:"sessionId"`
}

// SyncSignal is broadcast to other instances after a local mutation.
type SyncSignal struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
}

// UpdatedSignalType is the signal type emitted when the named slot changes.
func UpdatedSignalType(slot string) string {
	return slot + ".updated"
}
