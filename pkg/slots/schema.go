package slots

import "fmt"

// Redis key pattern helpers
//
// Key pattern: careersync:{workspace}:slot:{name}
// Channel pattern: careersync:{workspace}:slot_events

// SlotKey returns the Redis key for a named slot.
// Pattern: careersync:{workspace}:slot:{name}
func SlotKey(workspace, name string) string {
	return fmt.Sprintf("careersync:%s:slot:%s", workspace, name)
}

// SlotEventsChannel returns the Pub/Sub channel carrying slot change events.
// Pattern: careersync:{workspace}:slot_events
func SlotEventsChannel(workspace string) string {
	return fmt.Sprintf("careersync:%s:slot_events", workspace)
}

// WorkspacePattern returns a SCAN pattern matching every slot in a workspace.
func WorkspacePattern(workspace string) string {
	return fmt.Sprintf("careersync:%s:slot:*", workspace)
}
