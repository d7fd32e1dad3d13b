// Package workspace validates the names that namespace shared slots.
package workspace

import (
	"fmt"
	"regexp"
)

const (
	// DefaultName is used when no workspace is configured.
	DefaultName = "default"

	// MaxNameLength keeps workspace names usable as Redis key segments and
	// Postgres identifiers alike.
	MaxNameLength = 63
)

// NamePattern: lowercase alphanumeric, hyphens allowed but not at start/end.
var NamePattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// ValidateName checks a workspace name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("workspace name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("workspace name too long: %d characters (max: %d)", len(name), MaxNameLength)
	}

	if !NamePattern.MatchString(name) {
		return fmt.Errorf("invalid workspace name '%s': must be lowercase alphanumeric with hyphens (not at start/end)", name)
	}

	return nil
}
