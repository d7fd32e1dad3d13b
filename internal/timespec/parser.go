package timespec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Range is a closed time interval. A zero bound means unbounded.
type Range struct {
	Since time.Time
	Until time.Time
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	if !r.Since.IsZero() && t.Before(r.Since) {
		return false
	}
	if !r.Until.IsZero() && t.After(r.Until) {
		return false
	}
	return true
}

// IsZero reports whether neither bound is set.
func (r Range) IsZero() bool {
	return r.Since.IsZero() && r.Until.IsZero()
}

// Parse parses a time specification relative to the current time.
func Parse(spec string) (time.Time, error) {
	return ParseAt(spec, time.Now())
}

// ParseAt parses a time specification relative to now.
// Supports three formats:
//   - Go duration format: "1h", "30m", "1h30m" (that long before now)
//   - Day counts: "7d"
//   - RFC3339 timestamps: "2025-10-29T13:00:00Z"
func ParseAt(spec string, now time.Time) (time.Time, error) {
	if spec == "" {
		return time.Time{}, fmt.Errorf("empty time specification")
	}

	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t, nil
	}

	if days, ok := strings.CutSuffix(spec, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil && n >= 0 {
			return now.AddDate(0, 0, -n), nil
		}
	}

	if d, err := time.ParseDuration(spec); err == nil {
		return now.Add(-d), nil
	}

	return time.Time{}, fmt.Errorf("invalid time specification: %s (use duration like '1h30m', days like '7d', or RFC3339 like '2025-10-29T13:00:00Z')", spec)
}

// ParseRange parses both --since and --until flags into a Range.
// Validates that since < until if both are specified.
func ParseRange(since, until string, now time.Time) (Range, error) {
	var r Range
	var err error

	if since != "" {
		r.Since, err = ParseAt(since, now)
		if err != nil {
			return Range{}, fmt.Errorf("invalid --since: %w", err)
		}
	}

	if until != "" {
		r.Until, err = ParseAt(until, now)
		if err != nil {
			return Range{}, fmt.Errorf("invalid --until: %w", err)
		}
	}

	if !r.Since.IsZero() && !r.Until.IsZero() && !r.Since.Before(r.Until) {
		return Range{}, fmt.Errorf("--since must be before --until")
	}

	return r, nil
}
