package resolver

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MinShortIDLength is the minimum required length for short ID prefixes.
const MinShortIDLength = 6

// Resolve maps ref to exactly one of ids. An exact match always wins;
// otherwise ref is treated as a prefix of at least MinShortIDLength characters.
// kind names the record type in error messages ("content item", "partner").
func Resolve(kind string, ids []string, ref string) (string, error) {
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
	}

	if len(ref) < MinShortIDLength {
		return "", &NotFoundError{Kind: kind, ShortID: ref}
	}

	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, ref) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Kind: kind, ShortID: ref}
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", &AmbiguousError{Kind: kind, ShortID: ref, Matches: matches}
	}
}

// NotFoundError indicates no record matched the reference.
type NotFoundError struct {
	Kind    string
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found matching '%s'", e.Kind, e.ShortID)
}

// AmbiguousError indicates multiple records matched the short ID.
type AmbiguousError struct {
	Kind    string
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d %ss", e.ShortID, len(e.Matches), e.Kind)
}

// FormatAmbiguousError creates a user-friendly error message for ambiguous short IDs.
// Lists all matching IDs (up to 10, then "...and N more").
func FormatAmbiguousError(err *AmbiguousError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: ambiguous short ID '%s' matches %d %ss:\n", err.ShortID, len(err.Matches), err.Kind)

	shown := min(len(err.Matches), 10)
	for _, id := range err.Matches[:shown] {
		fmt.Fprintf(&b, "  %s\n", id)
	}
	if len(err.Matches) > shown {
		fmt.Fprintf(&b, "  ...and %d more\n", len(err.Matches)-shown)
	}

	fmt.Fprintf(&b, "\nUse a longer prefix to uniquely identify the %s.", err.Kind)
	return b.String()
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsAmbiguousError checks if an error is an AmbiguousError.
func IsAmbiguousError(err error) bool {
	var target *AmbiguousError
	return errors.As(err, &target)
}
