// Package listing renders content items, partners and analytics events for
// the CLI as tables, line-delimited JSON or pretty JSON.
package listing

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dyluth/careersync/internal/domain"
)

// OutputFormat specifies how to format list output.
type OutputFormat string

const (
	// OutputFormatDefault uses a table with truncated columns
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete records as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"

	// OutputFormatJSON outputs the whole list as one indented JSON array
	OutputFormatJSON OutputFormat = "json"
)

// ParseFormat validates an --output flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case OutputFormatDefault, OutputFormatJSONL, OutputFormatJSON:
		return f, nil
	case "":
		return OutputFormatDefault, nil
	default:
		return "", fmt.Errorf("unknown output format: %s (must be 'default', 'jsonl', or 'json')", s)
	}
}

// Write renders items in format, using table for the default format.
func Write[T any](w io.Writer, format OutputFormat, items []T, table func(io.Writer, []T)) error {
	switch format {
	case OutputFormatDefault:
		table(w, items)
		return nil
	case OutputFormatJSONL:
		return FormatJSONL(w, items)
	case OutputFormatJSON:
		if items == nil {
			items = []T{}
		}
		return FormatJSON(w, items)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// FormatJSONL writes each record as a single JSON object on its own line.
func FormatJSONL[T any](w io.Writer, items []T) error {
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal record to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// FormatJSON writes v as pretty-printed JSON followed by a newline.
func FormatJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

// ContentTable writes content items as a table.
func ContentTable(now time.Time) func(io.Writer, []domain.ContentItem) {
	return func(w io.Writer, items []domain.ContentItem) {
		if len(items) == 0 {
			fmt.Fprintln(w, "No content items found")
			return
		}

		row := "%-10s %-6s %-9s %-24s %-8s %s\n"
		fmt.Fprintf(w, row, "ID", "TYPE", "STATUS", "SLUG", "UPDATED", "TITLE")
		fmt.Fprintf(w, row, "----------", "------", "---------", "------------------------", "--------", "------------------------------")
		for _, c := range items {
			fmt.Fprintf(w, row,
				formatID(c.ID),
				string(c.Type),
				string(c.Status),
				truncate(c.Slug, 24),
				formatAge(c.UpdatedAt, now),
				truncate(c.Title, 40),
			)
		}
		printCount(w, len(items), "content item", "content items")
	}
}

// PartnerTable writes partners as a table.
func PartnerTable(w io.Writer, partners []domain.Partner) {
	if len(partners) == 0 {
		fmt.Fprintln(w, "No partners found")
		return
	}

	row := "%-10s %-8s %-14s %-24s %s\n"
	fmt.Fprintf(w, row, "ID", "STATUS", "CATEGORY", "NAME", "WEBSITE")
	fmt.Fprintf(w, row, "----------", "--------", "--------------", "------------------------", "------------------------------")
	for _, p := range partners {
		status := "active"
		if !p.Active() {
			status = "inactive"
		}
		fmt.Fprintf(w, row,
			formatID(p.ID),
			status,
			truncate(p.Category, 14),
			truncate(p.Name, 24),
			orDash(p.Website),
		)
	}
	printCount(w, len(partners), "partner", "partners")
}

// EventTable writes analytics events as a table.
func EventTable(now time.Time) func(io.Writer, []domain.AnalyticsEvent) {
	return func(w io.Writer, events []domain.AnalyticsEvent) {
		if len(events) == 0 {
			fmt.Fprintln(w, "No analytics events recorded")
			return
		}

		row := "%-8s %-20s %-14s %-12s %s\n"
		fmt.Fprintf(w, row, "AGE", "ACTION", "CATEGORY", "USER", "LABEL")
		fmt.Fprintf(w, row, "--------", "--------------------", "--------------", "------------", "--------------------")
		for _, e := range events {
			fmt.Fprintf(w, row,
				formatAge(e.Timestamp, now),
				truncate(e.Action, 20),
				truncate(e.Category, 14),
				truncate(orDash(e.UserID), 12),
				truncate(orDash(e.Label), 40),
			)
		}
		printCount(w, len(events), "event", "events")
	}
}

func printCount(w io.Writer, n int, singular, plural string) {
	noun := plural
	if n == 1 {
		noun = singular
	}
	fmt.Fprintf(w, "\n%d %s\n", n, noun)
}

// formatID shortens generated UUIDs to their first 8 characters.
// Seeded ids such as "content-about" are kept whole.
func formatID(id string) string {
	if len(id) == 36 && strings.Count(id, "-") == 4 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatAge shows relative time like "2m ago", "1h ago".
func formatAge(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}

	diff := now.Sub(t)
	switch {
	case diff < 0:
		return "now"
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
