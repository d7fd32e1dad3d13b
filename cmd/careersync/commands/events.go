package commands

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/dyluth/careersync/internal/analytics"
	"github.com/dyluth/careersync/internal/filter"
	"github.com/dyluth/careersync/internal/listing"
	"github.com/dyluth/careersync/internal/printer"
	"github.com/dyluth/careersync/internal/timespec"
	"github.com/spf13/cobra"
)

var (
	eventsOutput   string
	eventsSince    string
	eventsUntil    string
	eventsAction   string
	eventsCategory string
	eventsUser     string
	eventsLimit    int

	eventLabel    string
	eventValue    string
	eventMetadata []string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect and record analytics events",
	Long: `Inspect and record analytics events.

The log keeps the 100 most recent events; older events are dropped.

Examples:
  careersync events list --since=1h --action="job_*"
  careersync events list --category=navigation --output=jsonl | jq .action
  careersync events track job_apply jobs --label=frontend-dev --value=1 --meta source=search
  careersync events clear`,
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded events, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runEventsList,
}

var eventsTrackCmd = &cobra.Command{
	Use:   "track <action> <category>",
	Short: "Record one event",
	Args:  cobra.ExactArgs(2),
	RunE:  runEventsTrack,
}

var eventsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recorded event",
	Args:  cobra.NoArgs,
	RunE:  runEventsClear,
}

func init() {
	eventsListCmd.Flags().StringVarP(&eventsOutput, "output", "o", "default", "Output format: default, jsonl or json")
	eventsListCmd.Flags().StringVar(&eventsSince, "since", "", "Show events after time (duration, days like 7d, or RFC3339)")
	eventsListCmd.Flags().StringVar(&eventsUntil, "until", "", "Show events before time (duration, days like 7d, or RFC3339)")
	eventsListCmd.Flags().StringVar(&eventsAction, "action", "", "Filter by action (glob pattern)")
	eventsListCmd.Flags().StringVar(&eventsCategory, "category", "", "Filter by category (exact match)")
	eventsListCmd.Flags().StringVar(&eventsUser, "user", "", "Filter by user id (exact match)")
	eventsListCmd.Flags().IntVar(&eventsLimit, "limit", 0, "Show only the most recent N matches")

	eventsTrackCmd.Flags().StringVar(&eventLabel, "label", "", "Event label")
	eventsTrackCmd.Flags().StringVar(&eventValue, "value", "", "Numeric value")
	eventsTrackCmd.Flags().StringArrayVar(&eventMetadata, "meta", nil, "Metadata as key=value (repeatable)")

	eventsCmd.AddCommand(eventsListCmd, eventsTrackCmd, eventsClearCmd)
	rootCmd.AddCommand(eventsCmd)
}

func runEventsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	format, err := listing.ParseFormat(eventsOutput)
	if err != nil {
		return printer.Error("invalid output format", err.Error(), []string{"Valid formats: default, jsonl, json"})
	}

	now := time.Now()
	window, err := timespec.ParseRange(eventsSince, eventsUntil, now)
	if err != nil {
		return printer.Error("invalid time filter", err.Error(), []string{"Use a duration like 1h30m, days like 7d, or RFC3339 like 2025-10-29T13:00:00Z"})
	}

	criteria := filter.EventCriteria{
		Window:     window,
		ActionGlob: eventsAction,
		Category:   eventsCategory,
		UserID:     eventsUser,
		Limit:      eventsLimit,
	}

	repos, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer repos.Close()

	events, err := repos.Tracker.Events(ctx)
	if err != nil {
		return printer.Error("failed to read events", err.Error(), nil)
	}
	if criteria.HasFilters() {
		events = criteria.Apply(events)
	}

	return listing.Write(cmd.OutOrStdout(), format, events, listing.EventTable(now))
}

func runEventsTrack(cmd *cobra.Command, args []string) error {
	var opts []analytics.EventOption
	if eventLabel != "" {
		opts = append(opts, analytics.WithLabel(eventLabel))
	}
	if eventValue != "" {
		v, err := strconv.ParseFloat(eventValue, 64)
		if err != nil {
			return printer.Error("invalid value", "--value must be a number, got: "+eventValue, nil)
		}
		opts = append(opts, analytics.WithValue(v))
	}
	if len(eventMetadata) > 0 {
		meta := make(map[string]any, len(eventMetadata))
		for _, kv := range eventMetadata {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || k == "" {
				return printer.Error("invalid metadata", "Expected key=value, got: "+kv, nil)
			}
			meta[k] = v
		}
		opts = append(opts, analytics.WithMetadata(meta))
	}

	ctx := context.Background()
	repos, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer repos.Close()

	if !repos.Tracker.Enabled() {
		printer.Warning("Analytics is disabled in configuration; event not recorded\n")
		return nil
	}
	if err := repos.Tracker.Track(ctx, args[0], args[1], opts...); err != nil {
		return validationError("failed to record event", err)
	}
	printer.Success("Event %s recorded\n", args[0])
	return nil
}

func runEventsClear(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	repos, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer repos.Close()

	if err := repos.Tracker.Clear(ctx); err != nil {
		return printer.Error("failed to clear events", err.Error(), nil)
	}
	printer.Success("Analytics events cleared\n")
	return nil
}
