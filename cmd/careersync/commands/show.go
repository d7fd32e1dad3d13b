package commands

import (
	"context"
	"time"

	"github.com/dyluth/careersync/internal/listing"
	"github.com/dyluth/careersync/internal/printer"
	"github.com/spf13/cobra"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:       "show <admin|employer|content|partners|events>",
	Short:     "Print the current state of one synced domain",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"admin", "employer", "content", "partners", "events"},
	RunE:      runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "default", "Output format for lists: default, jsonl or json")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	format, err := listing.ParseFormat(showOutput)
	if err != nil {
		return printer.Error("invalid output format", err.Error(), []string{"Valid formats: default, jsonl, json"})
	}

	repos, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer repos.Close()

	out := cmd.OutOrStdout()
	now := time.Now()

	switch args[0] {
	case "admin":
		return listing.FormatJSON(out, repos.Admin.Snapshot())
	case "employer":
		return listing.FormatJSON(out, repos.Employer.Snapshot())
	case "content":
		return listing.Write(out, format, repos.Content.Snapshot(), listing.ContentTable(now))
	case "partners":
		return listing.Write(out, format, repos.Partners.Snapshot(), listing.PartnerTable)
	case "events":
		events, err := repos.Tracker.Events(ctx)
		if err != nil {
			return err
		}
		return listing.Write(out, format, events, listing.EventTable(now))
	default:
		return printer.Error(
			"unknown domain",
			"Unknown domain: "+args[0],
			[]string{"Valid domains: admin, employer, content, partners, events"},
		)
	}
}
