package commands

import (
	"context"
	"strings"

	"github.com/dyluth/careersync/internal/app"
	"github.com/dyluth/careersync/internal/listing"
	"github.com/dyluth/careersync/internal/printer"
	"github.com/spf13/cobra"
)

var settingsDryRun bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Edit admin or employer settings",
	Long: `Edit admin or employer settings field by field.

Fields are addressed as section.field using their JSON names. Values are
parsed as JSON when possible, otherwise taken as strings.

Examples:
  careersync settings admin set general.siteName="Career Hub" general.maintenanceMode=true
  careersync settings employer set recruitment.defaultJobDurationDays=45
  careersync settings admin set appearance.theme=dark --dry-run
  careersync settings employer reset`,
}

// settingsTarget is the slice of a settings hook the CLI needs.
type settingsTarget interface {
	SetField(ctx context.Context, path, value string) error
	SaveAllSettings(ctx context.Context) error
	ResetSettings(ctx context.Context) error
	HasUnsavedChanges() bool
}

type settingsDomain struct {
	name     string
	hook     func(*app.Repositories) settingsTarget
	snapshot func(*app.Repositories) any
}

var settingsDomains = []settingsDomain{
	{
		name:     "admin",
		hook:     func(r *app.Repositories) settingsTarget { return r.AdminSettings() },
		snapshot: func(r *app.Repositories) any { return r.Admin.Snapshot() },
	},
	{
		name:     "employer",
		hook:     func(r *app.Repositories) settingsTarget { return r.EmployerSettings() },
		snapshot: func(r *app.Repositories) any { return r.Employer.Snapshot() },
	},
}

func init() {
	for _, d := range settingsDomains {
		settingsCmd.AddCommand(newSettingsDomainCmd(d))
	}
	rootCmd.AddCommand(settingsCmd)
}

func newSettingsDomainCmd(d settingsDomain) *cobra.Command {
	domainCmd := &cobra.Command{
		Use:   d.name,
		Short: "Edit " + d.name + " settings",
	}

	setCmd := &cobra.Command{
		Use:   "set section.field=value...",
		Short: "Set one or more " + d.name + " settings and save them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsSet(cmd, d, args)
		},
	}
	setCmd.Flags().BoolVar(&settingsDryRun, "dry-run", false, "Print the result without saving")

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default " + d.name + " settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsReset(cmd, d)
		},
	}

	domainCmd.AddCommand(setCmd, resetCmd)
	return domainCmd
}

func runSettingsSet(cmd *cobra.Command, d settingsDomain, args []string) error {
	ctx := context.Background()

	repos, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer repos.Close()

	hook := d.hook(repos)
	for _, arg := range args {
		path, value, ok := strings.Cut(arg, "=")
		if !ok {
			return printer.Error(
				"invalid assignment",
				"Expected section.field=value, got: "+arg,
				[]string{"Example: careersync settings " + d.name + " set general.siteName=\"Career Hub\""},
			)
		}
		if err := hook.SetField(ctx, path, value); err != nil {
			return validationError("invalid setting", err)
		}
	}

	if settingsDryRun {
		printer.Info("Dry run: settings not saved\n")
		return listing.FormatJSON(cmd.OutOrStdout(), d.snapshot(repos))
	}

	if err := hook.SaveAllSettings(ctx); err != nil {
		return printer.Error("failed to save settings", err.Error(), []string{"Check that the backend is reachable"})
	}
	return nil
}

func runSettingsReset(cmd *cobra.Command, d settingsDomain) error {
	ctx := context.Background()

	repos, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer repos.Close()

	hook := d.hook(repos)
	if err := hook.ResetSettings(ctx); err != nil {
		return err
	}
	if err := hook.SaveAllSettings(ctx); err != nil {
		return printer.Error("failed to save settings", err.Error(), []string{"Check that the backend is reachable"})
	}
	return nil
}
