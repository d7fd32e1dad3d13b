package commands

import (
	"fmt"

	"github.com/dyluth/careersync/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	forceInit bool
	initDir   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create careersync.yml with default settings",
	Long: `Initialize a careersync project with default configuration.

Creates:
  • careersync.yml - backend, sync and analytics configuration
  • .env.example   - CAREERSYNC_* overrides

Use --force to overwrite an existing configuration.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite existing careersync.yml")
	initCmd.Flags().StringVar(&initDir, "dir", ".", "Directory to initialize")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := scaffold.Initialize(initDir, forceInit); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	scaffold.PrintSuccess()
	return nil
}
