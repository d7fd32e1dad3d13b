package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dyluth/careersync/internal/app"
	"github.com/dyluth/careersync/internal/config"
	"github.com/dyluth/careersync/internal/logging"
	"github.com/dyluth/careersync/internal/printer"
	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string

	configPath string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "careersync",
	Short: "careersync - shared settings and content state for the career platform",
	Long: `careersync keeps the career platform's admin settings, employer settings,
CMS content and partner directory consistent across every process that
shares a storage backend, and records a capped analytics event log.

Backends: memory, file (default), redis, sqlite, postgres. Configure them in
careersync.yml (see 'careersync init') or with CAREERSYNC_* variables.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Silence Cobra's default error and usage printing
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to careersync.yml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override logging.level (trace, debug, info, warn, error)")
}

// loadConfig reads the config file. When the default file is missing, the
// built-in defaults plus environment overrides are used instead.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("config") {
			return nil, printer.ErrorWithContext(
				"failed to load configuration",
				err.Error(),
				map[string]string{"path": configPath},
				[]string{"Create one with: careersync init"},
			)
		}
		cfg = config.Default()
		cfg.ApplyEnv(os.LookupEnv)
		if err := cfg.Validate(); err != nil {
			return nil, printer.Error("invalid configuration", err.Error(), nil)
		}
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// openApp builds the composition root for one command invocation.
func openApp(ctx context.Context, cmd *cobra.Command, opts ...app.Option) (*app.Repositories, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := logging.New(logging.Config{
		Level:      logging.ParseLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		TimeFormat: logging.DefaultConfig().TimeFormat,
		Output:     cmd.ErrOrStderr(),
	})

	base := []app.Option{
		app.WithLogger(logger),
		app.WithNotifier(printer.NewNotifier(cmd.OutOrStdout())),
	}
	repos, err := app.Build(ctx, cfg, append(base, opts...)...)
	if err != nil {
		return nil, printer.ErrorWithContext(
			"failed to open backend",
			err.Error(),
			map[string]string{"backend": cfg.Backend.Type},
			[]string{"Check backend settings in " + configPath},
		)
	}
	return repos, nil
}
