package commands

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dyluth/careersync/internal/app"
	"github.com/dyluth/careersync/internal/printer"
	"github.com/dyluth/careersync/internal/realtime"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Keep this instance in sync and expose a health endpoint",
	Long: `Keep this instance in sync with others sharing the backend, and expose
GET /healthz for liveness checks.

/healthz returns 200 while the backend answers and sync is connected, and
503 once the backend is unreachable or the poller has disconnected.
Send SIGHUP to reconnect a disconnected poller.

Examples:
  careersync serve
  careersync serve --port=9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Health endpoint port (default: health.port from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repos *app.Repositories
	onStatus := func(status realtime.Status, err error) {
		if status == realtime.StatusDisconnected && repos != nil {
			printer.Disconnected(repos.Poller.Failures(), "kill -HUP "+strconv.Itoa(os.Getpid()))
		}
	}

	repos, err := openApp(ctx, cmd, app.OnSyncStatus(onStatus))
	if err != nil {
		return err
	}
	defer repos.Close()

	port := repos.Config.Health.Port
	if servePort != 0 {
		port = servePort
	}

	go reconnectOnHangup(ctx, repos.Poller)

	printer.Info("Serving workspace %s on :%d (source %s)\n", repos.Config.Workspace, port, repos.Source)
	if err := repos.Serve(ctx, port); err != nil {
		return printer.Error("serve failed", err.Error(), nil)
	}
	printer.Success("Stopped\n")
	return nil
}
