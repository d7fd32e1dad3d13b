package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/dyluth/careersync/internal/app"
	"github.com/dyluth/careersync/internal/persist"
	"github.com/dyluth/careersync/internal/printer"
	"github.com/dyluth/careersync/internal/realtime"
	"github.com/dyluth/careersync/internal/watch"
	"github.com/spf13/cobra"
)

var watchOutput string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream slot changes and sync status",
	Long: `Stream slot changes and sync status transitions until interrupted.

Backends that push changes (file, redis, memory) stream every write.
SQL backends only report sync status from the signal poller.

After repeated poll failures the poller stops. Send SIGHUP to reconnect.

Examples:
  careersync watch
  careersync watch --output=jsonl | jq 'select(.slot == "cms_content")'`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "default", "Output format: default or jsonl")
	rootCmd.AddCommand(watchCmd)
}

// lockedWriter serialises writes from the poller and the change stream.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func runWatch(cmd *cobra.Command, args []string) error {
	format := watch.OutputFormat(watchOutput)
	if format != watch.OutputFormatDefault && format != watch.OutputFormatJSONL {
		return printer.Error("invalid output format", "Unknown format: "+watchOutput, []string{"Valid formats: default, jsonl"})
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := &lockedWriter{w: cmd.OutOrStdout()}
	var poller *realtime.Poller
	onStatus := func(status realtime.Status, err error) {
		failures := 0
		if poller != nil {
			failures = poller.Failures()
		}
		watch.Format(out, format, watch.Event{
			Kind:     watch.KindStatus,
			Status:   string(status),
			Failures: failures,
			At:       time.Now(),
		})
		if status == realtime.StatusDisconnected && format == watch.OutputFormatDefault {
			printer.Disconnected(failures, "kill -HUP "+strconv.Itoa(os.Getpid()))
		}
	}

	repos, err := openApp(ctx, cmd, app.OnSyncStatus(onStatus))
	if err != nil {
		return err
	}
	defer repos.Close()
	poller = repos.Poller

	go reconnectOnHangup(ctx, poller)
	poller.Start(ctx)

	watcher, ok := repos.Backend.(persist.Watcher)
	if !ok {
		<-ctx.Done()
		return nil
	}

	feed, err := watcher.Watch(ctx)
	if err != nil {
		return printer.Error("failed to watch backend", err.Error(), nil)
	}
	defer feed.Close()

	return watch.StreamChanges(ctx, feed, format, out)
}

// reconnectOnHangup restarts the poller on every SIGHUP until ctx is done.
func reconnectOnHangup(ctx context.Context, poller *realtime.Poller) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			poller.Reconnect(ctx)
		}
	}
}
