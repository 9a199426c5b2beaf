package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanchriswhite/platwin/internal/alloc"
	"github.com/bryanchriswhite/platwin/internal/logger"
	"github.com/bryanchriswhite/platwin/internal/platform"
	"github.com/bryanchriswhite/platwin/internal/window"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the configured windows and pump events until they are closed",
	Long: `Open a window context on the native backend, create every window listed
under "windows" in the config (or a single 500x300 window when none are listed)
and drain events at poll_interval_ms until each window was asked to close.`,
	Example: `  # Open the configured windows
  platwin run

  # Try the fallback chain with debug logs
  platwin run --log-level debug

  # Exercise the context without a display
  platwin run --backend headless --for 2s`,
	RunE: runRun,
}

var runFor time.Duration

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().DurationVar(&runFor, "for", 0, "stop after this long even if windows are still open")
}

func runRun(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.WithComponent("run")

	tracker := alloc.NewTracker()
	c, err := platform.CreateContext(platform.SettingsFromConfig(cfg), tracker.Callbacks())
	if err != nil {
		return fmt.Errorf("failed to create window context: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if runFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runFor)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// opened is only touched on the loop goroutine
	opened := false
	loop := window.NewLoop(c, time.Duration(cfg.PollIntervalMs)*time.Millisecond)
	loop.OnDrain = func(c *window.Context) {
		if !opened {
			return
		}
		for _, w := range c.Windows() {
			if !w.ShouldClose() {
				continue
			}
			log.Info().Stringer("handle", w.Handle()).Str("name", w.Name()).Msg("Close requested")
			if err := c.DestroyWindow(w); err != nil {
				log.Warn().Err(err).Msg("Failed to destroy window")
			}
		}
		if len(c.Windows()) == 0 {
			cancel()
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	err = loop.Do(ctx, func(c *window.Context) error {
		_, err := openWindows(c, cfg)
		opened = err == nil
		return err
	})
	if err != nil {
		cancel()
		<-errCh
		return err
	}

	log.Info().
		Str("backend", c.Backend()).
		Int("poll_interval_ms", cfg.PollIntervalMs).
		Msg("Windows open, waiting for close requests")

	// Run destroys the context on the loop thread before returning
	runErr := <-errCh

	stats := tracker.Stats()
	log.Info().
		Int("allocs", stats.Allocs).
		Int("frees", stats.Frees).
		Int("reallocs", stats.Reallocs).
		Int("live_buffers", stats.LiveBufs).
		Msg("Allocation summary")
	return runErr
}
