package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanchriswhite/platwin/internal/api"
	"github.com/bryanchriswhite/platwin/internal/environ"
	"github.com/bryanchriswhite/platwin/internal/logger"
	"github.com/bryanchriswhite/platwin/internal/platform"
	"github.com/bryanchriswhite/platwin/internal/window"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the control API",
	Long: `Start an HTTP server that creates and drives windows on one context.

Window calls from every request are serialized onto a single event loop.
Lifecycle transitions are streamed on /api/events over a websocket.`,
	Example: `  # Start server on default port (8080)
  platwin serve

  # Start server on custom port
  platwin serve --port 9090

  # Serve without a display
  platwin serve --backend headless

  # Also open the windows from the config file
  platwin serve --open`,
	RunE: runServe,
}

var serveOpen bool

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "create the configured windows at startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.WithComponent("serve")

	c, err := platform.CreateContext(platform.SettingsFromConfig(cfg), nil)
	if err != nil {
		return fmt.Errorf("failed to create window context: %w", err)
	}

	env, err := environ.Detect(cfg.X11.Display)
	if err != nil {
		log.Warn().Err(err).Msg("Environment detection incomplete")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := window.NewLoop(c, time.Duration(cfg.PollIntervalMs)*time.Millisecond)
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	if serveOpen {
		if err := loop.Do(ctx, func(c *window.Context) error {
			_, err := openWindows(c, cfg)
			return err
		}); err != nil {
			log.Error().Err(err).Msg("Failed to open configured windows")
		}
	}

	server := api.NewServer(loop, env)
	go func() {
		if err := server.Start(cfg.ServerPort); err != nil {
			log.Error().Err(err).Msg("Server error")
			stop()
		}
	}()

	log.Info().
		Str("backend", c.Backend()).
		Str("api", fmt.Sprintf("http://localhost:%d/api", cfg.ServerPort)).
		Msg("platwin is running, press Ctrl+C to stop")

	// the loop destroys the context on its own thread before it returns
	loopErr := <-done
	log.Info().Msg("Shut down gracefully")
	return loopErr
}
