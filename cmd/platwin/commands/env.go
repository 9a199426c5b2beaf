package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bryanchriswhite/platwin/internal/environ"
	"github.com/bryanchriswhite/platwin/internal/platform"
	"github.com/bryanchriswhite/platwin/internal/window/x11"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show the detected window manager and capabilities",
	Long: `Query the X display and the session bus and print the window manager name,
the EWMH atoms it supports and the desktop services found on D-Bus.`,
	Example: `  # Show the environment as YAML (default)
  platwin env

  # Show it as JSON
  platwin env --format json`,
	RunE: runEnv,
}

var envFormat string

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().StringVarP(&envFormat, "format", "f", "yaml", "output format (yaml or json)")
}

type envReport struct {
	Backend        string       `json:"backend" yaml:"backend"`
	OverrideResize bool         `json:"override_resize" yaml:"override_resize"`
	Environment    environ.Info `json:"environment" yaml:"environment"`
}

func runEnv(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	info, err := environ.Detect(cfg.X11.Display)
	if err != nil {
		return fmt.Errorf("failed to detect environment: %w", err)
	}

	override := x11.NeedsOverrideResize(x11.Settings{
		OverrideResize:    cfg.X11.OverrideResize,
		OverrideResizeWMs: cfg.X11.OverrideResizeWMs,
	}, info.WMName)
	report := envReport{
		Backend:        platform.Native(),
		OverrideResize: override,
		Environment:    info,
	}

	switch envFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		encoder.SetIndent(2)
		return encoder.Encode(report)
	default:
		return fmt.Errorf("unsupported format: %s (use 'yaml' or 'json')", envFormat)
	}
}
