package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bryanchriswhite/platwin/internal/config"
	"github.com/bryanchriswhite/platwin/internal/logger"
	"github.com/bryanchriswhite/platwin/internal/window/x11"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage platwin configuration",
	Long:  `View and manage platwin configuration settings.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current platwin configuration.`,
	Example: `  # Show configuration as YAML (default)
  platwin config show

  # Show configuration as JSON
  platwin config show --format json`,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Long:  `Set a specific configuration value.`,
	Example: `  # Set server port
  platwin config set server_port 9090

  # Always toggle override-redirect around resizes
  platwin config set x11.override_resize always

  # Window managers that need the toggle in auto mode
  platwin config set x11.override_resize_wms bspwm,herbstluftwm`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Long:  `Get a specific configuration value.`,
	Example: `  # Get server port
  platwin config get server_port

  # Get the X display override
  platwin config get x11.display`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

var configAddWindowCmd = &cobra.Command{
	Use:   "add-window NAME",
	Short: "Add a window opened at startup",
	Long:  `Append a window to the list the run and serve commands open at startup.`,
	Example: `  # A fixed-size dialog
  platwin config add-window prefs --width 400 --height 250 --flags dialog

  # A borderless, resizable window at (100,50)
  platwin config add-window canvas --x 100 --y 50 --width 800 --height 600 --flags no_border,resizable`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigAddWindow,
}

var (
	formatFlag string
	newWindow  config.WindowConfig
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configAddWindowCmd)

	configShowCmd.Flags().StringVarP(&formatFlag, "format", "f", "yaml", "output format (yaml or json)")

	configAddWindowCmd.Flags().Int32Var(&newWindow.X, "x", 0, "initial x position")
	configAddWindowCmd.Flags().Int32Var(&newWindow.Y, "y", 0, "initial y position")
	configAddWindowCmd.Flags().Uint32Var(&newWindow.Width, "width", defaultWindow.Width, "width in pixels")
	configAddWindowCmd.Flags().Uint32Var(&newWindow.Height, "height", defaultWindow.Height, "height in pixels")
	configAddWindowCmd.Flags().StringSliceVar(&newWindow.Flags, "flags", nil, "window flags (no_border, dialog, splash, resizable, unmapped)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg := configMgr.Get()

	switch formatFlag {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(cfg)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		encoder.SetIndent(2)
		return encoder.Encode(cfg)
	default:
		return fmt.Errorf("unsupported format: %s (use 'yaml' or 'json')", formatFlag)
	}
}

// parseValue converts a command line value to the type stored under key
func parseValue(key, value string) (any, error) {
	switch key {
	case "server_port", "poll_interval_ms":
		var num int
		if _, err := fmt.Sscanf(value, "%d", &num); err != nil || num <= 0 {
			return nil, fmt.Errorf("invalid number: %s", value)
		}
		return num, nil
	case "log_level":
		validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[value] {
			return nil, fmt.Errorf("invalid log level: %s (use: trace, debug, info, warn, error)", value)
		}
		return value, nil
	case "log_pretty":
		var enabled bool
		if _, err := fmt.Sscanf(value, "%t", &enabled); err != nil {
			return nil, fmt.Errorf("invalid boolean: %s (use: true or false)", value)
		}
		return enabled, nil
	case "x11.override_resize":
		switch value {
		case x11.OverrideResizeAuto, x11.OverrideResizeAlways, x11.OverrideResizeNever:
			return value, nil
		}
		return nil, fmt.Errorf("invalid policy: %s (use: auto, always, never)", value)
	case "x11.override_resize_wms":
		wms := make([]string, 0)
		for _, wm := range strings.Split(value, ",") {
			if wm = strings.TrimSpace(wm); wm != "" {
				wms = append(wms, wm)
			}
		}
		return wms, nil
	case "windows":
		return nil, fmt.Errorf("edit the windows list in the config file directly")
	default:
		// Default to string
		return value, nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]

	value, err := parseValue(key, args[1])
	if err != nil {
		return err
	}

	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := configMgr.Set(key, value); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	logger.WithComponent("config").Info().Str("key", key).Interface("value", value).Msg("Configuration updated")
	fmt.Printf("Configuration updated: %s = %v\n", key, value)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	v := configMgr.GetViper()
	if !v.IsSet(key) {
		return fmt.Errorf("configuration key not found: %s", key)
	}

	fmt.Println(v.Get(key))
	return nil
}

func runConfigAddWindow(cmd *cobra.Command, args []string) error {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	wc := newWindow
	wc.Name = args[0]
	if err := addWindow(configMgr, wc); err != nil {
		return err
	}

	logger.WithComponent("config").Info().
		Str("name", wc.Name).
		Uint32("width", wc.Width).
		Uint32("height", wc.Height).
		Strs("flags", wc.Flags).
		Msg("Startup window added")
	fmt.Printf("Window %q added (%d windows configured)\n", wc.Name, len(configMgr.Get().Windows))
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println(configMgr.GetConfigPath())
	return nil
}
