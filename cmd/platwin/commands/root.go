package commands

import (
	"fmt"
	"os"

	"github.com/bryanchriswhite/platwin/internal/config"
	"github.com/bryanchriswhite/platwin/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "platwin",
		Short: "platwin - cross-platform native window contexts",
		Long: `platwin opens native windows through a single context API on X11 and
Win32, translating each platform's events into one lifecycle model.

Features:
  • Normal, borderless, dialog, splash and resizable windows
  • EWMH/ICCCM/Motif hint fallbacks on X11
  • Window manager detection over EWMH and D-Bus
  • Pluggable allocation callbacks
  • REST and websocket control API`,
		SilenceUsage: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/platwin/config.yaml)")
	rootCmd.PersistentFlags().Int("port", 0, "server port (default is 8080)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("pretty", false, "human readable console logs")
	rootCmd.PersistentFlags().String("backend", "", "backend to use (native default, or headless)")
	rootCmd.PersistentFlags().String("display", "", "X display to connect to (default is $DISPLAY)")

	// Bind flags to viper
	viper.BindPFlag("server_port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_pretty", rootCmd.PersistentFlags().Lookup("pretty"))
	viper.BindPFlag("backend", rootCmd.PersistentFlags().Lookup("backend"))
	viper.BindPFlag("x11.display", rootCmd.PersistentFlags().Lookup("display"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// loadConfig reads the config file, applies command line overrides without
// persisting them and initializes logging from the result.
func loadConfig() (*config.Manager, *config.Config, error) {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize config manager: %w", err)
	}
	cfg := configMgr.Get()
	applyOverrides(cfg)

	logger.Init(cfg.LogLevel, cfg.LogPretty)
	logger.WithComponent("config").Debug().
		Str("path", configMgr.GetConfigPath()).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")
	return configMgr, cfg, nil
}

func applyOverrides(cfg *config.Config) {
	if port := viper.GetInt("server_port"); viper.IsSet("server_port") && port > 0 {
		cfg.ServerPort = port
	}
	if level := viper.GetString("log_level"); level != "" {
		cfg.LogLevel = level
	}
	if viper.GetBool("log_pretty") {
		cfg.LogPretty = true
	}
	if backend := viper.GetString("backend"); backend != "" {
		cfg.Backend = backend
	}
	if display := viper.GetString("x11.display"); display != "" {
		cfg.X11.Display = display
	}
}
