package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bryanchriswhite/platwin/internal/logger"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// WindowConfig describes a window opened at startup by the run and serve commands
type WindowConfig struct {
	Name   string   `json:"name" yaml:"name" mapstructure:"name"`
	X      int32    `json:"x" yaml:"x" mapstructure:"x"`
	Y      int32    `json:"y" yaml:"y" mapstructure:"y"`
	Width  uint32   `json:"width" yaml:"width" mapstructure:"width"`
	Height uint32   `json:"height" yaml:"height" mapstructure:"height"`
	Flags  []string `json:"flags,omitempty" yaml:"flags,omitempty" mapstructure:"flags"`
}

// X11Config holds X11 backend settings
type X11Config struct {
	// Display overrides $DISPLAY when set
	Display string `json:"display" yaml:"display" mapstructure:"display"`
	// OverrideResize is auto, always or never
	OverrideResize    string   `json:"override_resize" yaml:"override_resize" mapstructure:"override_resize"`
	OverrideResizeWMs []string `json:"override_resize_wms" yaml:"override_resize_wms" mapstructure:"override_resize_wms"`
}

// Win32Config holds Win32 backend settings
type Win32Config struct {
	ClassName string `json:"class_name" yaml:"class_name" mapstructure:"class_name"`
}

// Config represents the application configuration
type Config struct {
	AppName        string         `json:"app_name" yaml:"app_name" mapstructure:"app_name"`
	Backend        string         `json:"backend" yaml:"backend" mapstructure:"backend"`
	LogLevel       string         `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogPretty      bool           `json:"log_pretty" yaml:"log_pretty" mapstructure:"log_pretty"`
	PollIntervalMs int            `json:"poll_interval_ms" yaml:"poll_interval_ms" mapstructure:"poll_interval_ms"`
	ServerPort     int            `json:"server_port" yaml:"server_port" mapstructure:"server_port"`
	X11            X11Config      `json:"x11" yaml:"x11" mapstructure:"x11"`
	Win32          Win32Config    `json:"win32" yaml:"win32" mapstructure:"win32"`
	Windows        []WindowConfig `json:"windows" yaml:"windows" mapstructure:"windows"`
}

// Manager handles configuration
type Manager struct {
	configPath string
	v          *viper.Viper
	mu         sync.RWMutex
}

// NewManager creates a new configuration manager. An empty configFile
// selects ~/.config/platwin/config.yaml, which is created with defaults
// when missing. PLATWIN_* environment variables override file values.
func NewManager(configFile string) (*Manager, error) {
	actualConfigPath := configFile
	if actualConfigPath == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		actualConfigPath = filepath.Join(dir, "config.yaml")
	}

	m := &Manager{
		configPath: actualConfigPath,
		v:          newViper(actualConfigPath),
	}

	if err := m.load(); err != nil {
		if os.IsNotExist(err) {
			logger.WithComponent("config").Info().
				Str("path", m.configPath).
				Msg("Config file not found, creating new config")
			if err := m.Save(); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Int("windows", len(m.Get().Windows)).
		Msg("Config loaded")

	return m, nil
}

// DefaultDir returns ~/.config/platwin
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "platwin"), nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PLATWIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("app_name", d.AppName)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_pretty", d.LogPretty)
	v.SetDefault("poll_interval_ms", d.PollIntervalMs)
	v.SetDefault("server_port", d.ServerPort)
	v.SetDefault("x11.display", d.X11.Display)
	v.SetDefault("x11.override_resize", d.X11.OverrideResize)
	v.SetDefault("x11.override_resize_wms", d.X11.OverrideResizeWMs)
	v.SetDefault("win32.class_name", d.Win32.ClassName)
	v.SetDefault("windows", []map[string]any{})
	return v
}

// Defaults returns the default configuration
func Defaults() *Config {
	return &Config{
		AppName:        "platwin",
		LogLevel:       "info",
		PollIntervalMs: 16,
		ServerPort:     8080,
		X11: X11Config{
			OverrideResize:    "auto",
			OverrideResizeWMs: []string{"bspwm"},
		},
		Win32: Win32Config{
			ClassName: "PLATWIN_WINDOW_CLASS",
		},
		Windows: []WindowConfig{},
	}
}

// load reads the configuration from disk
func (m *Manager) load() error {
	if _, err := os.Stat(m.configPath); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// GetViper exposes the underlying viper instance for key-level access
func (m *Manager) GetViper() *viper.Viper {
	return m.v
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		logger.WithComponent("config").Warn().Err(err).Msg("Failed to decode config, using defaults")
		return Defaults()
	}
	if cfg.Windows == nil {
		cfg.Windows = []WindowConfig{}
	}
	return &cfg
}

// Save saves the current configuration to disk
func (m *Manager) Save() error {
	cfg := m.Get()

	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Int("windows", len(cfg.Windows)).
		Msg("Saving config")

	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		logger.WithComponent("config").Error().
			Err(err).
			Str("config_dir", configDir).
			Msg("Failed to create config directory")
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		logger.WithComponent("config").Error().
			Err(err).
			Str("path", m.configPath).
			Msg("Failed to write config")
		return err
	}

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Msg("Config saved successfully")
	return nil
}

// Update replaces the entire configuration and saves it
func (m *Manager) Update(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	var settings map[string]any
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return fmt.Errorf("failed to convert config: %w", err)
	}
	m.mu.Lock()
	for k, val := range settings {
		m.v.Set(k, val)
	}
	m.mu.Unlock()
	return m.Save()
}

// Set assigns a single dotted key and saves
func (m *Manager) Set(key string, value any) error {
	m.mu.Lock()
	m.v.Set(key, value)
	m.mu.Unlock()
	return m.Save()
}

// AddWindow appends a startup window
func (m *Manager) AddWindow(w WindowConfig) error {
	cfg := m.Get()
	for _, existing := range cfg.Windows {
		if existing.Name == w.Name {
			return fmt.Errorf("window %q already configured", w.Name)
		}
	}
	cfg.Windows = append(cfg.Windows, w)
	return m.Update(cfg)
}

// GetConfigPath returns the config file path
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
