package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNewManagerCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be created: %v", err)
	}

	cfg := m.Get()
	if cfg.ServerPort != 8080 {
		t.Fatalf("expected port 8080, got %d", cfg.ServerPort)
	}
	if cfg.X11.OverrideResize != "auto" {
		t.Fatalf("expected override_resize auto, got %q", cfg.X11.OverrideResize)
	}
	if !reflect.DeepEqual(cfg.X11.OverrideResizeWMs, []string{"bspwm"}) {
		t.Fatalf("unexpected override list %v", cfg.X11.OverrideResizeWMs)
	}
	if m.GetConfigPath() != path {
		t.Fatalf("expected path %s, got %s", path, m.GetConfigPath())
	}
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `server_port: 9191
log_level: debug
x11:
  override_resize: never
windows:
  - name: editor
    x: 10
    y: 20
    width: 640
    height: 480
    flags: [dialog, resizable]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	cfg := m.Get()
	if cfg.ServerPort != 9191 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected values: port=%d level=%s", cfg.ServerPort, cfg.LogLevel)
	}
	if cfg.X11.OverrideResize != "never" {
		t.Fatalf("expected never, got %q", cfg.X11.OverrideResize)
	}
	// untouched keys keep their defaults
	if cfg.PollIntervalMs != 16 {
		t.Fatalf("expected default poll interval, got %d", cfg.PollIntervalMs)
	}
	if len(cfg.Windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(cfg.Windows))
	}
	w := cfg.Windows[0]
	if w.Name != "editor" || w.X != 10 || w.Y != 20 || w.Width != 640 || w.Height != 480 {
		t.Fatalf("unexpected window %+v", w)
	}
	if !reflect.DeepEqual(w.Flags, []string{"dialog", "resizable"}) {
		t.Fatalf("unexpected flags %v", w.Flags)
	}
}

func TestSetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Set("server_port", 7070); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := m.Set("log_level", "warn"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "server_port: 7070") {
		t.Fatalf("expected saved port, got:\n%s", data)
	}

	reloaded, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg := reloaded.Get(); cfg.ServerPort != 7070 || cfg.LogLevel != "warn" {
		t.Fatalf("expected 7070/warn, got %d/%s", cfg.ServerPort, cfg.LogLevel)
	}
}

func TestAddWindowRejectsDuplicate(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	w := WindowConfig{Name: "main", Width: 320, Height: 240}
	if err := m.AddWindow(w); err != nil {
		t.Fatalf("AddWindow failed: %v", err)
	}
	if err := m.AddWindow(w); err == nil {
		t.Fatal("expected duplicate window to be rejected")
	}
	if got := len(m.Get().Windows); got != 1 {
		t.Fatalf("expected 1 window, got %d", got)
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("PLATWIN_SERVER_PORT", "6060")
	t.Setenv("PLATWIN_X11_DISPLAY", ":7")

	m, err := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg := m.Get()
	if cfg.ServerPort != 6060 {
		t.Fatalf("expected env port 6060, got %d", cfg.ServerPort)
	}
	if cfg.X11.Display != ":7" {
		t.Fatalf("expected env display :7, got %q", cfg.X11.Display)
	}
}
