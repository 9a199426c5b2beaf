package commands

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bryanchriswhite/platwin/internal/config"
	"github.com/bryanchriswhite/platwin/internal/window"
	"github.com/bryanchriswhite/platwin/internal/window/headless"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		key, value string
		want       any
		wantErr    bool
	}{
		{"server_port", "9090", 9090, false},
		{"server_port", "abc", nil, true},
		{"poll_interval_ms", "0", nil, true},
		{"log_level", "trace", "trace", false},
		{"log_level", "loud", nil, true},
		{"log_pretty", "true", true, false},
		{"x11.override_resize", "never", "never", false},
		{"x11.override_resize", "sometimes", nil, true},
		{"x11.override_resize_wms", "bspwm, herbstluftwm,", []string{"bspwm", "herbstluftwm"}, false},
		{"windows", "x", nil, true},
		{"x11.display", ":1", ":1", false},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			got, err := parseValue(tt.key, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCreateInfo(t *testing.T) {
	info, err := createInfo(config.WindowConfig{Name: "tool", X: 5, Y: 6, Width: 7, Height: 8, Flags: []string{"splash", "resizable"}})
	if err != nil {
		t.Fatalf("createInfo failed: %v", err)
	}
	if info.Flags != window.FlagSplash|window.FlagResizable {
		t.Fatalf("expected splash|resizable, got %s", info.Flags)
	}
	if info.X != 5 || info.Y != 6 || info.Width != 7 || info.Height != 8 {
		t.Fatalf("unexpected geometry %+v", info)
	}

	if _, err := createInfo(config.WindowConfig{Name: "bad", Flags: []string{"sticky"}}); err == nil {
		t.Fatal("expected unknown flag to fail")
	}
}

func TestOpenWindowsFallsBackToDefault(t *testing.T) {
	c, err := window.NewContext(headless.New(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Destroy()

	opened, err := openWindows(c, config.Defaults())
	if err != nil {
		t.Fatalf("openWindows failed: %v", err)
	}
	if len(opened) != 1 || opened[0].Name() != defaultWindow.Name {
		t.Fatalf("expected the default window, got %d windows", len(opened))
	}
	if w, h := opened[0].Size(); w != 500 || h != 300 {
		t.Fatalf("expected 500x300, got %dx%d", w, h)
	}
}

func TestAddWindowValidates(t *testing.T) {
	m, err := config.NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		wc   config.WindowConfig
	}{
		{"missing name", config.WindowConfig{Width: 10, Height: 10}},
		{"zero width", config.WindowConfig{Name: "a", Height: 10}},
		{"unknown flag", config.WindowConfig{Name: "a", Width: 10, Height: 10, Flags: []string{"sticky"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := addWindow(m, tt.wc); err == nil {
				t.Fatal("expected window to be rejected")
			}
		})
	}
	if n := len(m.Get().Windows); n != 0 {
		t.Fatalf("expected rejected windows to leave config untouched, got %d", n)
	}
}

func TestConfigAddWindowCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	rootCmd.SetArgs([]string{"--config", path, "config", "add-window", "prefs",
		"--x", "40", "--width", "400", "--height", "250", "--flags", "dialog,resizable"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("add-window failed: %v", err)
	}

	m, err := config.NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	windows := m.Get().Windows
	if len(windows) != 1 {
		t.Fatalf("expected 1 configured window, got %d", len(windows))
	}
	want := config.WindowConfig{Name: "prefs", X: 40, Width: 400, Height: 250, Flags: []string{"dialog", "resizable"}}
	if !reflect.DeepEqual(windows[0], want) {
		t.Fatalf("expected %+v, got %+v", want, windows[0])
	}

	// the persisted entry opens like any other configured window
	c, err := window.NewContext(headless.New(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Destroy()
	opened, err := openWindows(c, m.Get())
	if err != nil {
		t.Fatalf("openWindows failed: %v", err)
	}
	if len(opened) != 1 || opened[0].Flags() != window.FlagDialog|window.FlagResizable {
		t.Fatalf("expected the dialog window, got %d windows", len(opened))
	}
}
