package platform

import (
	"errors"
	"testing"

	"github.com/bryanchriswhite/platwin/internal/alloc"
	"github.com/bryanchriswhite/platwin/internal/config"
	"github.com/bryanchriswhite/platwin/internal/window"
)

func TestCreateHeadlessContext(t *testing.T) {
	tracker := alloc.NewTracker()
	c, err := CreateContext(Settings{Backend: "Headless"}, tracker.Callbacks())
	if err != nil {
		t.Fatalf("CreateContext failed: %v", err)
	}
	if c.Backend() != Headless {
		t.Fatalf("expected headless backend, got %s", c.Backend())
	}

	if _, err := c.CreateWindow(window.CreateInfo{Name: "smoke", Width: 100, Height: 100}); err != nil {
		t.Fatalf("CreateWindow failed: %v", err)
	}
	if err := DestroyContext(c); err != nil {
		t.Fatalf("DestroyContext failed: %v", err)
	}
	if s := tracker.Stats(); s.LiveBufs != 0 {
		t.Fatalf("expected no live buffers after destroy, got %d", s.LiveBufs)
	}
}

func TestUnknownBackend(t *testing.T) {
	_, err := CreateContext(Settings{Backend: "wayland"}, nil)
	if !errors.Is(err, window.ErrEnvironmentUnavailable) {
		t.Fatalf("expected ErrEnvironmentUnavailable, got %v", err)
	}
}

func TestPartialAllocatorRejected(t *testing.T) {
	cb := alloc.Callbacks{Alloc: func(any, int, int) []byte { return nil }}
	if _, err := CreateContext(Settings{Backend: Headless}, &cb); !errors.Is(err, alloc.ErrIncompleteCallbacks) {
		t.Fatalf("expected ErrIncompleteCallbacks, got %v", err)
	}
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.X11.Display = ":3"
	s := SettingsFromConfig(cfg)
	if s.Display != ":3" || s.OverrideResize != "auto" || s.ClassName != "PLATWIN_WINDOW_CLASS" {
		t.Fatalf("unexpected settings %+v", s)
	}
	if s.Backend != "" {
		t.Fatalf("expected native backend by default, got %q", s.Backend)
	}
}
