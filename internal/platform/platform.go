// Package platform picks the native backend for the running OS and opens
// window contexts on it.
package platform

import (
	"fmt"
	"strings"

	"github.com/bryanchriswhite/platwin/internal/alloc"
	"github.com/bryanchriswhite/platwin/internal/config"
	"github.com/bryanchriswhite/platwin/internal/logger"
	"github.com/bryanchriswhite/platwin/internal/window"
	"github.com/bryanchriswhite/platwin/internal/window/headless"
)

// Headless selects the in-memory backend on any OS.
const Headless = "headless"

// Settings selects and configures a backend.
type Settings struct {
	// Backend is empty for the native backend, or a backend name.
	Backend           string
	Display           string
	OverrideResize    string
	OverrideResizeWMs []string
	ClassName         string
}

// SettingsFromConfig maps the config file onto backend settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Backend:           cfg.Backend,
		Display:           cfg.X11.Display,
		OverrideResize:    cfg.X11.OverrideResize,
		OverrideResizeWMs: cfg.X11.OverrideResizeWMs,
		ClassName:         cfg.Win32.ClassName,
	}
}

// Native returns the name of the backend used when Settings.Backend is empty.
func Native() string {
	return nativeName
}

// CreateContext opens the selected backend and binds it to a new context.
// cb may be nil for the default allocator. On error nothing stays open.
func CreateContext(s Settings, cb *alloc.Callbacks) (*window.Context, error) {
	b, err := openBackend(s)
	if err != nil {
		return nil, err
	}
	c, err := window.NewContext(b, cb)
	if err != nil {
		b.Close()
		return nil, err
	}
	logger.WithComponent("platform").Info().
		Str("backend", b.Name()).
		Msg("Context opened")
	return c, nil
}

// DestroyContext destroys c along with any windows it still owns. It must run
// on the thread that pumps c's events; a Context driven by window.Loop is
// destroyed by the loop itself.
func DestroyContext(c *window.Context) error {
	return c.Destroy()
}

func openBackend(s Settings) (window.Backend, error) {
	switch name := strings.ToLower(s.Backend); name {
	case Headless:
		return headless.New(), nil
	case "", nativeName:
		return openNative(s)
	default:
		return nil, fmt.Errorf("%w: backend %q is not available on this platform", window.ErrEnvironmentUnavailable, s.Backend)
	}
}
