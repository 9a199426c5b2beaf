//go:build !windows

package platform

import (
	"github.com/bryanchriswhite/platwin/internal/window"
	"github.com/bryanchriswhite/platwin/internal/window/x11"
)

const nativeName = "x11"

func openNative(s Settings) (window.Backend, error) {
	return x11.New(x11.Settings{
		Display:           s.Display,
		OverrideResize:    s.OverrideResize,
		OverrideResizeWMs: s.OverrideResizeWMs,
	})
}
