//go:build windows

package platform

import (
	"github.com/bryanchriswhite/platwin/internal/window"
	"github.com/bryanchriswhite/platwin/internal/window/win32"
)

const nativeName = "win32"

func openNative(s Settings) (window.Backend, error) {
	return win32.New(win32.Settings{ClassName: s.ClassName})
}
