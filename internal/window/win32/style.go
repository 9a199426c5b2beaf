// Package win32 implements window.Backend on user32.
package win32

import "github.com/bryanchriswhite/platwin/internal/window"

const (
	_WS_BORDER      = 0x00800000
	_WS_POPUP       = 0x80000000
	_WS_SYSMENU     = 0x00080000
	_WS_SIZEBOX     = 0x00040000
	_WS_MINIMIZEBOX = 0x00020000
	_WS_MAXIMIZEBOX = 0x00010000
)

// windowStyle derives the WS_* bits for a set of flags. FlagUnmapped does
// not change the style, it only skips ShowWindow.
func windowStyle(flags window.Flags) uint32 {
	flags &^= window.FlagUnmapped
	if flags == window.FlagNormal {
		return _WS_SYSMENU | _WS_MINIMIZEBOX | _WS_MAXIMIZEBOX | _WS_BORDER | _WS_SIZEBOX
	}

	style := uint32(_WS_BORDER)
	if flags.Borderless() {
		// popup windows have no title bar
		style |= _WS_POPUP
	} else {
		style |= _WS_SYSMENU
		if !flags.Has(window.FlagDialog) {
			style |= _WS_MINIMIZEBOX
			if flags.Has(window.FlagResizable) {
				style |= _WS_MAXIMIZEBOX
			}
		}
	}
	if flags.Has(window.FlagResizable) {
		style |= _WS_SIZEBOX
	}
	return style
}
