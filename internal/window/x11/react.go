package x11

import (
	"fmt"
	"math"

	"github.com/bryanchriswhite/platwin/internal/window"
)

// reaction is the backend side effect an incoming event triggers.
type reaction int

const (
	reactNone reaction = iota
	reactLockSize
	reactResize
	reactResizeOverride
	reactLocate
)

func (r reaction) String() string {
	switch r {
	case reactLockSize:
		return "lock-size"
	case reactResize:
		return "resize"
	case reactResizeOverride:
		return "resize-override"
	case reactLocate:
		return "locate"
	default:
		return "none"
	}
}

// planReaction decides what the backend does for an event on a window with
// the given flags. locked reports whether the size was already pinned.
func planReaction(kind window.EventKind, flags window.Flags, locked bool, caps Capabilities) reaction {
	switch kind {
	case window.EventMapped:
		if flags.Has(window.FlagResizable) || locked {
			return reactNone
		}
		return reactLockSize
	case window.EventResizeRequest:
		if caps.OverrideResize {
			return reactResizeOverride
		}
		return reactResize
	case window.EventConfigured:
		return reactLocate
	}
	return reactNone
}

// checkPosition rejects coordinates the core protocol's INT16 fields cannot carry.
func checkPosition(x, y int32) error {
	if x < math.MinInt16 || x > math.MaxInt16 || y < math.MinInt16 || y > math.MaxInt16 {
		return fmt.Errorf("position (%d,%d) outside the X coordinate range", x, y)
	}
	return nil
}

// checkSize rejects sizes the core protocol's CARD16 fields cannot carry.
func checkSize(width, height uint32) error {
	if width == 0 || height == 0 || width > math.MaxUint16 || height > math.MaxUint16 {
		return fmt.Errorf("size %dx%d outside the X range 1..%d", width, height, math.MaxUint16)
	}
	return nil
}
