package x11

import (
	"math"
	"testing"

	"github.com/bryanchriswhite/platwin/internal/window"
)

func TestPlanReaction(t *testing.T) {
	plain := Capabilities{}
	override := Capabilities{OverrideResize: true}
	tests := []struct {
		name   string
		kind   window.EventKind
		flags  window.Flags
		locked bool
		caps   Capabilities
		want   reaction
	}{
		{"first map locks size", window.EventMapped, window.FlagNormal, false, plain, reactLockSize},
		{"second map leaves size alone", window.EventMapped, window.FlagNormal, true, plain, reactNone},
		{"resizable never locks", window.EventMapped, window.FlagResizable, false, plain, reactNone},
		{"dialog locks too", window.EventMapped, window.FlagDialog, false, override, reactLockSize},
		{"resize request", window.EventResizeRequest, window.FlagNormal, true, plain, reactResize},
		{"resize request under toggling wm", window.EventResizeRequest, window.FlagNormal, true, override, reactResizeOverride},
		{"configure is relocated to root", window.EventConfigured, window.FlagNormal, false, plain, reactLocate},
		{"close needs nothing", window.EventCloseRequested, window.FlagNormal, false, plain, reactNone},
		{"unmap needs nothing", window.EventUnmapped, window.FlagNormal, true, plain, reactNone},
		{"unknown needs nothing", window.EventUnknown, window.FlagNormal, false, override, reactNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := planReaction(tt.kind, tt.flags, tt.locked, tt.caps); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestGeometryRange(t *testing.T) {
	positions := []struct {
		x, y int32
		ok   bool
	}{
		{0, 0, true},
		{-100, 2000, true},
		{math.MaxInt16, math.MinInt16, true},
		{math.MaxInt16 + 1, 0, false},
		{0, math.MinInt16 - 1, false},
		{70000, 70000, false},
	}
	for _, tt := range positions {
		if err := checkPosition(tt.x, tt.y); (err == nil) != tt.ok {
			t.Fatalf("checkPosition(%d, %d): expected ok=%v, got %v", tt.x, tt.y, tt.ok, err)
		}
	}

	sizes := []struct {
		w, h uint32
		ok   bool
	}{
		{500, 300, true},
		{1, 1, true},
		{math.MaxUint16, math.MaxUint16, true},
		{0, 300, false},
		{500, 0, false},
		{math.MaxUint16 + 1, 300, false},
		{1 << 20, 1 << 20, false},
	}
	for _, tt := range sizes {
		if err := checkSize(tt.w, tt.h); (err == nil) != tt.ok {
			t.Fatalf("checkSize(%d, %d): expected ok=%v, got %v", tt.w, tt.h, tt.ok, err)
		}
	}
}
