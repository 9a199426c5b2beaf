package x11

import (
	"reflect"
	"testing"

	"github.com/bryanchriswhite/platwin/internal/window"
)

func TestSplashFallbackOrder(t *testing.T) {
	tests := []struct {
		name      string
		supported []string
		flags     window.Flags
		want      []string
	}{
		{
			name:      "splash supported",
			supported: []string{atomWindowTypeSplash, atomWindowTypeMenu, atomWindowTypeDialog},
			flags:     window.FlagSplash,
			want:      []string{"type:" + atomWindowTypeSplash},
		},
		{
			name:      "menu when splash missing",
			supported: []string{atomWindowTypeMenu, atomWindowTypeDialog},
			flags:     window.FlagSplash,
			want:      []string{"type:" + atomWindowTypeMenu},
		},
		{
			name:      "dialog adds border suppression",
			supported: []string{atomWindowTypeDialog},
			flags:     window.FlagSplash,
			want:      []string{"type:" + atomWindowTypeDialog, "motif:no-decorations"},
		},
		{
			name:      "dialog skips border suppression when already borderless",
			supported: []string{atomWindowTypeDialog},
			flags:     window.FlagSplash | window.FlagNoBorder,
			want:      []string{"motif:no-decorations", "type:" + atomWindowTypeDialog},
		},
		{
			name:  "override-redirect as last resort",
			flags: window.FlagSplash,
			want:  []string{"override-redirect"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := planStrings(planHints(tt.flags, false, NewCapabilities(tt.supported)))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDialogHints(t *testing.T) {
	caps := NewCapabilities([]string{atomWindowTypeDialog})

	got := planStrings(planHints(window.FlagDialog, true, caps))
	want := []string{"type:" + atomWindowTypeDialog, "transient-for"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	// transient-for does not depend on the dialog type being supported
	got = planStrings(planHints(window.FlagDialog, true, NewCapabilities(nil)))
	if !reflect.DeepEqual(got, []string{"transient-for"}) {
		t.Fatalf("expected only transient-for, got %v", got)
	}
}

func TestNoBorderOnlyWithoutParent(t *testing.T) {
	caps := NewCapabilities(nil)
	if got := planStrings(planHints(window.FlagNoBorder, false, caps)); !reflect.DeepEqual(got, []string{"motif:no-decorations"}) {
		t.Fatalf("expected motif hint, got %v", got)
	}
	if got := planHints(window.FlagNoBorder, true, caps); len(got) != 0 {
		t.Fatalf("expected no hints for parented borderless window, got %v", planStrings(got))
	}
	caps.Motif = false
	if got := planHints(window.FlagNoBorder, false, caps); len(got) != 0 {
		t.Fatalf("expected no hints without motif, got %v", planStrings(got))
	}
}

func TestResizableNeedsAllowedActions(t *testing.T) {
	if got := planHints(window.FlagResizable, false, NewCapabilities(nil)); len(got) != 0 {
		t.Fatalf("expected no hints, got %v", planStrings(got))
	}
	got := planStrings(planHints(window.FlagResizable, false, NewCapabilities([]string{atomAllowedActions})))
	if !reflect.DeepEqual(got, []string{"allowed-actions:+" + atomActionResize}) {
		t.Fatalf("unexpected plan %v", got)
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	caps := NewCapabilities([]string{atomWindowTypeMenu, atomAllowedActions})
	flags := window.FlagSplash | window.FlagDialog | window.FlagResizable
	first := planStrings(planHints(flags, true, caps))
	for i := 0; i < 10; i++ {
		if got := planStrings(planHints(flags, true, caps)); !reflect.DeepEqual(got, first) {
			t.Fatalf("plan changed between calls: %v vs %v", first, got)
		}
	}
}

func TestNormalWindowHasNoHints(t *testing.T) {
	caps := NewCapabilities([]string{atomWindowTypeSplash, atomWindowTypeDialog, atomAllowedActions})
	if got := planHints(window.FlagNormal, false, caps); len(got) != 0 {
		t.Fatalf("expected no hints, got %v", planStrings(got))
	}
}
