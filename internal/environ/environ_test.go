package environ

import (
	"reflect"
	"testing"
)

func TestKnownServicesFiltersAndSorts(t *testing.T) {
	names := []string{
		"org.freedesktop.DBus",
		"org.kde.KWin",
		":1.42",
		"org.gnome.Shell",
		"org.mpris.MediaPlayer2.spotify",
	}
	got := knownServices(names)
	want := []string{"org.gnome.Shell", "org.kde.KWin"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := knownServices(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestMatchesWM(t *testing.T) {
	wms := []string{"bspwm", " i3 "}
	if !MatchesWM("BSPWM", wms) {
		t.Fatalf("expected case-insensitive match")
	}
	if !MatchesWM("i3", wms) {
		t.Fatalf("expected trimmed match")
	}
	if MatchesWM("", wms) {
		t.Fatalf("empty name must not match")
	}
	if MatchesWM("KWin", wms) {
		t.Fatalf("unexpected match for KWin")
	}
}
