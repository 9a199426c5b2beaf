// Package environ detects which window manager and desktop services are
// running, so backends can pick workarounds and the CLI can report them.
package environ

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/bryanchriswhite/platwin/internal/logger"
	"github.com/godbus/dbus/v5"
)

// Info describes the running desktop environment.
type Info struct {
	OS          string   `json:"os" yaml:"os"`
	SessionType string   `json:"session_type,omitempty" yaml:"session_type,omitempty"`
	Display     string   `json:"display,omitempty" yaml:"display,omitempty"`
	WMName      string   `json:"wm_name,omitempty" yaml:"wm_name,omitempty"`
	WMSource    string   `json:"wm_source,omitempty" yaml:"wm_source,omitempty"`
	Supported   []string `json:"supported,omitempty" yaml:"supported,omitempty"`
	Services    []string `json:"services,omitempty" yaml:"services,omitempty"`
}

// Window managers and shells that own a well-known session bus name.
var busServices = map[string]string{
	"org.kde.KWin":                   "KWin",
	"org.gnome.Shell":                "GNOME Shell",
	"org.gnome.Mutter.DisplayConfig": "Mutter",
	"org.xfce.Xfwm4":                 "Xfwm4",
	"org.freedesktop.compiz":         "Compiz",
}

// FromX fills the EWMH part of Info from an open connection: the
// _NET_SUPPORTING_WM_CHECK name and the _NET_SUPPORTED list.
func FromX(xu *xgbutil.XUtil) Info {
	log := logger.WithComponent("environ")
	info := base()

	if name, err := ewmh.GetEwmhWM(xu); err == nil && name != "" {
		info.WMName = name
		info.WMSource = "ewmh"
	} else if err != nil {
		log.Debug().Err(err).Msg("No EWMH compliant window manager found")
	}

	supported, err := ewmh.SupportedGet(xu)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to read _NET_SUPPORTED")
	} else {
		sort.Strings(supported)
		info.Supported = supported
	}
	return info
}

// Detect opens its own connections to the X display (when on X) and the
// session bus. Missing pieces are left empty; an error is returned only when
// neither source answered.
func Detect(display string) (Info, error) {
	log := logger.WithComponent("environ")
	info := base()
	if display != "" {
		info.Display = display
	}

	var xerr error
	if runtime.GOOS != "windows" {
		var xu *xgbutil.XUtil
		xu, xerr = xgbutil.NewConnDisplay(display)
		if xerr == nil {
			x := FromX(xu)
			info.WMName, info.WMSource, info.Supported = x.WMName, x.WMSource, x.Supported
			xu.Conn().Close()
		} else {
			log.Debug().Err(xerr).Str("display", display).Msg("X display not reachable")
		}
	}

	services, berr := SessionServices()
	if berr != nil {
		log.Debug().Err(berr).Msg("Session bus not reachable")
	}
	info.Services = services
	if info.WMName == "" && len(services) > 0 {
		info.WMName = busServices[services[0]]
		info.WMSource = "dbus"
	}

	if xerr != nil && berr != nil && runtime.GOOS != "windows" {
		return info, fmt.Errorf("no X display (%v) and no session bus (%v)", xerr, berr)
	}
	return info, nil
}

// SessionServices lists the known window manager names currently owned on
// the session bus.
func SessionServices() ([]string, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	var names []string
	if err := conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return nil, fmt.Errorf("failed to list D-Bus names: %w", err)
	}
	return knownServices(names), nil
}

func knownServices(names []string) []string {
	found := make([]string, 0)
	for _, name := range names {
		if _, ok := busServices[name]; ok {
			found = append(found, name)
		}
	}
	sort.Strings(found)
	return found
}

func base() Info {
	return Info{
		OS:          runtime.GOOS,
		SessionType: strings.ToLower(os.Getenv("XDG_SESSION_TYPE")),
		Display:     os.Getenv("DISPLAY"),
	}
}

// MatchesWM reports whether name is one of wms, ignoring case.
func MatchesWM(name string, wms []string) bool {
	if name == "" {
		return false
	}
	for _, wm := range wms {
		if strings.EqualFold(strings.TrimSpace(wm), name) {
			return true
		}
	}
	return false
}
