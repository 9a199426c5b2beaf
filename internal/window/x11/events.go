package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/bryanchriswhite/platwin/internal/window"
)

// translate maps one X event onto the portable state machine. Events with no
// transition come back as EventUnknown with their type name in Native.
func translate(ev xgb.Event, deleteWindow xproto.Atom) window.Event {
	switch e := ev.(type) {
	case xproto.ClientMessageEvent:
		if e.Format == 32 && len(e.Data.Data32) > 0 && xproto.Atom(e.Data.Data32[0]) == deleteWindow {
			return window.Event{Kind: window.EventCloseRequested, Handle: window.Handle(e.Window), Native: "ClientMessage"}
		}
		return window.Event{Handle: window.Handle(e.Window), Native: "ClientMessage"}
	case xproto.MapNotifyEvent:
		return window.Event{Kind: window.EventMapped, Handle: window.Handle(e.Window), Native: "MapNotify"}
	case xproto.UnmapNotifyEvent:
		return window.Event{Kind: window.EventUnmapped, Handle: window.Handle(e.Window), Native: "UnmapNotify"}
	case xproto.ResizeRequestEvent:
		return window.Event{
			Kind:   window.EventResizeRequest,
			Handle: window.Handle(e.Window),
			Width:  uint32(e.Width),
			Height: uint32(e.Height),
			Native: "ResizeRequest",
		}
	case xproto.ConfigureNotifyEvent:
		return window.Event{
			Kind:   window.EventConfigured,
			Handle: window.Handle(e.Window),
			X:      int32(e.X),
			Y:      int32(e.Y),
			Width:  uint32(e.Width),
			Height: uint32(e.Height),
			Native: "ConfigureNotify",
		}
	case xproto.PropertyNotifyEvent:
		return window.Event{Handle: window.Handle(e.Window), Native: "PropertyNotify"}
	case xproto.ExposeEvent:
		return window.Event{Handle: window.Handle(e.Window), Native: "Expose"}
	case xproto.DestroyNotifyEvent:
		return window.Event{Handle: window.Handle(e.Window), Native: "DestroyNotify"}
	case xproto.ReparentNotifyEvent:
		return window.Event{Handle: window.Handle(e.Window), Native: "ReparentNotify"}
	case xproto.GravityNotifyEvent:
		return window.Event{Handle: window.Handle(e.Window), Native: "GravityNotify"}
	case xproto.CirculateNotifyEvent:
		return window.Event{Handle: window.Handle(e.Window), Native: "CirculateNotify"}
	case xproto.CreateNotifyEvent:
		return window.Event{Handle: window.Handle(e.Window), Native: "CreateNotify"}
	case xproto.CirculateRequestEvent:
		return window.Event{Handle: window.Handle(e.Window), Native: "CirculateRequest"}
	case xproto.ConfigureRequestEvent:
		return window.Event{Handle: window.Handle(e.Window), Native: "ConfigureRequest"}
	case xproto.MapRequestEvent:
		return window.Event{Handle: window.Handle(e.Window), Native: "MapRequest"}
	case xproto.MappingNotifyEvent:
		return window.Event{Native: "MappingNotify"}
	case xproto.SelectionClearEvent:
		return window.Event{Handle: window.Handle(e.Owner), Native: "SelectionClear"}
	case xproto.SelectionNotifyEvent:
		return window.Event{Handle: window.Handle(e.Requestor), Native: "SelectionNotify"}
	default:
		return window.Event{Native: eventName(ev)}
	}
}

func eventName(ev xgb.Event) string {
	name := fmt.Sprintf("%T", ev)
	name = strings.TrimPrefix(name, "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "Event")
}
