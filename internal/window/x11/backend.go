// Package x11 implements window.Backend over the X protocol.
package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/bryanchriswhite/platwin/internal/environ"
	"github.com/bryanchriswhite/platwin/internal/logger"
	"github.com/bryanchriswhite/platwin/internal/window"
	"github.com/rs/zerolog"
)

// Override-resize policies.
const (
	OverrideResizeAuto   = "auto"
	OverrideResizeAlways = "always"
	OverrideResizeNever  = "never"
)

const eventMask = xproto.EventMaskStructureNotify |
	xproto.EventMaskSubstructureNotify |
	xproto.EventMaskSubstructureRedirect |
	xproto.EventMaskResizeRedirect |
	xproto.EventMaskExposure |
	xproto.EventMaskPropertyChange

// Settings configures the X connection.
type Settings struct {
	// Display overrides $DISPLAY.
	Display string
	// OverrideResize is one of auto, always or never.
	OverrideResize string
	// OverrideResizeWMs lists window managers that need the toggle under auto.
	OverrideResizeWMs []string
}

type atoms struct {
	protocols    xproto.Atom
	deleteWindow xproto.Atom
	netName      xproto.Atom
	netIconName  xproto.Atom
	actionResize xproto.Atom
	allowed      xproto.Atom
}

// Backend implements the window.Backend interface using X11
type Backend struct {
	xu     *xgbutil.XUtil
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	root   xproto.Window
	atoms  atoms
	caps   Capabilities
	log    *zerolog.Logger

	// windows whose min/max size has been pinned on first map
	sizeLocked map[xproto.Window]bool
}

var (
	_ window.Backend        = (*Backend)(nil)
	_ window.SurfaceBackend = (*Backend)(nil)
)

// New connects to the display and reads the window manager's capabilities.
func New(settings Settings) (*Backend, error) {
	log := logger.WithComponent("x11")

	xu, err := xgbutil.NewConnDisplay(settings.Display)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to X server: %w", window.ErrEnvironmentUnavailable, err)
	}

	b := &Backend{
		xu:         xu,
		conn:       xu.Conn(),
		screen:     xu.Screen(),
		root:       xu.RootWin(),
		log:        log,
		sizeLocked: make(map[xproto.Window]bool),
	}

	if err := b.internAtoms(); err != nil {
		b.conn.Close()
		return nil, fmt.Errorf("%w: %w", window.ErrEnvironmentUnavailable, err)
	}

	env := environ.FromX(xu)
	b.caps = NewCapabilities(env.Supported)
	b.caps.WMName = env.WMName
	b.caps.OverrideResize = NeedsOverrideResize(settings, env.WMName)

	log.Info().
		Str("wm", env.WMName).
		Int("supported_atoms", len(env.Supported)).
		Bool("override_resize", b.caps.OverrideResize).
		Msg("Connected to X server")
	return b, nil
}

// NeedsOverrideResize resolves the configured policy against the detected window manager.
func NeedsOverrideResize(s Settings, wmName string) bool {
	switch strings.ToLower(s.OverrideResize) {
	case OverrideResizeAlways:
		return true
	case OverrideResizeNever:
		return false
	default:
		return environ.MatchesWM(wmName, s.OverrideResizeWMs)
	}
}

func (b *Backend) internAtoms() error {
	names := []struct {
		dst  *xproto.Atom
		name string
	}{
		{&b.atoms.protocols, "WM_PROTOCOLS"},
		{&b.atoms.deleteWindow, "WM_DELETE_WINDOW"},
		{&b.atoms.netName, "_NET_WM_NAME"},
		{&b.atoms.netIconName, "_NET_WM_ICON_NAME"},
		{&b.atoms.actionResize, atomActionResize},
		{&b.atoms.allowed, atomAllowedActions},
	}
	for _, n := range names {
		atom, err := xprop.Atm(b.xu, n.name)
		if err != nil {
			return fmt.Errorf("failed to intern %s: %w", n.name, err)
		}
		*n.dst = atom
	}
	return nil
}

// Name returns the backend name
func (b *Backend) Name() string {
	return "x11"
}

// Close closes the X11 connection
func (b *Backend) Close() error {
	b.conn.Close()
	return nil
}

// CreateWindow creates the native window, applies the hint plan and maps it
// unless FlagUnmapped is set.
func (b *Backend) CreateWindow(params window.Params) (window.Handle, error) {
	if err := checkPosition(params.X, params.Y); err != nil {
		return 0, err
	}
	if err := checkSize(params.Width, params.Height); err != nil {
		return 0, err
	}
	wid, err := xproto.NewWindowId(b.conn)
	if err != nil {
		return 0, fmt.Errorf("failed to create window ID: %w", err)
	}

	parent := b.root
	if params.HasParent {
		parent = xproto.Window(params.Parent)
	}

	// value list order follows the mask bit order
	mask := uint32(xproto.CwBackPixel | xproto.CwEventMask)
	values := []uint32{
		b.screen.BlackPixel,
		uint32(eventMask),
	}

	err = xproto.CreateWindowChecked(
		b.conn,
		b.screen.RootDepth,
		wid,
		parent,
		int16(params.X), int16(params.Y),
		uint16(params.Width), uint16(params.Height),
		0, // border width
		xproto.WindowClassInputOutput,
		b.screen.RootVisual,
		mask,
		values,
	).Check()
	if err != nil {
		return 0, fmt.Errorf("failed to create window: %w", err)
	}

	if err := b.configure(wid, params); err != nil {
		xproto.DestroyWindow(b.conn, wid)
		b.conn.Sync()
		return 0, err
	}

	if !params.Flags.Has(window.FlagUnmapped) {
		if err := b.mapRaised(wid); err != nil {
			xproto.DestroyWindow(b.conn, wid)
			b.conn.Sync()
			return 0, err
		}
	}
	b.conn.Sync()
	return window.Handle(wid), nil
}

// configure writes protocols, the hint plan, position hints and the name.
func (b *Backend) configure(wid xproto.Window, params window.Params) error {
	if err := icccm.WmProtocolsSet(b.xu, wid, []string{"WM_DELETE_WINDOW"}); err != nil {
		return fmt.Errorf("failed to set WM_PROTOCOLS: %w", err)
	}

	plan := planHints(params.Flags, params.HasParent, b.caps)
	for _, action := range plan {
		if err := b.apply(wid, params, action); err != nil {
			return fmt.Errorf("failed to apply hint %s: %w", action, err)
		}
	}
	if len(plan) > 0 {
		b.log.Debug().
			Uint32("window", uint32(wid)).
			Str("flags", params.Flags.String()).
			Strs("hints", planStrings(plan)).
			Msg("Applied window hints")
	}

	hints := &icccm.NormalHints{
		Flags: icccm.SizeHintPPosition,
		X:     int(params.X),
		Y:     int(params.Y),
	}
	if err := icccm.WmNormalHintsSet(b.xu, wid, hints); err != nil {
		return fmt.Errorf("failed to set WM_NORMAL_HINTS: %w", err)
	}

	if params.Name != "" {
		if err := b.SetWindowName(window.Handle(wid), params.Name); err != nil {
			return err
		}
	}
	return nil
}

func planStrings(plan []hintAction) []string {
	out := make([]string, 0, len(plan))
	for _, a := range plan {
		out = append(out, a.String())
	}
	return out
}

func (b *Backend) apply(wid xproto.Window, params window.Params, a hintAction) error {
	switch a.kind {
	case actMotifNoBorder:
		return motif.WmHintsSet(b.xu, wid, &motif.Hints{
			Flags:      motif.HintDecorations,
			Decoration: motif.DecorationNone,
		})
	case actWindowType:
		return ewmh.WmWindowTypeSet(b.xu, wid, []string{a.atom})
	case actTransientFor:
		return icccm.WmTransientForSet(b.xu, wid, xproto.Window(params.Parent))
	case actOverrideRedirect:
		return xproto.ChangeWindowAttributesChecked(b.conn, wid, xproto.CwOverrideRedirect, []uint32{1}).Check()
	case actAllowResize:
		data := make([]byte, 4)
		xgb.Put32(data, uint32(b.atoms.actionResize))
		return xproto.ChangePropertyChecked(b.conn, xproto.PropModeAppend, wid,
			b.atoms.allowed, xproto.AtomAtom, 32, 1, data).Check()
	}
	return fmt.Errorf("unknown hint action %d", a.kind)
}

// DestroyWindow destroys the native window
func (b *Backend) DestroyWindow(h window.Handle) error {
	wid := xproto.Window(h)
	delete(b.sizeLocked, wid)
	err := xproto.DestroyWindowChecked(b.conn, wid).Check()
	if err != nil {
		return fmt.Errorf("failed to destroy window: %w", err)
	}
	return nil
}

// WindowPosition returns the window origin in root coordinates.
func (b *Backend) WindowPosition(h window.Handle) (int32, int32, error) {
	reply, err := xproto.TranslateCoordinates(b.conn, xproto.Window(h), b.root, 0, 0).Reply()
	if err != nil {
		return 0, 0, err
	}
	return int32(reply.DstX), int32(reply.DstY), nil
}

func (b *Backend) SetWindowPosition(h window.Handle, x, y int32) error {
	if err := checkPosition(x, y); err != nil {
		return err
	}
	return xproto.ConfigureWindowChecked(b.conn, xproto.Window(h),
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(x), uint32(y)}).Check()
}

func (b *Backend) WindowSize(h window.Handle) (uint32, uint32, error) {
	geom, err := xproto.GetGeometry(b.conn, xproto.Drawable(h)).Reply()
	if err != nil {
		return 0, 0, err
	}
	return uint32(geom.Width), uint32(geom.Height), nil
}

func (b *Backend) SetWindowSize(h window.Handle, width, height uint32) error {
	if err := checkSize(width, height); err != nil {
		return err
	}
	return b.resize(xproto.Window(h), width, height, b.caps.OverrideResize)
}

// resize applies a size, wrapping it in an override-redirect toggle when the
// window manager would otherwise re-float or ignore the window.
func (b *Backend) resize(wid xproto.Window, width, height uint32, override bool) error {
	if override {
		if err := xproto.ChangeWindowAttributesChecked(b.conn, wid, xproto.CwOverrideRedirect, []uint32{1}).Check(); err != nil {
			return fmt.Errorf("failed to set override-redirect: %w", err)
		}
		defer xproto.ChangeWindowAttributes(b.conn, wid, xproto.CwOverrideRedirect, []uint32{0})
	}
	if err := xproto.ConfigureWindowChecked(b.conn, wid,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{width, height}).Check(); err != nil {
		return fmt.Errorf("failed to resize window: %w", err)
	}
	return nil
}

// WindowName reads _NET_WM_NAME, falling back to WM_NAME.
func (b *Backend) WindowName(h window.Handle) (string, error) {
	wid := xproto.Window(h)
	if name, err := ewmh.WmNameGet(b.xu, wid); err == nil && name != "" {
		return name, nil
	}
	name, err := icccm.WmNameGet(b.xu, wid)
	if err != nil {
		// no name property at all
		return "", nil
	}
	return name, nil
}

// SetWindowName writes the UTF-8 and legacy name and icon name properties.
func (b *Backend) SetWindowName(h window.Handle, name string) error {
	wid := xproto.Window(h)
	if err := ewmh.WmNameSet(b.xu, wid, name); err != nil {
		return fmt.Errorf("failed to set _NET_WM_NAME: %w", err)
	}
	if err := icccm.WmNameSet(b.xu, wid, name); err != nil {
		return fmt.Errorf("failed to set WM_NAME: %w", err)
	}
	if err := icccm.WmIconNameSet(b.xu, wid, name); err != nil {
		return fmt.Errorf("failed to set WM_ICON_NAME: %w", err)
	}
	if err := ewmh.WmIconNameSet(b.xu, wid, name); err != nil {
		return fmt.Errorf("failed to set _NET_WM_ICON_NAME: %w", err)
	}
	return nil
}

// ClearWindowName deletes all four name properties.
func (b *Backend) ClearWindowName(h window.Handle) error {
	wid := xproto.Window(h)
	for _, atom := range []xproto.Atom{b.atoms.netName, xproto.AtomWmName, xproto.AtomWmIconName, b.atoms.netIconName} {
		if err := xproto.DeletePropertyChecked(b.conn, wid, atom).Check(); err != nil {
			return fmt.Errorf("failed to delete name property: %w", err)
		}
	}
	return nil
}

func (b *Backend) MapWindow(h window.Handle) error {
	return b.mapRaised(xproto.Window(h))
}

func (b *Backend) mapRaised(wid xproto.Window) error {
	if err := xproto.MapWindowChecked(b.conn, wid).Check(); err != nil {
		return fmt.Errorf("failed to map window: %w", err)
	}
	xproto.ConfigureWindow(b.conn, wid, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
	return nil
}

func (b *Backend) UnmapWindow(h window.Handle) error {
	if err := xproto.UnmapWindowChecked(b.conn, xproto.Window(h)).Check(); err != nil {
		return fmt.Errorf("failed to unmap window: %w", err)
	}
	return nil
}

// HandleEvents snapshots the queued events and then processes exactly those.
func (b *Backend) HandleEvents(d window.Dispatcher) error {
	// round trip so events generated by our own earlier requests are queued
	b.conn.Sync()

	var batch []xgb.Event
	for {
		ev, xerr := b.conn.PollForEvent()
		if ev == nil && xerr == nil {
			break
		}
		if xerr != nil {
			b.log.Warn().Str("error", xerr.Error()).Msg("X protocol error")
			continue
		}
		batch = append(batch, ev)
	}

	for _, ev := range batch {
		tr := translate(ev, b.atoms.deleteWindow)
		if w, ok := d.Lookup(tr.Handle); ok {
			tr = b.react(w, tr)
		}
		d.Dispatch(tr)
	}
	return nil
}

// react performs the backend side effects of an event before the portable
// state is updated, and returns the event as it should be dispatched.
func (b *Backend) react(w *window.Window, ev window.Event) window.Event {
	wid := xproto.Window(ev.Handle)
	switch r := planReaction(ev.Kind, w.Flags(), b.sizeLocked[wid], b.caps); r {
	case reactLockSize:
		// pinned here rather than at creation so tiling managers do not float the window
		if err := b.lockSize(wid); err != nil {
			b.log.Warn().Err(err).Uint32("window", uint32(wid)).Msg("Failed to lock window size")
			return ev
		}
		b.sizeLocked[wid] = true
	case reactResize, reactResizeOverride:
		if err := b.resize(wid, ev.Width, ev.Height, r == reactResizeOverride); err != nil {
			b.log.Warn().Err(err).Uint32("window", uint32(wid)).Msg("Failed to apply resize request")
		}
	case reactLocate:
		// ConfigureNotify is relative to the parent, which is the frame once a
		// window manager reparents us
		x, y, err := b.WindowPosition(ev.Handle)
		if err != nil {
			b.log.Debug().Err(err).Uint32("window", uint32(wid)).Msg("Failed to translate position")
			return ev
		}
		ev.X, ev.Y = x, y
	}
	return ev
}

func (b *Backend) lockSize(wid xproto.Window) error {
	width, height, err := b.WindowSize(window.Handle(wid))
	if err != nil {
		return err
	}
	hints := &icccm.NormalHints{
		Flags:     icccm.SizeHintPPosition | icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize,
		MinWidth:  uint(width),
		MinHeight: uint(height),
		MaxWidth:  uint(width),
		MaxHeight: uint(height),
	}
	if x, y, err := b.WindowPosition(window.Handle(wid)); err == nil {
		hints.X, hints.Y = int(x), int(y)
	}
	return icccm.WmNormalHintsSet(b.xu, wid, hints)
}

// VulkanExtensions lists the instance extensions for an xcb surface.
func (b *Backend) VulkanExtensions() []string {
	return []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}
}

// CreateVulkanSurface needs an xcb_connection_t*, which a pure Go protocol
// connection cannot provide.
func (b *Backend) CreateVulkanSurface(window.Handle, uintptr) (uint64, error) {
	return 0, window.ErrSurfaceUnsupported
}
