//go:build windows

package win32

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/bryanchriswhite/platwin/internal/logger"
	"github.com/bryanchriswhite/platwin/internal/window"
	"github.com/rs/zerolog"
	syscall "golang.org/x/sys/windows"
)

const (
	// DefaultClassName is registered when Settings.ClassName is empty.
	DefaultClassName = "PLATWIN_WINDOW_CLASS"

	interactiveStation = "WinSta0"

	_VK_STRUCTURE_TYPE_WIN32_SURFACE_CREATE_INFO_KHR = 1000009000
)

// Settings configures class registration.
type Settings struct {
	ClassName string
}

// owners routes window procedure calls to the backend that created the HWND.
var (
	ownersMu sync.Mutex
	owners   = make(map[syscall.Handle]*Backend)
	// creating receives messages sent before CreateWindowEx returns
	creating *Backend

	wndProcOnce sync.Once
	wndProcPtr  uintptr
)

// Backend implements the window.Backend interface using user32
type Backend struct {
	instance  syscall.Handle
	className *uint16
	class     uint16
	log       *zerolog.Logger

	styles map[syscall.Handle]uint32
	// events raised outside HandleEvents, delivered at the start of the next drain
	pending []window.Event
	active  window.Dispatcher
}

var (
	_ window.Backend        = (*Backend)(nil)
	_ window.SurfaceBackend = (*Backend)(nil)
)

// New checks that the process can create GUI windows and registers the
// window class. Registering the same class name twice fails, so only one
// backend per class name can exist in a process.
func New(settings Settings) (*Backend, error) {
	log := logger.WithComponent("win32")

	station, err := processWindowStation()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", window.ErrEnvironmentUnavailable, err)
	}
	if station != interactiveStation {
		return nil, fmt.Errorf("%w: window station %q is not interactive", window.ErrEnvironmentUnavailable, station)
	}

	instance, err := getModuleHandle()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", window.ErrEnvironmentUnavailable, err)
	}

	name := settings.ClassName
	if name == "" {
		name = DefaultClassName
	}
	className, err := syscall.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}

	wndProcOnce.Do(func() {
		wndProcPtr = syscall.NewCallback(windowProc)
	})
	cls, err := registerClassEx(&wndClassEx{
		cbSize:        uint32(unsafe.Sizeof(wndClassEx{})),
		style:         _CS_OWNDC,
		lpfnWndProc:   wndProcPtr,
		hInstance:     instance,
		lpszClassName: className,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", window.ErrEnvironmentUnavailable, err)
	}

	log.Info().Str("class", name).Str("station", station).Msg("Registered window class")
	return &Backend{
		instance:  instance,
		className: className,
		class:     cls,
		log:       log,
		styles:    make(map[syscall.Handle]uint32),
	}, nil
}

// Name returns the backend name
func (b *Backend) Name() string {
	return "win32"
}

// Close unregisters the window class
func (b *Backend) Close() error {
	ownersMu.Lock()
	for hwnd, owner := range owners {
		if owner == b {
			delete(owners, hwnd)
		}
	}
	ownersMu.Unlock()
	unregisterClass(b.class, b.instance)
	return nil
}

// CreateWindow creates the window so that Width and Height describe the client area.
func (b *Backend) CreateWindow(params window.Params) (window.Handle, error) {
	style := windowStyle(params.Flags)
	wr := rect{
		left:   params.X,
		top:    params.Y,
		right:  params.X + int32(params.Width),
		bottom: params.Y + int32(params.Height),
	}
	adjustWindowRectEx(&wr, style, 0, 0)

	var parent syscall.Handle
	if params.HasParent {
		parent = syscall.Handle(params.Parent)
	}

	ownersMu.Lock()
	creating = b
	ownersMu.Unlock()
	hwnd, err := createWindowEx(0, b.className, params.Name, style,
		wr.left, wr.top, wr.right-wr.left, wr.bottom-wr.top,
		parent, 0, b.instance, 0)
	ownersMu.Lock()
	creating = nil
	if err == nil {
		owners[hwnd] = b
	}
	ownersMu.Unlock()
	if err != nil {
		b.dropPending(0)
		return 0, err
	}
	b.styles[hwnd] = style

	if !params.Flags.Has(window.FlagUnmapped) {
		showWindow(hwnd, _SW_NORMAL)
	}
	b.log.Debug().
		Uint64("hwnd", uint64(hwnd)).
		Str("style", fmt.Sprintf("0x%08x", style)).
		Msg("Window created")
	return window.Handle(hwnd), nil
}

// DestroyWindow destroys the native window
func (b *Backend) DestroyWindow(h window.Handle) error {
	hwnd := syscall.Handle(h)
	err := destroyWindow(hwnd)
	ownersMu.Lock()
	delete(owners, hwnd)
	ownersMu.Unlock()
	delete(b.styles, hwnd)
	b.dropPending(h)
	return err
}

// dropPending discards queued events for h, or for windows never registered when h is 0.
func (b *Backend) dropPending(h window.Handle) {
	kept := b.pending[:0]
	for _, ev := range b.pending {
		if ev.Handle == h {
			continue
		}
		if h == 0 {
			ownersMu.Lock()
			_, ok := owners[syscall.Handle(ev.Handle)]
			ownersMu.Unlock()
			if !ok {
				continue
			}
		}
		kept = append(kept, ev)
	}
	b.pending = kept
}

// WindowPosition returns the client-area origin in screen coordinates.
func (b *Backend) WindowPosition(h window.Handle) (int32, int32, error) {
	var p point
	clientToScreen(syscall.Handle(h), &p)
	return p.x, p.y, nil
}

// SetWindowPosition moves the window so its client-area origin lands on (x, y).
func (b *Backend) SetWindowPosition(h window.Handle, x, y int32) error {
	hwnd := syscall.Handle(h)
	var cr rect
	if err := getClientRect(hwnd, &cr); err != nil {
		return err
	}
	wr := rect{left: x, top: y, right: x + cr.right - cr.left, bottom: y + cr.bottom - cr.top}
	adjustWindowRectEx(&wr, b.style(hwnd), 0, 0)
	return setWindowPos(hwnd, wr.left, wr.top, 0, 0, _SWP_NOSIZE|_SWP_NOZORDER|_SWP_NOACTIVATE)
}

func (b *Backend) WindowSize(h window.Handle) (uint32, uint32, error) {
	var cr rect
	if err := getClientRect(syscall.Handle(h), &cr); err != nil {
		return 0, 0, err
	}
	return uint32(cr.right - cr.left), uint32(cr.bottom - cr.top), nil
}

// SetWindowSize resizes the window so the client area is width by height.
func (b *Backend) SetWindowSize(h window.Handle, width, height uint32) error {
	hwnd := syscall.Handle(h)
	wr := rect{right: int32(width), bottom: int32(height)}
	adjustWindowRectEx(&wr, b.style(hwnd), 0, 0)
	return setWindowPos(hwnd, 0, 0, wr.right-wr.left, wr.bottom-wr.top, _SWP_NOMOVE|_SWP_NOZORDER|_SWP_NOACTIVATE)
}

func (b *Backend) style(hwnd syscall.Handle) uint32 {
	if s, ok := b.styles[hwnd]; ok {
		return s
	}
	return getWindowLong(hwnd, _GWL_STYLE)
}

// WindowName reads the window text, the only name channel on Win32.
func (b *Backend) WindowName(h window.Handle) (string, error) {
	return getWindowText(syscall.Handle(h)), nil
}

func (b *Backend) SetWindowName(h window.Handle, name string) error {
	return setWindowText(syscall.Handle(h), name)
}

func (b *Backend) ClearWindowName(h window.Handle) error {
	return setWindowText(syscall.Handle(h), "")
}

func (b *Backend) MapWindow(h window.Handle) error {
	showWindow(syscall.Handle(h), _SW_NORMAL)
	return nil
}

func (b *Backend) UnmapWindow(h window.Handle) error {
	showWindow(syscall.Handle(h), _SW_HIDE)
	return nil
}

// HandleEvents pumps the thread queue up to a marker posted at entry, so
// messages that arrive while draining wait for the next call.
func (b *Backend) HandleEvents(d window.Dispatcher) error {
	b.active = d
	defer func() { b.active = nil }()

	pending := b.pending
	b.pending = nil
	for _, ev := range pending {
		d.Dispatch(ev)
	}

	if err := postThreadMessage(syscall.GetCurrentThreadId(), _WM_DRAIN_MARK, 0, 0); err != nil {
		return err
	}
	var m msg
	for peekMessage(&m, 0, 0, 0, _PM_REMOVE) {
		if m.hwnd == 0 && m.message == _WM_DRAIN_MARK {
			break
		}
		translateMessage(&m)
		dispatchMessage(&m)
	}
	return nil
}

// emit hands an event to the active drain or queues it for the next one.
func (b *Backend) emit(ev window.Event) {
	if b.active != nil {
		b.active.Dispatch(ev)
		return
	}
	b.pending = append(b.pending, ev)
}

func (b *Backend) geometry(hwnd syscall.Handle) window.Event {
	ev := window.Event{Kind: window.EventConfigured, Handle: window.Handle(hwnd)}
	ev.X, ev.Y, _ = b.WindowPosition(window.Handle(hwnd))
	ev.Width, ev.Height, _ = b.WindowSize(window.Handle(hwnd))
	return ev
}

func windowProc(hwnd syscall.Handle, message uint32, wParam, lParam uintptr) uintptr {
	ownersMu.Lock()
	b, ok := owners[hwnd]
	if !ok && creating != nil {
		b = creating
		owners[hwnd] = b
		ok = true
	}
	ownersMu.Unlock()
	if !ok {
		return defWindowProc(hwnd, message, wParam, lParam)
	}

	switch message {
	case _WM_CLOSE:
		b.emit(window.Event{Kind: window.EventCloseRequested, Handle: window.Handle(hwnd), Native: "WM_CLOSE"})
		// the caller decides when to destroy
		return 0
	case _WM_SHOWWINDOW:
		kind := window.EventUnmapped
		if wParam != 0 {
			kind = window.EventMapped
		}
		b.emit(window.Event{Kind: kind, Handle: window.Handle(hwnd), Native: "WM_SHOWWINDOW"})
	case _WM_MOVE, _WM_SIZE:
		ev := b.geometry(hwnd)
		ev.Native = messageName(message)
		b.emit(ev)
	default:
		if b.active != nil {
			b.active.Dispatch(window.Event{Handle: window.Handle(hwnd), Native: messageName(message)})
		}
	}
	return defWindowProc(hwnd, message, wParam, lParam)
}

func messageName(m uint32) string {
	switch m {
	case _WM_MOVE:
		return "WM_MOVE"
	case _WM_SIZE:
		return "WM_SIZE"
	case _WM_CLOSE:
		return "WM_CLOSE"
	case _WM_SHOWWINDOW:
		return "WM_SHOWWINDOW"
	}
	return fmt.Sprintf("WM_0x%04x", m)
}

// VulkanExtensions lists the instance extensions for a Win32 surface.
func (b *Backend) VulkanExtensions() []string {
	return []string{"VK_KHR_surface", "VK_KHR_win32_surface"}
}

type vkWin32SurfaceCreateInfo struct {
	sType     uint32
	pNext     uintptr
	flags     uint32
	hinstance uintptr
	hwnd      uintptr
}

// CreateVulkanSurface calls vkCreateWin32SurfaceKHR from the system Vulkan loader.
func (b *Backend) CreateVulkanSurface(h window.Handle, instance uintptr) (uint64, error) {
	if err := _vkCreateWin32SurfaceKHR.Find(); err != nil {
		return 0, fmt.Errorf("%w: %w", window.ErrSurfaceUnsupported, err)
	}
	info := vkWin32SurfaceCreateInfo{
		sType:     _VK_STRUCTURE_TYPE_WIN32_SURFACE_CREATE_INFO_KHR,
		hinstance: uintptr(b.instance),
		hwnd:      uintptr(h),
	}
	var surface uint64
	r, _, _ := _vkCreateWin32SurfaceKHR.Call(instance,
		uintptr(unsafe.Pointer(&info)), 0, uintptr(unsafe.Pointer(&surface)))
	if int32(r) != 0 {
		return 0, fmt.Errorf("vkCreateWin32SurfaceKHR failed: VkResult %d", int32(r))
	}
	return surface, nil
}
