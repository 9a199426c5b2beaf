package window

import (
	"fmt"

	"github.com/bryanchriswhite/platwin/internal/alloc"
)

// Handle is a native window identifier (an X window id or an HWND).
type Handle uint64

func (h Handle) String() string {
	return fmt.Sprintf("0x%x", uint64(h))
}

// CreateInfo describes a window to create.
type CreateInfo struct {
	// Name is the initial title. Empty leaves the name unset.
	Name string
	// Parent makes the new window transient-for Parent. Destroying the parent does not cascade.
	Parent *Window
	X, Y   int32
	Width  uint32
	Height uint32
	Flags  Flags
	// Allocator overrides the context allocator for this window's bookkeeping.
	// The same callbacks are used again when the window is destroyed.
	Allocator *alloc.Callbacks
}

// Window is the portable record for one native window. It is owned by the
// Context that created it and must not be used after DestroyWindow.
type Window struct {
	ctx    *Context
	serial uint64
	handle Handle
	flags  Flags
	parent Handle

	mapped      bool
	shouldClose bool

	x, y          int32
	width, height uint32

	// name has exactly the length requested from the allocator
	alloc    *alloc.Adapter
	name     []byte
	nameLen  int
	named    bool
	released bool

	// UserData is reserved for the caller and never read or written by the system.
	UserData any
}

// Handle returns the native handle.
func (w *Window) Handle() Handle { return w.handle }

// Flags returns the flags the window was created with.
func (w *Window) Flags() Flags { return w.flags }

// Mapped reports whether the window is currently mapped.
func (w *Window) Mapped() bool { return w.mapped }

// ShouldClose reports whether the user asked for the window to close.
// The window stays alive until DestroyWindow.
func (w *Window) ShouldClose() bool { return w.shouldClose }

// Position returns the last known position without a native round trip.
func (w *Window) Position() (x, y int32) { return w.x, w.y }

// Size returns the last known size without a native round trip.
func (w *Window) Size() (width, height uint32) { return w.width, w.height }

// Name returns the last name set through the context.
func (w *Window) Name() string {
	return string(w.name[:w.nameLen])
}

// Snapshot is a copyable view of a window's state.
type Snapshot struct {
	Handle      Handle `json:"handle"`
	Parent      Handle `json:"parent,omitempty"`
	Name        string `json:"name"`
	Flags       string `json:"flags"`
	Mapped      bool   `json:"mapped"`
	ShouldClose bool   `json:"should_close"`
	X           int32  `json:"x"`
	Y           int32  `json:"y"`
	Width       uint32 `json:"width"`
	Height      uint32 `json:"height"`
}

// Snapshot copies the window state.
func (w *Window) Snapshot() Snapshot {
	return Snapshot{
		Handle:      w.handle,
		Parent:      w.parent,
		Name:        w.Name(),
		Flags:       w.flags.String(),
		Mapped:      w.mapped,
		ShouldClose: w.shouldClose,
		X:           w.x,
		Y:           w.y,
		Width:       w.width,
		Height:      w.height,
	}
}

// storeName copies name into the allocator-backed buffer, growing it when needed.
func (w *Window) storeName(name string) error {
	if w.name == nil || len(w.name) < len(name) {
		buf, err := w.alloc.Realloc(w.name, len(name))
		if err != nil {
			return fmt.Errorf("failed to grow name buffer: %w", err)
		}
		w.name = buf
	}
	w.nameLen = copy(w.name, name)
	w.named = true
	return nil
}

func (w *Window) clearName() {
	w.nameLen = 0
	w.named = false
}

func (w *Window) release() {
	w.alloc.Free(w.name)
	w.name = nil
	w.nameLen = 0
}
