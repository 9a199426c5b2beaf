package window

// Params is the backend-facing form of CreateInfo, with the parent resolved
// to its native handle.
type Params struct {
	Name      string
	Parent    Handle
	HasParent bool
	X, Y      int32
	Width     uint32
	Height    uint32
	Flags     Flags
}

// Backend defines the contract every native window system implements (X11, Win32, headless).
// A Context binds exactly one Backend at creation and never swaps it.
type Backend interface {
	// Name returns the backend name (e.g., "x11", "win32")
	Name() string

	// Close releases the native connection or instance state
	Close() error

	// CreateWindow creates and configures a native window and returns its handle.
	// On error nothing native may be left behind.
	CreateWindow(params Params) (Handle, error)

	// DestroyWindow releases the native window
	DestroyWindow(h Handle) error

	WindowPosition(h Handle) (x, y int32, err error)
	SetWindowPosition(h Handle, x, y int32) error
	WindowSize(h Handle) (width, height uint32, err error)
	SetWindowSize(h Handle, width, height uint32) error

	// WindowName reads the name back from the native channel
	WindowName(h Handle) (string, error)
	// SetWindowName writes name to every native name channel
	SetWindowName(h Handle, name string) error
	// ClearWindowName deletes or empties every native name channel
	ClearWindowName(h Handle) error

	MapWindow(h Handle) error
	UnmapWindow(h Handle) error

	// HandleEvents processes the native events pending at entry and returns
	// without blocking. Each translated event is handed to d.
	HandleEvents(d Dispatcher) error
}

// SurfaceBackend is implemented by backends that can hand a native window to Vulkan.
type SurfaceBackend interface {
	// VulkanExtensions lists the instance extensions surface creation needs
	VulkanExtensions() []string
	// CreateVulkanSurface creates a VkSurfaceKHR for h on the given VkInstance
	CreateVulkanSurface(h Handle, instance uintptr) (uint64, error)
}
