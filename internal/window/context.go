package window

import (
	"fmt"
	"sync"

	"github.com/bryanchriswhite/platwin/internal/alloc"
	"github.com/bryanchriswhite/platwin/internal/logger"
	"github.com/rs/zerolog"
)

// Context owns one backend and every window created through it.
// Window operations are not safe for concurrent use; callers serialize
// (see Loop). Subscribe and Unsubscribe may be called from any goroutine.
type Context struct {
	backend   Backend
	alloc     *alloc.Adapter
	windows   *arena
	destroyed bool
	log       *zerolog.Logger

	mu        sync.RWMutex
	listeners []chan Transition
}

// NewContext binds b for the lifetime of the context. cb may be nil.
func NewContext(b Backend, cb *alloc.Callbacks) (*Context, error) {
	a, err := alloc.New(cb)
	if err != nil {
		return nil, err
	}
	c := &Context{
		backend:   b,
		alloc:     a,
		windows:   newArena(),
		log:       logger.WithComponent("context"),
		listeners: make([]chan Transition, 0),
	}
	c.log.Debug().
		Str("backend", b.Name()).
		Bool("custom_allocator", a.Custom()).
		Msg("Context created")
	return c, nil
}

// Backend returns the backend name.
func (c *Context) Backend() string {
	return c.backend.Name()
}

// Destroy destroys any windows still alive, closes the backend and every
// subscriber channel. Later calls return ErrContextDestroyed.
func (c *Context) Destroy() error {
	if c.destroyed {
		return ErrContextDestroyed
	}
	for _, w := range c.windows.live() {
		c.log.Warn().Stringer("handle", w.handle).Msg("Destroying window left open at context teardown")
		if err := c.DestroyWindow(w); err != nil {
			c.log.Error().Err(err).Stringer("handle", w.handle).Msg("Failed to destroy window")
		}
	}
	c.mu.Lock()
	c.destroyed = true
	for _, ch := range c.listeners {
		close(ch)
	}
	c.listeners = nil
	c.mu.Unlock()

	if err := c.backend.Close(); err != nil {
		return fmt.Errorf("failed to close %s backend: %w", c.backend.Name(), err)
	}
	c.log.Debug().Msg("Context destroyed")
	return nil
}

func (c *Context) own(w *Window) error {
	if c.destroyed {
		return ErrContextDestroyed
	}
	if w == nil || w.released || w.ctx != c {
		return ErrUnknownWindow
	}
	if got, ok := c.windows.lookup(w.handle); !ok || got != w {
		return ErrUnknownWindow
	}
	return nil
}

// CreateWindow creates, configures and (unless FlagUnmapped) maps a window.
// On failure nothing is registered and every allocation is returned.
func (c *Context) CreateWindow(info CreateInfo) (*Window, error) {
	if c.destroyed {
		return nil, ErrContextDestroyed
	}
	params := Params{
		Name:   info.Name,
		X:      info.X,
		Y:      info.Y,
		Width:  info.Width,
		Height: info.Height,
		Flags:  info.Flags,
	}
	if info.Parent != nil {
		if err := c.own(info.Parent); err != nil {
			return nil, fmt.Errorf("invalid parent: %w", err)
		}
		params.Parent = info.Parent.handle
		params.HasParent = true
	}

	a := c.alloc
	if info.Allocator != nil {
		var err error
		if a, err = alloc.New(info.Allocator); err != nil {
			return nil, err
		}
	}

	w := c.windows.take()
	w.ctx = c
	w.alloc = a
	w.flags = info.Flags
	w.parent = params.Parent
	w.x, w.y = info.X, info.Y
	w.width, w.height = info.Width, info.Height

	buf, err := a.Alloc(len(info.Name), 1)
	if err != nil {
		c.windows.give(w)
		return nil, fmt.Errorf("failed to allocate window record: %w", err)
	}
	w.name = buf
	if info.Name != "" {
		if err := w.storeName(info.Name); err != nil {
			w.release()
			c.windows.give(w)
			return nil, err
		}
	}

	h, err := c.backend.CreateWindow(params)
	if err != nil {
		w.release()
		c.windows.give(w)
		c.log.Error().Err(err).Str("flags", info.Flags.String()).Msg("Native window creation failed")
		return nil, fmt.Errorf("%w: %w", ErrWindowCreation, err)
	}
	w.handle = h
	w.mapped = !info.Flags.Has(FlagUnmapped)
	c.windows.insert(w)

	c.log.Info().
		Stringer("handle", h).
		Str("name", info.Name).
		Str("flags", info.Flags.String()).
		Uint32("width", info.Width).
		Uint32("height", info.Height).
		Msg("Window created")
	c.notify(TransitionCreated, w)
	return w, nil
}

// DestroyWindow releases the native window and frees the record through the
// allocator it was created with. The handle stops resolving immediately.
func (c *Context) DestroyWindow(w *Window) error {
	if err := c.own(w); err != nil {
		return err
	}
	h := w.handle
	c.windows.remove(h)
	snap := w.Snapshot()
	err := c.backend.DestroyWindow(h)
	w.release()
	c.windows.give(w)
	c.publish(Transition{Kind: TransitionDestroyed, Window: snap})
	if err != nil {
		return fmt.Errorf("failed to destroy window %s: %w", h, err)
	}
	c.log.Debug().Stringer("handle", h).Msg("Window destroyed")
	return nil
}

// Windows returns live windows in creation order.
func (c *Context) Windows() []*Window {
	return c.windows.live()
}

// Lookup resolves a native handle to a live window.
func (c *Context) Lookup(h Handle) (*Window, bool) {
	return c.windows.lookup(h)
}

// WindowPosition queries the native position and refreshes the cached one.
func (c *Context) WindowPosition(w *Window) (int32, int32, error) {
	if err := c.own(w); err != nil {
		return 0, 0, err
	}
	x, y, err := c.backend.WindowPosition(w.handle)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get window position: %w", err)
	}
	w.x, w.y = x, y
	return x, y, nil
}

// SetWindowPosition moves the window.
func (c *Context) SetWindowPosition(w *Window, x, y int32) error {
	if err := c.own(w); err != nil {
		return err
	}
	if err := c.backend.SetWindowPosition(w.handle, x, y); err != nil {
		return fmt.Errorf("failed to set window position: %w", err)
	}
	w.x, w.y = x, y
	return nil
}

// WindowSize queries the native size and refreshes the cached one.
func (c *Context) WindowSize(w *Window) (uint32, uint32, error) {
	if err := c.own(w); err != nil {
		return 0, 0, err
	}
	width, height, err := c.backend.WindowSize(w.handle)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get window size: %w", err)
	}
	w.width, w.height = width, height
	return width, height, nil
}

// SetWindowSize resizes the window.
func (c *Context) SetWindowSize(w *Window, width, height uint32) error {
	if err := c.own(w); err != nil {
		return err
	}
	if err := c.backend.SetWindowSize(w.handle, width, height); err != nil {
		return fmt.Errorf("failed to set window size: %w", err)
	}
	w.width, w.height = width, height
	return nil
}

// WindowName reads the name back from the native window.
func (c *Context) WindowName(w *Window) (string, error) {
	if err := c.own(w); err != nil {
		return "", err
	}
	name, err := c.backend.WindowName(w.handle)
	if err != nil {
		return "", fmt.Errorf("failed to get window name: %w", err)
	}
	return name, nil
}

// SetWindowName writes name to every native name channel.
func (c *Context) SetWindowName(w *Window, name string) error {
	if err := c.own(w); err != nil {
		return err
	}
	if err := c.backend.SetWindowName(w.handle, name); err != nil {
		return fmt.Errorf("failed to set window name: %w", err)
	}
	if err := w.storeName(name); err != nil {
		return err
	}
	c.notify(TransitionRenamed, w)
	return nil
}

// ClearWindowName removes the name from every native name channel.
func (c *Context) ClearWindowName(w *Window) error {
	if err := c.own(w); err != nil {
		return err
	}
	if err := c.backend.ClearWindowName(w.handle); err != nil {
		return fmt.Errorf("failed to clear window name: %w", err)
	}
	w.clearName()
	c.notify(TransitionRenamed, w)
	return nil
}

// MapWindow makes the window visible.
func (c *Context) MapWindow(w *Window) error {
	if err := c.own(w); err != nil {
		return err
	}
	if err := c.backend.MapWindow(w.handle); err != nil {
		return fmt.Errorf("failed to map window: %w", err)
	}
	if !w.mapped {
		w.mapped = true
		c.notify(TransitionMapped, w)
	}
	return nil
}

// UnmapWindow hides the window without destroying it.
func (c *Context) UnmapWindow(w *Window) error {
	if err := c.own(w); err != nil {
		return err
	}
	if err := c.backend.UnmapWindow(w.handle); err != nil {
		return fmt.Errorf("failed to unmap window: %w", err)
	}
	if w.mapped {
		w.mapped = false
		c.notify(TransitionUnmapped, w)
	}
	return nil
}

// HandleEvents drains the native events pending right now and applies them.
// It never blocks waiting for new events.
func (c *Context) HandleEvents() error {
	if c.destroyed {
		return ErrContextDestroyed
	}
	if err := c.backend.HandleEvents(dispatcher{c}); err != nil {
		return fmt.Errorf("%s event drain failed: %w", c.backend.Name(), err)
	}
	return nil
}

// VulkanExtensions returns the instance extensions needed for CreateVulkanSurface.
func (c *Context) VulkanExtensions() ([]string, error) {
	if c.destroyed {
		return nil, ErrContextDestroyed
	}
	sb, ok := c.backend.(SurfaceBackend)
	if !ok {
		return nil, ErrSurfaceUnsupported
	}
	return sb.VulkanExtensions(), nil
}

// CreateVulkanSurface creates a VkSurfaceKHR for w on instance.
func (c *Context) CreateVulkanSurface(w *Window, instance uintptr) (uint64, error) {
	if err := c.own(w); err != nil {
		return 0, err
	}
	sb, ok := c.backend.(SurfaceBackend)
	if !ok {
		return 0, ErrSurfaceUnsupported
	}
	return sb.CreateVulkanSurface(w.handle, instance)
}

// dispatch applies one translated event to the window state machine.
func (c *Context) dispatch(ev Event) {
	if ev.Kind == EventUnknown {
		c.log.Debug().
			Str("event", ev.Native).
			Stringer("handle", ev.Handle).
			Msg("Unhandled native event")
		return
	}
	w, ok := c.windows.lookup(ev.Handle)
	if !ok {
		c.log.Debug().
			Str("event", ev.Native).
			Stringer("handle", ev.Handle).
			Msg("Event for unknown window")
		return
	}

	switch ev.Kind {
	case EventCloseRequested:
		if !w.shouldClose {
			w.shouldClose = true
			c.notify(TransitionCloseRequested, w)
		}
	case EventMapped:
		if !w.mapped {
			w.mapped = true
			c.notify(TransitionMapped, w)
		}
	case EventUnmapped:
		if w.mapped {
			w.mapped = false
			c.notify(TransitionUnmapped, w)
		}
	case EventConfigured:
		if w.x != ev.X || w.y != ev.Y || w.width != ev.Width || w.height != ev.Height {
			w.x, w.y = ev.X, ev.Y
			w.width, w.height = ev.Width, ev.Height
			c.notify(TransitionConfigured, w)
		}
	case EventResizeRequest:
		if w.width != ev.Width || w.height != ev.Height {
			w.width, w.height = ev.Width, ev.Height
			c.notify(TransitionConfigured, w)
		}
	}
}

// dispatcher keeps Dispatch off the public Context API.
type dispatcher struct{ c *Context }

func (d dispatcher) Lookup(h Handle) (*Window, bool) { return d.c.windows.lookup(h) }
func (d dispatcher) Dispatch(ev Event)               { d.c.dispatch(ev) }

// Subscribe adds a listener for lifecycle transitions
func (c *Context) Subscribe() chan Transition {
	ch := make(chan Transition, 32)
	c.mu.Lock()
	if c.destroyed {
		close(ch)
	} else {
		c.listeners = append(c.listeners, ch)
	}
	c.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener
func (c *Context) Unsubscribe(ch chan Transition) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, listener := range c.listeners {
		if listener == ch {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}

func (c *Context) notify(kind TransitionKind, w *Window) {
	c.publish(Transition{Kind: kind, Window: w.Snapshot()})
}

func (c *Context) publish(t Transition) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, listener := range c.listeners {
		select {
		case listener <- t:
		default:
			// Skip if channel is full
		}
	}
}
