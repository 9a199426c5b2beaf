// Package headless is an in-memory window backend. It has no display and is
// used for tests and for running the control API on machines without one.
package headless

import (
	"fmt"
	"sync"

	"github.com/bryanchriswhite/platwin/internal/logger"
	"github.com/bryanchriswhite/platwin/internal/window"
)

type nativeWindow struct {
	params window.Params
	x, y   int32
	width  uint32
	height uint32
	name   string
	named  bool
	mapped bool
}

// Backend keeps native windows in a map and events in a queue.
// Post may be called from any goroutine.
type Backend struct {
	mu      sync.Mutex
	next    window.Handle
	windows map[window.Handle]*nativeWindow
	queue   []window.Event
	closed  bool

	// FailCreate, when set, is returned by the next CreateWindow.
	FailCreate error
	// Created records every accepted Params in order.
	Created []window.Params
}

var _ window.Backend = (*Backend)(nil)

// New returns an empty backend. Handles start at 0x100 so zero never resolves.
func New() *Backend {
	return &Backend{
		next:    0x100,
		windows: make(map[window.Handle]*nativeWindow),
	}
}

func (b *Backend) Name() string { return "headless" }

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("headless backend already closed")
	}
	b.closed = true
	b.windows = nil
	b.queue = nil
	return nil
}

func (b *Backend) get(h window.Handle) (*nativeWindow, error) {
	nw, ok := b.windows[h]
	if !ok {
		return nil, fmt.Errorf("bad window %s", h)
	}
	return nw, nil
}

func (b *Backend) CreateWindow(params window.Params) (window.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.FailCreate; err != nil {
		b.FailCreate = nil
		return 0, err
	}
	if params.HasParent {
		if _, err := b.get(params.Parent); err != nil {
			return 0, err
		}
	}
	h := b.next
	b.next++
	b.windows[h] = &nativeWindow{
		params: params,
		x:      params.X,
		y:      params.Y,
		width:  params.Width,
		height: params.Height,
		name:   params.Name,
		named:  params.Name != "",
		mapped: !params.Flags.Has(window.FlagUnmapped),
	}
	b.Created = append(b.Created, params)
	return h, nil
}

func (b *Backend) DestroyWindow(h window.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.get(h); err != nil {
		return err
	}
	delete(b.windows, h)
	return nil
}

func (b *Backend) WindowPosition(h window.Handle) (int32, int32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	nw, err := b.get(h)
	if err != nil {
		return 0, 0, err
	}
	return nw.x, nw.y, nil
}

func (b *Backend) SetWindowPosition(h window.Handle, x, y int32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	nw, err := b.get(h)
	if err != nil {
		return err
	}
	nw.x, nw.y = x, y
	return nil
}

func (b *Backend) WindowSize(h window.Handle) (uint32, uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	nw, err := b.get(h)
	if err != nil {
		return 0, 0, err
	}
	return nw.width, nw.height, nil
}

func (b *Backend) SetWindowSize(h window.Handle, width, height uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	nw, err := b.get(h)
	if err != nil {
		return err
	}
	nw.width, nw.height = width, height
	return nil
}

func (b *Backend) WindowName(h window.Handle) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	nw, err := b.get(h)
	if err != nil {
		return "", err
	}
	return nw.name, nil
}

func (b *Backend) SetWindowName(h window.Handle, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	nw, err := b.get(h)
	if err != nil {
		return err
	}
	nw.name, nw.named = name, true
	return nil
}

func (b *Backend) ClearWindowName(h window.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	nw, err := b.get(h)
	if err != nil {
		return err
	}
	nw.name, nw.named = "", false
	return nil
}

// Named reports whether h currently carries a name property at all.
func (b *Backend) Named(h window.Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	nw, ok := b.windows[h]
	return ok && nw.named
}

func (b *Backend) MapWindow(h window.Handle) error {
	return b.setMapped(h, true)
}

func (b *Backend) UnmapWindow(h window.Handle) error {
	return b.setMapped(h, false)
}

func (b *Backend) setMapped(h window.Handle, mapped bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	nw, err := b.get(h)
	if err != nil {
		return err
	}
	nw.mapped = mapped
	return nil
}

// Post queues an event for the next drain.
func (b *Backend) Post(ev window.Event) {
	b.mu.Lock()
	b.queue = append(b.queue, ev)
	b.mu.Unlock()
}

// RequestClose queues what a window manager close button would produce.
func (b *Backend) RequestClose(h window.Handle) {
	b.Post(window.Event{Kind: window.EventCloseRequested, Handle: h, Native: "close"})
}

// Pending returns the number of queued events.
func (b *Backend) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// HandleEvents processes the events queued at entry. Events posted while
// dispatching wait for the next call.
func (b *Backend) HandleEvents(d window.Dispatcher) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("headless backend closed")
	}
	batch := b.queue
	b.queue = nil
	b.mu.Unlock()

	for _, ev := range batch {
		if _, ok := d.Lookup(ev.Handle); ok {
			b.apply(ev)
		} else if ev.Kind != window.EventUnknown {
			logger.WithComponent("headless").Trace().
				Stringer("handle", ev.Handle).
				Str("event", ev.Kind.String()).
				Msg("Dropping event for unknown window")
		}
		d.Dispatch(ev)
	}
	return nil
}

// apply mirrors an event into native state the way a window manager would.
func (b *Backend) apply(ev window.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	nw, ok := b.windows[ev.Handle]
	if !ok {
		return
	}
	switch ev.Kind {
	case window.EventMapped:
		nw.mapped = true
	case window.EventUnmapped:
		nw.mapped = false
	case window.EventConfigured:
		nw.x, nw.y = ev.X, ev.Y
		nw.width, nw.height = ev.Width, ev.Height
	case window.EventResizeRequest:
		nw.width, nw.height = ev.Width, ev.Height
	}
}
