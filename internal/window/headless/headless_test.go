package headless

import (
	"testing"

	"github.com/bryanchriswhite/platwin/internal/window"
)

// echoDispatcher queues a fresh event for every one it receives, the way a
// handler that reacts by generating more traffic would.
type echoDispatcher struct {
	b          *Backend
	dispatched []window.Event
}

func (d *echoDispatcher) Lookup(window.Handle) (*window.Window, bool) { return nil, false }

func (d *echoDispatcher) Dispatch(ev window.Event) {
	d.dispatched = append(d.dispatched, ev)
	d.b.Post(window.Event{Kind: ev.Kind, Handle: ev.Handle + 1})
}

func TestDrainIsBoundedBySnapshot(t *testing.T) {
	b := New()
	d := &echoDispatcher{b: b}
	b.Post(window.Event{Kind: window.EventCloseRequested, Handle: 1})
	b.Post(window.Event{Kind: window.EventMapped, Handle: 10})

	if err := b.HandleEvents(d); err != nil {
		t.Fatalf("HandleEvents: %v", err)
	}
	if len(d.dispatched) != 2 {
		t.Fatalf("expected only the 2 queued events to be dispatched, got %d", len(d.dispatched))
	}
	if b.Pending() != 2 {
		t.Fatalf("expected events raised while draining to wait, got %d pending", b.Pending())
	}

	if err := b.HandleEvents(d); err != nil {
		t.Fatalf("HandleEvents: %v", err)
	}
	if len(d.dispatched) != 4 {
		t.Fatalf("expected the deferred events on the next drain, got %d dispatched", len(d.dispatched))
	}
	if h := d.dispatched[2].Handle; h != 2 {
		t.Fatalf("expected deferred events in post order, got handle %s first", h)
	}
}

func TestEventsApplyOnlyOnNextDrain(t *testing.T) {
	b := New()
	h, err := b.CreateWindow(window.Params{Width: 10, Height: 10, Flags: window.FlagUnmapped})
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	c, err := window.NewContext(b, nil)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	defer c.Destroy()

	w, err := c.CreateWindow(window.CreateInfo{Width: 10, Height: 10})
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	b.Post(window.Event{Kind: window.EventConfigured, Handle: w.Handle(), X: 5, Y: 6, Width: 70, Height: 80})
	b.Post(window.Event{Kind: window.EventConfigured, Handle: h, X: 1, Y: 1, Width: 1, Height: 1})
	if width, _ := w.Size(); width != 10 {
		t.Fatalf("expected configure to wait for a drain, got width %d", width)
	}

	if err := c.HandleEvents(); err != nil {
		t.Fatalf("HandleEvents: %v", err)
	}
	x, y := w.Position()
	width, height := w.Size()
	if x != 5 || y != 6 || width != 70 || height != 80 {
		t.Fatalf("expected configured geometry, got %+v", w.Snapshot())
	}
	if b.Pending() != 0 {
		t.Fatalf("expected queue to be empty, got %d", b.Pending())
	}
	// foreign handles are dropped without touching native state
	if nw := b.windows[h]; nw.width != 10 {
		t.Fatalf("expected window outside the context to be untouched, got width %d", nw.width)
	}
}
