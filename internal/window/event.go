package window

// EventKind is the portable meaning of a native event.
type EventKind uint8

const (
	// EventUnknown carries a native event the state machine has no transition for.
	EventUnknown EventKind = iota
	EventCloseRequested
	EventMapped
	EventUnmapped
	EventConfigured
	EventResizeRequest
)

func (k EventKind) String() string {
	switch k {
	case EventCloseRequested:
		return "close_requested"
	case EventMapped:
		return "mapped"
	case EventUnmapped:
		return "unmapped"
	case EventConfigured:
		return "configured"
	case EventResizeRequest:
		return "resize_request"
	default:
		return "unknown"
	}
}

// Event is what a backend hands the dispatcher after translating one native event.
type Event struct {
	Kind   EventKind
	Handle Handle
	// Geometry is set for EventConfigured (position and size) and
	// EventResizeRequest (size only).
	X, Y          int32
	Width, Height uint32
	// Native names the source event, used for logging.
	Native string
}

// Dispatcher is the view of a Context a backend sees while draining events.
type Dispatcher interface {
	// Lookup resolves a native handle. Stale or foreign handles miss.
	Lookup(h Handle) (*Window, bool)
	Dispatch(ev Event)
}

// TransitionKind names a lifecycle change published to subscribers.
type TransitionKind string

const (
	TransitionCreated        TransitionKind = "created"
	TransitionDestroyed      TransitionKind = "destroyed"
	TransitionCloseRequested TransitionKind = "close_requested"
	TransitionMapped         TransitionKind = "mapped"
	TransitionUnmapped       TransitionKind = "unmapped"
	TransitionConfigured     TransitionKind = "configured"
	TransitionRenamed        TransitionKind = "renamed"
)

// Transition is one lifecycle change together with the state after it.
type Transition struct {
	Kind   TransitionKind `json:"kind"`
	Window Snapshot       `json:"window"`
}
