package window

import "errors"

var (
	// ErrEnvironmentUnavailable means the display, session or window station cannot be used.
	ErrEnvironmentUnavailable = errors.New("windowing environment unavailable")
	// ErrWindowCreation wraps a native rejection during window creation.
	ErrWindowCreation = errors.New("window creation failed")
	// ErrContextDestroyed is returned by every operation after Destroy.
	ErrContextDestroyed = errors.New("context destroyed")
	// ErrUnknownWindow is returned for windows that were destroyed or belong to another context.
	ErrUnknownWindow = errors.New("window not owned by this context")
	// ErrSurfaceUnsupported is returned when the backend cannot create GPU surfaces.
	ErrSurfaceUnsupported = errors.New("surface creation not supported by backend")
)
