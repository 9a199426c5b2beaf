// Package alloc routes per-window bookkeeping allocations through caller
// supplied callbacks, or through the Go heap when none are given.
package alloc

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompleteCallbacks is returned when only some of the callback functions are set.
	ErrIncompleteCallbacks = errors.New("allocation callbacks must set alloc, free and realloc together")
	// ErrOutOfMemory is returned when a callback hands back a short or nil buffer.
	ErrOutOfMemory = errors.New("allocation callback returned no memory")
)

// Callbacks is the caller-owned allocator. UserData is passed back untouched on every call.
type Callbacks struct {
	UserData any
	Alloc    func(userData any, size, alignment int) []byte
	Free     func(userData any, buf []byte)
	Realloc  func(userData any, buf []byte, size int) []byte
}

func (cb *Callbacks) complete() bool {
	return cb.Alloc != nil && cb.Free != nil && cb.Realloc != nil
}

// Adapter is the single path every allocation in a context goes through.
type Adapter struct {
	cb *Callbacks
}

// New wraps cb. A nil cb selects the default heap allocator.
func New(cb *Callbacks) (*Adapter, error) {
	if cb != nil && !cb.complete() {
		return nil, ErrIncompleteCallbacks
	}
	return &Adapter{cb: cb}, nil
}

// Default returns an adapter backed by the Go heap.
func Default() *Adapter {
	return &Adapter{}
}

// Custom reports whether caller callbacks are in use.
func (a *Adapter) Custom() bool {
	return a != nil && a.cb != nil
}

// Alloc returns a zeroed buffer of len size.
func (a *Adapter) Alloc(size, alignment int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("invalid allocation size %d", size)
	}
	if alignment <= 0 {
		alignment = 1
	}
	if !a.Custom() {
		return make([]byte, size), nil
	}
	buf := a.cb.Alloc(a.cb.UserData, size, alignment)
	if len(buf) < size {
		if buf != nil {
			a.cb.Free(a.cb.UserData, buf)
		}
		return nil, fmt.Errorf("alloc %d bytes: %w", size, ErrOutOfMemory)
	}
	return buf[:size], nil
}

// Free releases buf. Freeing nil is a no-op.
func (a *Adapter) Free(buf []byte) {
	if buf == nil || !a.Custom() {
		return
	}
	a.cb.Free(a.cb.UserData, buf)
}

// Realloc grows or shrinks buf, preserving its prefix.
func (a *Adapter) Realloc(buf []byte, size int) ([]byte, error) {
	if buf == nil {
		return a.Alloc(size, 1)
	}
	if size < 0 {
		return nil, fmt.Errorf("invalid allocation size %d", size)
	}
	if !a.Custom() {
		if size <= cap(buf) {
			return buf[:size], nil
		}
		grown := make([]byte, size)
		copy(grown, buf)
		return grown, nil
	}
	out := a.cb.Realloc(a.cb.UserData, buf, size)
	if len(out) < size {
		return nil, fmt.Errorf("realloc %d bytes: %w", size, ErrOutOfMemory)
	}
	return out[:size], nil
}
