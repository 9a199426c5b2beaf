package window

import "slices"

const arenaChunk = 32

// arena stores Window records in fixed-size chunks so pointers stay stable,
// with a hash index from native handle to record. Records are never reused:
// a caller may still hold a pointer to a destroyed window, and that pointer
// must keep failing ownership checks.
type arena struct {
	chunks   []*[arenaChunk]Window
	used     int
	released int
	index    map[Handle]*Window
	serial   uint64
}

func newArena() *arena {
	return &arena{index: make(map[Handle]*Window)}
}

// take returns a fresh zeroed record that is not yet indexed.
func (a *arena) take() *Window {
	if a.used == len(a.chunks)*arenaChunk {
		a.chunks = append(a.chunks, new([arenaChunk]Window))
	}
	w := &a.chunks[a.used/arenaChunk][a.used%arenaChunk]
	a.used++
	a.serial++
	*w = Window{serial: a.serial}
	return w
}

// give retires a record. It must already be unindexed. The zeroed record has
// no owning context, so a stale pointer to it is rejected from then on.
func (a *arena) give(w *Window) {
	*w = Window{released: true}
	a.released++
}

func (a *arena) insert(w *Window) {
	a.index[w.handle] = w
}

func (a *arena) remove(h Handle) {
	delete(a.index, h)
}

func (a *arena) lookup(h Handle) (*Window, bool) {
	w, ok := a.index[h]
	return w, ok
}

func (a *arena) len() int {
	return len(a.index)
}

// live returns indexed windows in creation order.
func (a *arena) live() []*Window {
	out := make([]*Window, 0, len(a.index))
	for _, w := range a.index {
		out = append(out, w)
	}
	slices.SortFunc(out, func(x, y *Window) int {
		switch {
		case x.serial < y.serial:
			return -1
		case x.serial > y.serial:
			return 1
		}
		return 0
	})
	return out
}
