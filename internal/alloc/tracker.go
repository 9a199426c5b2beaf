package alloc

import "sync"

// Tracker is a heap-backed Callbacks implementation that counts calls and
// outstanding bytes. The run command uses it to report leaks at exit.
type Tracker struct {
	mu       sync.Mutex
	allocs   int
	frees    int
	reallocs int
	live     map[*byte]int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{live: make(map[*byte]int)}
}

// Callbacks exposes the tracker through the callback table.
func (t *Tracker) Callbacks() *Callbacks {
	return &Callbacks{
		UserData: t,
		Alloc: func(_ any, size, _ int) []byte {
			return t.alloc(size)
		},
		Free: func(_ any, buf []byte) {
			t.free(buf)
		},
		Realloc: func(_ any, buf []byte, size int) []byte {
			t.mu.Lock()
			t.reallocs++
			t.mu.Unlock()
			out := t.alloc(size)
			copy(out, buf)
			t.free(buf)
			t.mu.Lock()
			t.allocs--
			t.frees--
			t.mu.Unlock()
			return out
		},
	}
}

func (t *Tracker) alloc(size int) []byte {
	// one spare byte so zero-length buffers still have an identity
	buf := make([]byte, size, size+1)
	t.mu.Lock()
	t.allocs++
	t.live[&buf[:1][0]] = size
	t.mu.Unlock()
	return buf
}

func (t *Tracker) free(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	t.mu.Lock()
	t.frees++
	delete(t.live, &buf[:1][0])
	t.mu.Unlock()
}

// Stats is a point-in-time view of the counters.
type Stats struct {
	Allocs    int `json:"allocs"`
	Frees     int `json:"frees"`
	Reallocs  int `json:"reallocs"`
	LiveBufs  int `json:"live_buffers"`
	LiveBytes int `json:"live_bytes"`
}

// Stats returns the current counters.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := Stats{Allocs: t.allocs, Frees: t.frees, Reallocs: t.reallocs, LiveBufs: len(t.live)}
	for _, n := range t.live {
		s.LiveBytes += n
	}
	return s
}
