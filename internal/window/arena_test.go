package window

import "testing"

func TestArenaPointersSurviveGrowth(t *testing.T) {
	a := newArena()
	first := a.take()
	first.handle = 1
	a.insert(first)

	for i := 0; i < arenaChunk*3; i++ {
		w := a.take()
		w.handle = Handle(i + 2)
		a.insert(w)
	}

	got, ok := a.lookup(1)
	if !ok || got != first {
		t.Fatalf("expected first record to stay addressable after growth")
	}
	if a.len() != arenaChunk*3+1 {
		t.Fatalf("expected %d live records, got %d", arenaChunk*3+1, a.len())
	}
}

func TestArenaNeverReusesRecords(t *testing.T) {
	a := newArena()
	w := a.take()
	w.handle = 7
	a.insert(w)
	a.remove(7)
	a.give(w)

	if _, ok := a.lookup(7); ok {
		t.Fatalf("expected removed handle to miss")
	}
	if !w.released || w.ctx != nil {
		t.Fatalf("expected given record to be retired, got %+v", w)
	}
	again := a.take()
	if again == w {
		t.Fatalf("expected a fresh record, got the retired one")
	}
	if !w.released {
		t.Fatalf("expected retired record to stay retired after take")
	}
	if a.released != 1 {
		t.Fatalf("expected 1 released record, got %d", a.released)
	}
}

func TestArenaLiveIsCreationOrdered(t *testing.T) {
	a := newArena()
	for _, h := range []Handle{30, 10, 20} {
		w := a.take()
		w.handle = h
		a.insert(w)
	}
	live := a.live()
	want := []Handle{30, 10, 20}
	for i, w := range live {
		if w.handle != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], w.handle)
		}
	}
}
