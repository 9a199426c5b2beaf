package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bryanchriswhite/platwin/internal/environ"
	"github.com/bryanchriswhite/platwin/internal/window"
	"github.com/bryanchriswhite/platwin/internal/window/headless"
	"github.com/gorilla/websocket"
)

type fixture struct {
	srv     *httptest.Server
	backend *headless.Backend
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := headless.New()
	c, err := window.NewContext(b, nil)
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}
	loop := window.NewLoop(c, 2*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		loop.Run(ctx)
	}()

	s := NewServer(loop, environ.Info{OS: "linux", WMName: "bspwm", WMSource: "ewmh"})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return &fixture{srv: srv, backend: b}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, f.srv.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func (f *fixture) create(t *testing.T, req CreateWindowRequest) window.Snapshot {
	t.Helper()
	resp := f.do(t, "POST", "/api/windows", req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	return decode[window.Snapshot](t, resp)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, "GET", "/api/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["backend"] != "headless" {
		t.Fatalf("expected headless backend, got %q", body["backend"])
	}
}

func TestEnvironment(t *testing.T) {
	f := newFixture(t)
	info := decode[environ.Info](t, f.do(t, "GET", "/api/environment", nil))
	if info.WMName != "bspwm" {
		t.Fatalf("expected bspwm, got %q", info.WMName)
	}
}

func TestCreateAndList(t *testing.T) {
	f := newFixture(t)
	snap := f.create(t, CreateWindowRequest{Name: "main", Width: 500, Height: 300})
	if snap.Name != "main" || !snap.Mapped || snap.Flags != "normal" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	hidden := f.create(t, CreateWindowRequest{Name: "hidden", Width: 10, Height: 10, Flags: []string{"unmapped", "dialog"}, Parent: snap.Handle})
	if hidden.Mapped {
		t.Fatal("expected unmapped window")
	}
	if hidden.Parent != snap.Handle {
		t.Fatalf("expected parent %s, got %s", snap.Handle, hidden.Parent)
	}

	list := decode[[]window.Snapshot](t, f.do(t, "GET", "/api/windows", nil))
	if len(list) != 2 || list[0].Handle != snap.Handle || list[1].Handle != hidden.Handle {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		req  CreateWindowRequest
		want int
	}{
		{"unknown flag", CreateWindowRequest{Width: 1, Height: 1, Flags: []string{"sticky"}}, http.StatusBadRequest},
		{"zero size", CreateWindowRequest{Width: 0, Height: 1}, http.StatusBadRequest},
		{"unknown parent", CreateWindowRequest{Width: 1, Height: 1, Parent: 0xdead}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.do(t, "POST", "/api/windows", tt.req).StatusCode; got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestBackendFailureIsUnprocessable(t *testing.T) {
	f := newFixture(t)
	f.backend.FailCreate = fmt.Errorf("BadAlloc")
	if got := f.do(t, "POST", "/api/windows", CreateWindowRequest{Width: 1, Height: 1}).StatusCode; got != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", got)
	}
	list := decode[[]window.Snapshot](t, f.do(t, "GET", "/api/windows", nil))
	if len(list) != 0 {
		t.Fatalf("expected no windows after failed create, got %d", len(list))
	}
}

func TestWindowOperations(t *testing.T) {
	f := newFixture(t)
	snap := f.create(t, CreateWindowRequest{Name: "ops", Width: 100, Height: 100})
	base := fmt.Sprintf("/api/windows/%d", snap.Handle)

	got := decode[window.Snapshot](t, f.do(t, "PUT", base+"/position", positionRequest{X: 10, Y: 20}))
	if got.X != 10 || got.Y != 20 {
		t.Fatalf("expected (10,20), got (%d,%d)", got.X, got.Y)
	}

	got = decode[window.Snapshot](t, f.do(t, "PUT", base+"/size", sizeRequest{Width: 640, Height: 480}))
	if got.Width != 640 || got.Height != 480 {
		t.Fatalf("expected 640x480, got %dx%d", got.Width, got.Height)
	}

	got = decode[window.Snapshot](t, f.do(t, "PUT", base+"/name", map[string]string{"name": "renamed"}))
	if got.Name != "renamed" {
		t.Fatalf("expected renamed, got %q", got.Name)
	}
	got = decode[window.Snapshot](t, f.do(t, "PUT", base+"/name", map[string]any{"name": nil}))
	if got.Name != "" {
		t.Fatalf("expected cleared name, got %q", got.Name)
	}
	if f.backend.Named(snap.Handle) {
		t.Fatal("expected native name to be cleared")
	}

	got = decode[window.Snapshot](t, f.do(t, "POST", base+"/unmap", nil))
	if got.Mapped {
		t.Fatal("expected unmapped")
	}
	got = decode[window.Snapshot](t, f.do(t, "POST", base+"/map", nil))
	if !got.Mapped {
		t.Fatal("expected mapped")
	}

	// hex ids resolve too
	hex := fmt.Sprintf("/api/windows/%s", snap.Handle)
	if resp := f.do(t, "GET", hex, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for %s, got %d", hex, resp.StatusCode)
	}

	if resp := f.do(t, "DELETE", base, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if resp := f.do(t, "GET", base, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after destroy, got %d", resp.StatusCode)
	}
}

func TestInvalidID(t *testing.T) {
	f := newFixture(t)
	if resp := f.do(t, "GET", "/api/windows/not-a-number", nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestEventStream(t *testing.T) {
	f := newFixture(t)
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	snap := f.create(t, CreateWindowRequest{Name: "watched", Width: 50, Height: 50})
	f.backend.RequestClose(snap.Handle)

	want := []window.TransitionKind{window.TransitionCreated, window.TransitionCloseRequested}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for _, kind := range want {
		var tr window.Transition
		if err := conn.ReadJSON(&tr); err != nil {
			t.Fatalf("read failed waiting for %s: %v", kind, err)
		}
		if tr.Kind != kind {
			t.Fatalf("expected %s, got %s", kind, tr.Kind)
		}
		if tr.Window.Handle != snap.Handle {
			t.Fatalf("expected handle %s, got %s", snap.Handle, tr.Window.Handle)
		}
	}
}
