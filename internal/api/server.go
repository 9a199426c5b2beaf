package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bryanchriswhite/platwin/internal/environ"
	"github.com/bryanchriswhite/platwin/internal/logger"
	"github.com/bryanchriswhite/platwin/internal/window"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Server represents the HTTP control API. Every window call runs on the loop goroutine.
type Server struct {
	router   *mux.Router
	loop     *window.Loop
	env      environ.Info
	log      *zerolog.Logger
	upgrader websocket.Upgrader
}

// CreateWindowRequest is the body of POST /api/windows
type CreateWindowRequest struct {
	Name   string        `json:"name"`
	Parent window.Handle `json:"parent,omitempty"`
	X      int32         `json:"x"`
	Y      int32         `json:"y"`
	Width  uint32        `json:"width"`
	Height uint32        `json:"height"`
	Flags  []string      `json:"flags,omitempty"`
}

type positionRequest struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

type sizeRequest struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

type nameRequest struct {
	// Name nil clears the name; an empty string sets it to empty.
	Name *string `json:"name"`
}

// NewServer creates a new API server
func NewServer(loop *window.Loop, env environ.Info) *Server {
	s := &Server{
		router: mux.NewRouter(),
		loop:   loop,
		env:    env,
		log:    logger.WithComponent("api"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for development
			},
		},
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/environment", s.handleEnvironment).Methods("GET")

	api.HandleFunc("/windows", s.handleListWindows).Methods("GET")
	api.HandleFunc("/windows", s.handleCreateWindow).Methods("POST")
	api.HandleFunc("/windows/{id}", s.handleGetWindow).Methods("GET")
	api.HandleFunc("/windows/{id}", s.handleDestroyWindow).Methods("DELETE")
	api.HandleFunc("/windows/{id}/position", s.handleSetPosition).Methods("PUT")
	api.HandleFunc("/windows/{id}/size", s.handleSetSize).Methods("PUT")
	api.HandleFunc("/windows/{id}/name", s.handleSetName).Methods("PUT")
	api.HandleFunc("/windows/{id}/map", s.handleMap).Methods("POST")
	api.HandleFunc("/windows/{id}/unmap", s.handleUnmap).Methods("POST")

	// Lifecycle transitions as a websocket stream
	api.HandleFunc("/events", s.handleEvents)
}

// Handler returns the router wrapped with CORS headers
func (s *Server) Handler() http.Handler {
	return s.enableCORS(s.router)
}

// Start starts the HTTP server
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.log.Info().Str("addr", addr).Msg("Starting control API")
	return http.ListenAndServe(addr, s.Handler())
}

// enableCORS adds CORS headers
func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps window errors onto HTTP status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, window.ErrUnknownWindow):
		status = http.StatusNotFound
	case errors.Is(err, window.ErrWindowCreation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, window.ErrContextDestroyed):
		status = http.StatusServiceUnavailable
	case errors.Is(err, window.ErrSurfaceUnsupported):
		status = http.StatusNotImplemented
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusRequestTimeout
	}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("Request failed")
	}
	http.Error(w, err.Error(), status)
}

func handleParam(r *http.Request) (window.Handle, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q", mux.Vars(r)["id"])
	}
	return window.Handle(id), nil
}

// withWindow resolves {id} on the loop goroutine and runs fn there
func (s *Server) withWindow(w http.ResponseWriter, r *http.Request, fn func(c *window.Context, win *window.Window) error) (window.Snapshot, bool) {
	h, err := handleParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return window.Snapshot{}, false
	}
	var snap window.Snapshot
	err = s.loop.Do(r.Context(), func(c *window.Context) error {
		win, ok := c.Lookup(h)
		if !ok {
			return fmt.Errorf("window %s: %w", h, window.ErrUnknownWindow)
		}
		if err := fn(c, win); err != nil {
			return err
		}
		snap = win.Snapshot()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return window.Snapshot{}, false
	}
	return snap, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var backend string
	err := s.loop.Do(r.Context(), func(c *window.Context) error {
		backend = c.Backend()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"backend": backend,
	})
}

func (s *Server) handleEnvironment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.env)
}

func (s *Server) handleListWindows(w http.ResponseWriter, r *http.Request) {
	var snaps []window.Snapshot
	err := s.loop.Do(r.Context(), func(c *window.Context) error {
		snaps = make([]window.Snapshot, 0)
		for _, win := range c.Windows() {
			snaps = append(snaps, win.Snapshot())
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (s *Server) handleCreateWindow(w http.ResponseWriter, r *http.Request) {
	var req CreateWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	flags, err := window.ParseFlags(req.Flags...)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Width == 0 || req.Height == 0 {
		http.Error(w, "width and height must be positive", http.StatusBadRequest)
		return
	}

	var snap window.Snapshot
	err = s.loop.Do(r.Context(), func(c *window.Context) error {
		info := window.CreateInfo{
			Name:   req.Name,
			X:      req.X,
			Y:      req.Y,
			Width:  req.Width,
			Height: req.Height,
			Flags:  flags,
		}
		if req.Parent != 0 {
			parent, ok := c.Lookup(req.Parent)
			if !ok {
				return fmt.Errorf("parent %s: %w", req.Parent, window.ErrUnknownWindow)
			}
			info.Parent = parent
		}
		win, err := c.CreateWindow(info)
		if err != nil {
			return err
		}
		snap = win.Snapshot()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleGetWindow(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.withWindow(w, r, func(*window.Context, *window.Window) error { return nil })
	if ok {
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) handleDestroyWindow(w http.ResponseWriter, r *http.Request) {
	h, err := handleParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = s.loop.Do(r.Context(), func(c *window.Context) error {
		win, ok := c.Lookup(h)
		if !ok {
			return fmt.Errorf("window %s: %w", h, window.ErrUnknownWindow)
		}
		return c.DestroyWindow(win)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetPosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snap, ok := s.withWindow(w, r, func(c *window.Context, win *window.Window) error {
		return c.SetWindowPosition(win, req.X, req.Y)
	})
	if ok {
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) handleSetSize(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Width == 0 || req.Height == 0 {
		http.Error(w, "width and height must be positive", http.StatusBadRequest)
		return
	}
	snap, ok := s.withWindow(w, r, func(c *window.Context, win *window.Window) error {
		return c.SetWindowSize(win, req.Width, req.Height)
	})
	if ok {
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) handleSetName(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snap, ok := s.withWindow(w, r, func(c *window.Context, win *window.Window) error {
		if req.Name == nil {
			return c.ClearWindowName(win)
		}
		return c.SetWindowName(win, *req.Name)
	})
	if ok {
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.withWindow(w, r, func(c *window.Context, win *window.Window) error {
		return c.MapWindow(win)
	})
	if ok {
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) handleUnmap(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.withWindow(w, r, func(c *window.Context, win *window.Window) error {
		return c.UnmapWindow(win)
	})
	if ok {
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	// Subscribe before the upgrade completes so a client that acts right
	// after connecting sees its own transitions.
	updates := s.loop.Subscribe()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.loop.Unsubscribe(updates)
		s.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	defer s.loop.Unsubscribe(updates)

	// The read side only exists to notice the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case t, ok := <-updates:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "context destroyed"))
				return
			}
			if err := conn.WriteJSON(t); err != nil {
				s.log.Debug().Err(err).Msg("WebSocket write failed")
				return
			}
		}
	}
}
