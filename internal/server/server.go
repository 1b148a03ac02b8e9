// Package server provides the HTTP server for a mudra host: JSON control
// endpoints, websocket metric and field streams, and the static renderer.
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/server/api"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	App       *app.App
}

// Server represents the HTTP server for the mudra host.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		done:   make(chan struct{}),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Control and stream endpoints need a running host
	if a := s.config.App; a != nil {
		s.mux.Handle("/api/selection", api.NewSelectionHandler(a))
		s.mux.Handle("/api/tracking", api.NewTrackingHandler(a))
		s.mux.Handle("/api/metrics", NewMetricsHandler(a, s.done))
		s.mux.Handle("/api/field", NewFieldHandler(a, s.done))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close ends every open websocket stream. http.Server.Shutdown does not
// wait for hijacked connections, so call this alongside it.
func (s *Server) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

type healthResponse struct {
	Status      string         `json:"status"`
	Uptime      string         `json:"uptime"`
	Tracking    *bool          `json:"tracking,omitempty"`
	Shape       string         `json:"shape,omitempty"`
	Subscribers map[string]int `json:"subscribers,omitempty"`
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := healthResponse{
		Status: "ok",
		Uptime: time.Since(s.start).Round(time.Second).String(),
	}
	if a := s.config.App; a != nil {
		enabled := a.IsEnabled()
		response.Tracking = &enabled
		response.Shape = a.Selection().Shape.String()
		response.Subscribers = map[string]int{
			"metrics": a.Metrics().Len(),
			"field":   a.Field().Len(),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
