// Package health serves the /healthz endpoint of `careersync serve`.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Response statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Checker reports backend reachability and polling sync state.
type Checker interface {
	Ping(ctx context.Context) error
	SyncStatus() string
}

// Response represents the JSON response from the /healthz endpoint.
type Response struct {
	Status string `json:"status"`
	Sync   string `json:"sync"`
	Error  string `json:"error,omitempty"`
}

// Server provides an HTTP health check endpoint.
// It runs in a background goroutine and can be gracefully shut down.
type Server struct {
	server  *http.Server
	checker Checker
	log     zerolog.Logger
	addr    string
}

// NewServer creates a health server listening on all interfaces at port.
// Port 0 picks a free port; see Addr after Start.
func NewServer(checker Checker, port int, log zerolog.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		checker: checker,
		log:     log,
	}

	mux.HandleFunc("/healthz", s.handleHealthz)
	return s
}

// Handler exposes the routes for in-process testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr is the bound address once Start has returned.
func (s *Server) Addr() string {
	return s.addr
}

// Start binds the port and serves in a background goroutine.
// Returns an error if the port cannot be bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind health server: %w", err)
	}
	s.addr = ln.Addr().String()

	go func() {
		s.log.Debug().Str("addr", s.addr).Msg("health server starting")
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("health server error")
		}
		s.log.Debug().Msg("health server stopped")
	}()
	return nil
}

// Shutdown gracefully shuts down the HTTP server, waiting for in-flight
// requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleHealthz returns 200 when the backend answers and polling is live,
// 503 otherwise.
//
//   - {"status":"healthy","sync":"connected"}
//   - {"status":"degraded","sync":"disconnected"}
//   - {"status":"unhealthy","sync":"connected","error":"..."}
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := Response{Status: StatusHealthy, Sync: s.checker.SyncStatus()}
	code := http.StatusOK

	if err := s.checker.Ping(ctx); err != nil {
		resp.Status = StatusUnhealthy
		resp.Error = err.Error()
		code = http.StatusServiceUnavailable
	} else if resp.Sync == "disconnected" {
		resp.Status = StatusDegraded
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error().Err(err).Msg("failed to encode health response")
	}
}
