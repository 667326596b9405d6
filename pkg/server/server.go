// Package server provides the admin HTTP surface of the reference host: gate
// status, manual rollback reset, health and Prometheus metrics. The gate core
// has no network protocol of its own; this server is the embedding boundary.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"mercator-hq/callisto/pkg/gate"
)

// Server is the admin HTTP server wrapping a Gate.
type Server struct {
	gate     *gate.Gate
	addr     string
	metrics  http.Handler
	logger   *slog.Logger
	httpSrv  *http.Server
	mu       sync.Mutex
	running  bool
	shutdown chan struct{}
}

// New creates an admin server for g listening on addr. metricsHandler may be
// nil when Prometheus exposition is disabled.
func New(g *gate.Gate, addr string, metricsHandler http.Handler) *Server {
	return &Server{
		gate:     g,
		addr:     addr,
		metrics:  metricsHandler,
		logger:   slog.Default().With("component", "server"),
		shutdown: make(chan struct{}),
	}
}

// Start runs the server until ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.running = true

	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	s.httpSrv = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("admin server listening", "address", s.addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("admin server failed: %w", err)
	case <-ctx.Done():
	case <-s.shutdown:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

// Stop signals Start to shut the server down.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.running = false
		close(s.shutdown)
	}
}

// handleStatus serves the gate's read-only snapshot as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snapshot := s.gate.Status()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshotResponse(snapshot)); err != nil {
		s.logger.Error("failed to encode status", "error", err)
	}
}

// resetRequest is the POST /reset body.
type resetRequest struct {
	Operator string `json:"operator"`
}

// handleReset performs the manual rollback reset on behalf of an operator.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if err := s.gate.ResetRollback(req.Operator); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadRequest)
		return
	}
	s.logger.Info("rollback reset via admin endpoint",
		"operator", req.Operator,
		"remote_addr", r.RemoteAddr,
	)
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintln(w, `{"status":"ok"}`)
}

// handleHealth is a liveness probe; it intentionally does not consult gate
// state, since an engaged kill switch is a healthy gate doing its job.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintln(w, `{"status":"ok"}`)
}

// statusResponse is the JSON shape of GET /status.
type statusResponse struct {
	State             string                  `json:"state"`
	RollbackTriggered bool                    `json:"rollback_triggered"`
	GeneratedAt       time.Time               `json:"generated_at"`
	Lanes             map[string]laneResponse `json:"lanes"`
}

type laneResponse struct {
	Mode              string  `json:"mode"`
	CircuitOpen       bool    `json:"circuit_open"`
	CircuitFailures   int     `json:"circuit_failures"`
	WindowTotal       int     `json:"window_total"`
	WindowCritical    int     `json:"window_critical"`
	WindowBlocked     int     `json:"window_blocked"`
	CriticalBlockRate float64 `json:"critical_block_rate"`
}

func snapshotResponse(s gate.StatusSnapshot) statusResponse {
	resp := statusResponse{
		State:             string(s.State),
		RollbackTriggered: s.RollbackTriggered,
		GeneratedAt:       s.GeneratedAt,
		Lanes:             make(map[string]laneResponse, len(s.Lanes)),
	}
	for lane, ls := range s.Lanes {
		resp.Lanes[lane] = laneResponse{
			Mode:              string(ls.Mode),
			CircuitOpen:       ls.CircuitOpen,
			CircuitFailures:   ls.CircuitFailures,
			WindowTotal:       ls.Window.Total,
			WindowCritical:    ls.Window.Critical,
			WindowBlocked:     ls.Window.Blocked,
			CriticalBlockRate: ls.Window.CriticalBlockRate,
		}
	}
	return resp
}
