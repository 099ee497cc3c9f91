package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/zkcodehub/sitectl/internal/eventstore"
	"github.com/zkcodehub/sitectl/internal/metrics"
)

// Server exposes health, metrics and build history over HTTP.
type Server struct {
	httpServer *http.Server
	recorder   *metrics.PrometheusRecorder
	events     eventstore.Store
	status     func() *BuildStatus
}

// NewServer creates the daemon's HTTP server.
func NewServer(listen string, recorder *metrics.PrometheusRecorder, events eventstore.Store, status func() *BuildStatus) *Server {
	s := &Server{recorder: recorder, events: events, status: status}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", recorder.Handler())
	mux.HandleFunc("GET /api/builds", s.handleBuilds)
	mux.HandleFunc("GET /api/builds/{id}", s.handleBuildEvents)
	mux.HandleFunc("GET /api/status", s.handleStatus)

	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start begins serving in the background.
func (s *Server) Start() error {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
		}
	}()
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.status()
	if status == nil {
		writeJSON(w, http.StatusOK, map[string]string{"state": "no builds yet"})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleBuilds(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	builds, err := s.events.LatestBuilds(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, builds)
}

func (s *Server) handleBuildEvents(w http.ResponseWriter, r *http.Request) {
	buildID := r.PathValue("id")
	events, err := s.events.GetByBuildID(r.Context(), buildID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(events) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown build"})
		return
	}

	type eventView struct {
		Type      string          `json:"type"`
		Timestamp time.Time       `json:"timestamp"`
		Payload   json.RawMessage `json:"payload,omitempty"`
	}
	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, eventView{Type: e.Type, Timestamp: e.Timestamp, Payload: e.Payload})
	}
	writeJSON(w, http.StatusOK, views)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}
