package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/resource-finder-geocode/internal/tools"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxInvokeBody = 64 << 10

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes health, readiness, metrics, and tool invocation endpoints.
type Server struct {
	httpServer *http.Server
	tools      []tools.GeoTool
	logger     *slog.Logger
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Convention  string `json:"convention"`
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and the
// /v1/tools routes.
func NewServer(addr string, ready ReadinessChecker, geoTools []tools.GeoTool, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		tools:  geoTools,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/tools", s.handleListTools)
	mux.HandleFunc("POST /v1/tools/{name}", s.handleInvoke)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr, "tools", len(s.tools))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	out := make([]toolInfo, len(s.tools))
	for i, t := range s.tools {
		out[i] = toolInfo{Name: t.Name(), Description: t.Description(), Convention: string(t.Convention())}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleInvoke runs a tool with the JSON object in the request body as its
// params. Geocoding failures are part of a 200 response body; only params
// that don't fit the tool are rejected.
func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	t, ok := tools.Find(s.tools, name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown tool: " + name})
		return
	}

	var params map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxInvokeBody))
	if err := dec.Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request body must be a JSON object: " + err.Error()})
		return
	}

	result, err := t.Invoke(r.Context(), params)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, tools.ErrInvalidParams) {
			status = http.StatusBadRequest
		}
		s.logger.Warn("tool invocation rejected", "tool", name, "error", err)
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
