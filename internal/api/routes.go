// Package api provides HTTP API server implementation for the testdash service.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/testdash-io/testdash/internal/api/middleware"
)

const healthCheckTimeout = 2 * time.Second

type (
	// HealthStatus represents the health check response structure.
	HealthStatus struct {
		Status      string `json:"status"`
		ServiceName string `json:"serviceName"`
		Version     string `json:"version"`
		Uptime      string `json:"uptime,omitempty"`
	}
)

// setupRoutes sets up all HTTP routes for the API server.
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Health endpoints
	mux.HandleFunc("GET /ping", s.handlePing)     // K8s liveness probe
	mux.HandleFunc("GET /ready", s.handleReady)   // K8s readiness probe
	mux.HandleFunc("GET /health", s.handleHealth) // Basic health check - status, uptime, version

	// Project endpoints
	mux.HandleFunc("POST /api/projects", s.handleCreateProject)
	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("GET /api/projects/overview", s.handleProjectOverview)

	// Ingestion endpoint
	mux.HandleFunc("POST /api/results", s.handleIngestResults)

	// Dashboard read endpoints
	mux.HandleFunc("GET /api/results", s.handleListRuns)
	mux.HandleFunc("GET /api/results/{id}/cases", s.handleRunCases)
	mux.HandleFunc("GET /api/events", s.handleListEvents)
	mux.HandleFunc("GET /api/events/{id}", s.handleEventDetail)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/cases", s.handleSearchCases)

	// API documentation
	mux.HandleFunc("GET /api-docs", s.handleDocsPage)
	mux.HandleFunc("GET /api-docs/openapi.json", s.handleOpenAPISpec)

	// Dashboard static assets, with RFC 7807 404s for unknown paths
	mux.HandleFunc("/", s.handleStatic)
}

// handlePing responds to ping requests for basic server validation.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	correlationID := middleware.GetCorrelationID(r.Context())

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)

	_, err := w.Write([]byte("pong"))
	if err != nil {
		s.logger.Error("Failed to write ping response",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)
	}
}

// handleReady responds to Kubernetes readiness probes with a storage health
// check.
//
// Response codes:
//   - 200 OK: storage is healthy and ready to accept traffic
//   - 503 Service Unavailable: storage backend is unhealthy or unreachable
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	correlationID := middleware.GetCorrelationID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := s.ingestStore.HealthCheck(ctx); err != nil {
		s.logger.Error("Storage health check failed",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusServiceUnavailable)

		if _, writeErr := w.Write([]byte("storage unavailable")); writeErr != nil {
			s.logger.Error("Failed to write unavailable response",
				slog.String("correlation_id", correlationID),
				slog.String("error", writeErr.Error()),
			)
		}

		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte("ready")); err != nil {
		s.logger.Error("Failed to write ready response",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)
	}
}

// handleHealth returns detailed health status information.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	correlationID := middleware.GetCorrelationID(r.Context())

	var uptime string

	if !s.startTime.IsZero() {
		duration := time.Since(s.startTime)
		uptime = duration.Round(time.Second).String()
	}

	health := HealthStatus{
		Status:      "healthy",
		ServiceName: "testdash",
		Version:     "v1.0.0",
		Uptime:      uptime,
	}

	data, err := json.Marshal(health)
	if err != nil {
		s.logger.Error("Failed to encode health response",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)

		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to encode health response"))

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		s.logger.Error("Failed to write health response",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)
	}
}

// handleStatic serves the dashboard UI from the configured static directory.
// The root path maps to index.html; anything not found on disk gets an RFC
// 7807 404 instead of the file server's plain-text one.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		WriteErrorResponse(w, r, s.logger, NotFound("The requested resource was not found"))

		return
	}

	rel := r.URL.Path
	if rel == "/" {
		rel = "/index.html"
	}

	// filepath.Clean plus the Join below keeps traversal inside StaticDir
	name := filepath.Join(s.config.StaticDir, filepath.Clean("/"+rel))

	info, err := os.Stat(name)
	if err != nil || info.IsDir() {
		WriteErrorResponse(w, r, s.logger, NotFound("The requested resource was not found"))

		return
	}

	http.ServeFile(w, r, name)
}

// writeJSON marshals v and writes it with the given status code.
// Marshal errors turn into a 500 before any headers are written.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		correlationID := middleware.GetCorrelationID(r.Context())
		s.logger.Error("Failed to marshal response",
			slog.String("correlation_id", correlationID),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to encode response"))

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(data); err != nil {
		correlationID := middleware.GetCorrelationID(r.Context())
		s.logger.Error("Failed to write response",
			slog.String("correlation_id", correlationID),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}
