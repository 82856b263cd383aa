package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/testdash-io/testdash/internal/api/middleware"
	"github.com/testdash-io/testdash/internal/ingestion"
)

// handleIngestResults handles test event ingestion.
// POST /api/results - Ingest one event with one or more suites
//
// Request validation (returns 4xx):
//   - 405 Method Not Allowed: Only POST is allowed (handled by route pattern)
//   - 415 Unsupported Media Type: Content-Type must be application/json
//   - 413 Payload Too Large: Request body exceeds MaxRequestSize
//   - 400 Bad Request: Empty body, invalid JSON, or neither payload shape
//     satisfiable (missing suites / suite fields)
//
// Success response:
//   - 201 Created: {id, event_id, run_ids} where id mirrors run_ids[0]
//
// The whole submission is stored in one transaction; a failure anywhere
// returns 500 with no partial event visible. After a successful commit the
// retention sweep runs for the resolved project; a sweep failure is logged
// but never fails the request, the event is already committed.
func (s *Server) handleIngestResults(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	correlationID := middleware.GetCorrelationID(r.Context())

	// Content-Type validation
	if !hasJSONContentType(r.Header.Get("Content-Type")) {
		WriteErrorResponse(w, r, s.logger, UnsupportedMediaType("Content-Type must be application/json"))

		return
	}

	req, problem := s.parseResultsRequest(r)
	if problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}

	// Map API -> Domain and validate (missing fields surface here as 400)
	sub, err := mapResultsRequest(req)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest(err.Error()))

		return
	}

	result, err := s.ingestStore.IngestEvent(r.Context(), sub)
	if err != nil {
		s.logger.Error("Failed to ingest event",
			slog.String("correlation_id", correlationID),
			slog.String("event_name", sub.Name()),
			slog.String("error", err.Error()),
		)

		WriteErrorResponse(w, r, s.logger, InternalServerError(err.Error()))

		return
	}

	// Retention sweep runs post-commit so a sweep failure cannot invalidate
	// the stored event. Detached from the request context: the client may
	// disconnect right after the 201.
	s.sweepProject(result.ProjectID, correlationID)

	response := &IngestResponse{
		ID:      result.RunIDs[0],
		EventID: result.EventID,
		RunIDs:  result.RunIDs,
	}

	s.writeJSON(w, r, http.StatusCreated, response)

	s.logger.Info("Event ingested",
		slog.String("correlation_id", correlationID),
		slog.Int64("event_id", result.EventID),
		slog.Int64("project_id", result.ProjectID),
		slog.Int("suites", len(result.RunIDs)),
		slog.Duration("duration", time.Since(startTime)),
	)
}

// parseResultsRequest parses and validates the HTTP request body.
// Returns the parsed payload or a ProblemDetail if validation fails.
//
// Validates:
//   - Request size (optimization for known oversized requests)
//   - Empty body check (better UX than JSON decode error)
//   - JSON parsing
func (s *Server) parseResultsRequest(r *http.Request) (*ResultsRequest, *ProblemDetail) {
	// Request size check (optimization: fail fast for known oversized requests)
	// Allow unknown sizes (-1) or 0 (empty, caught later)
	if r.ContentLength > 0 && r.ContentLength > s.config.MaxRequestSize {
		return nil, PayloadTooLarge(
			fmt.Sprintf("Request body exceeds maximum size of %d bytes", s.config.MaxRequestSize),
		)
	}

	// Empty body check (better UX: specific error message)
	if r.ContentLength == 0 {
		return nil, BadRequest("Request body cannot be empty")
	}

	var req ResultsRequest

	decoder := json.NewDecoder(io.LimitReader(r.Body, s.config.MaxRequestSize))
	if err := decoder.Decode(&req); err != nil {
		return nil, BadRequest("Invalid JSON: " + err.Error())
	}

	return &req, nil
}

// sweepProject runs the retention sweep for a project, logging but never
// propagating failures.
func (s *Server) sweepProject(projectID int64, correlationID string) {
	if projectID <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()

	deleted, err := s.ingestStore.PruneEvents(ctx, projectID)
	if err != nil {
		s.logger.Error("Retention sweep failed",
			slog.String("correlation_id", correlationID),
			slog.Int64("project_id", projectID),
			slog.String("error", err.Error()),
		)

		return
	}

	if deleted > 0 {
		s.logger.Info("Retention sweep removed stale events",
			slog.String("correlation_id", correlationID),
			slog.Int64("project_id", projectID),
			slog.Int("deleted", deleted),
			slog.Int("retention_limit", ingestion.EventRetentionLimit),
		)
	}
}
