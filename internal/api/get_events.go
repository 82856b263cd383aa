package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/testdash-io/testdash/internal/api/middleware"
	"github.com/testdash-io/testdash/internal/reporting"
)

// handleListEvents returns a project's events newest-first, capped at the
// retention ceiling.
// GET /api/events?project_id=
//
// Response codes:
//   - 200 OK: array of events (possibly empty)
//   - 400 Bad Request: project_id missing or not an integer
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("project_id")
	if raw == "" {
		WriteErrorResponse(w, r, s.logger, BadRequest("project_id is required"))

		return
	}

	projectID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || projectID <= 0 {
		WriteErrorResponse(w, r, s.logger, BadRequest("project_id must be a positive integer"))

		return
	}

	events, err := s.reportStore.ListEvents(r.Context(), projectID)
	if err != nil {
		s.logger.Error("Failed to list events",
			slog.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			slog.Int64("project_id", projectID),
			slog.String("error", err.Error()),
		)

		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to list events"))

		return
	}

	s.writeJSON(w, r, http.StatusOK, events)
}

// handleEventDetail returns one event with its suite runs and their cases.
// GET /api/events/{id}
//
// Response codes:
//   - 200 OK: event detail object
//   - 400 Bad Request: id not an integer
//   - 404 Not Found: no event with that id
func (s *Server) handleEventDetail(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest("event id must be an integer"))

		return
	}

	detail, err := s.reportStore.EventDetail(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, reporting.ErrEventNotFound) {
			WriteErrorResponse(w, r, s.logger, NotFound("Event not found"))

			return
		}

		s.logger.Error("Failed to load event detail",
			slog.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			slog.Int64("event_id", eventID),
			slog.String("error", err.Error()),
		)

		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to load event detail"))

		return
	}

	s.writeJSON(w, r, http.StatusOK, detail)
}
