package api

import (
	"log/slog"
	"net/http"

	"github.com/testdash-io/testdash/internal/api/middleware"
)

// handleSummary returns aggregate run/total/passed/failed counts over suite
// runs, optionally scoped to one project.
// GET /api/summary?project_id=
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	projectID := parseQueryID(r.URL.Query().Get("project_id"))

	summary, err := s.reportStore.Summary(r.Context(), projectID)
	if err != nil {
		s.logger.Error("Failed to build summary",
			slog.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			slog.Int64("project_id", projectID),
			slog.String("error", err.Error()),
		)

		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to build summary"))

		return
	}

	s.writeJSON(w, r, http.StatusOK, summary)
}
