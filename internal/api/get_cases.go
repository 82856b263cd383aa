package api

import (
	"log/slog"
	"net/http"

	"github.com/testdash-io/testdash/internal/api/middleware"
	"github.com/testdash-io/testdash/internal/reporting"
)

const (
	defaultCaseLimit = 50
	maxCaseLimit     = 200
)

// handleSearchCases returns cases filtered by status and/or project,
// newest-first.
// GET /api/cases?status=&project_id=&limit=
//
// limit is clamped to 200 (default 50). Unknown status values simply match
// nothing; the schema constrains stored statuses to pass/fail/skip.
func (s *Server) handleSearchCases(w http.ResponseWriter, r *http.Request) {
	filter := reporting.CaseFilter{
		Status:    r.URL.Query().Get("status"),
		ProjectID: parseQueryID(r.URL.Query().Get("project_id")),
		Limit:     clampLimit(r.URL.Query().Get("limit"), defaultCaseLimit, maxCaseLimit),
	}

	cases, err := s.reportStore.SearchCases(r.Context(), filter)
	if err != nil {
		s.logger.Error("Failed to search cases",
			slog.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			slog.String("status", filter.Status),
			slog.Int64("project_id", filter.ProjectID),
			slog.String("error", err.Error()),
		)

		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to search cases"))

		return
	}

	s.writeJSON(w, r, http.StatusOK, cases)
}
