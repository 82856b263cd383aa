package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/testdash-io/testdash/internal/api/middleware"
	"github.com/testdash-io/testdash/internal/reporting"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
)

// handleListRuns returns suite runs newest-first.
// GET /api/results?project_id=&limit=
//
// limit is clamped to 100 (default 20). A malformed limit or project_id is
// treated as absent rather than rejected, matching the lenient query
// handling the dashboard relies on.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filter := reporting.RunFilter{
		ProjectID: parseQueryID(r.URL.Query().Get("project_id")),
		Limit:     clampLimit(r.URL.Query().Get("limit"), defaultRunLimit, maxRunLimit),
	}

	runs, err := s.reportStore.ListRuns(r.Context(), filter)
	if err != nil {
		s.logger.Error("Failed to list suite runs",
			slog.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			slog.Int64("project_id", filter.ProjectID),
			slog.String("error", err.Error()),
		)

		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to list suite runs"))

		return
	}

	s.writeJSON(w, r, http.StatusOK, runs)
}

// handleRunCases returns the cases of one suite run, ordered by case id.
// GET /api/results/{id}/cases
func (s *Server) handleRunCases(w http.ResponseWriter, r *http.Request) {
	runID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest("run id must be an integer"))

		return
	}

	cases, err := s.reportStore.CasesByRun(r.Context(), runID)
	if err != nil {
		s.logger.Error("Failed to list run cases",
			slog.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			slog.Int64("run_id", runID),
			slog.String("error", err.Error()),
		)

		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to list run cases"))

		return
	}

	s.writeJSON(w, r, http.StatusOK, cases)
}

// clampLimit parses a limit query parameter, falling back to def when absent
// or malformed and capping the result at maxLimit.
func clampLimit(raw string, def, maxLimit int) int {
	limit := def

	if raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	if limit > maxLimit {
		return maxLimit
	}

	return limit
}

// parseQueryID parses an id query parameter, returning 0 (no filter) when
// absent or malformed.
func parseQueryID(raw string) int64 {
	if raw == "" {
		return 0
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0
	}

	return id
}
