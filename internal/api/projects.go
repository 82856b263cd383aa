package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/testdash-io/testdash/internal/api/middleware"
	"github.com/testdash-io/testdash/internal/ingestion"
)

// handleCreateProject handles explicit project registration.
// POST /api/projects - Register a new project
//
// Response codes:
//   - 201 Created: project registered, body carries the new row
//   - 400 Bad Request: missing name or malformed JSON
//   - 409 Conflict: project name already registered
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	correlationID := middleware.GetCorrelationID(r.Context())

	if !hasJSONContentType(r.Header.Get("Content-Type")) {
		WriteErrorResponse(w, r, s.logger, UnsupportedMediaType("Content-Type must be application/json"))

		return
	}

	if r.ContentLength == 0 {
		WriteErrorResponse(w, r, s.logger, BadRequest("Request body cannot be empty"))

		return
	}

	var req ProjectRequest

	decoder := json.NewDecoder(io.LimitReader(r.Body, s.config.MaxRequestSize))
	if err := decoder.Decode(&req); err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest("Invalid JSON: "+err.Error()))

		return
	}

	reg := &ingestion.ProjectRegistration{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		RepoURL:     strings.TrimSpace(req.RepoURL),
	}

	if err := reg.Validate(); err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest(err.Error()))

		return
	}

	projectID, err := s.ingestStore.CreateProject(r.Context(), reg)
	if err != nil {
		if errors.Is(err, ingestion.ErrDuplicateProject) {
			WriteErrorResponse(w, r, s.logger, Conflict("Project already exists"))

			return
		}

		s.logger.Error("Failed to create project",
			slog.String("correlation_id", correlationID),
			slog.String("name", reg.Name),
			slog.String("error", err.Error()),
		)

		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to create project"))

		return
	}

	response := &ProjectCreatedResponse{
		ID:   projectID,
		Name: reg.Name,
	}
	if reg.Description != "" {
		response.Description = &reg.Description
	}

	if reg.RepoURL != "" {
		response.RepoURL = &reg.RepoURL
	}

	s.writeJSON(w, r, http.StatusCreated, response)
}

// handleListProjects returns all projects sorted by name.
// GET /api/projects
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.reportStore.ListProjects(r.Context())
	if err != nil {
		s.logger.Error("Failed to list projects",
			slog.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			slog.String("error", err.Error()),
		)

		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to list projects"))

		return
	}

	s.writeJSON(w, r, http.StatusOK, projects)
}

// handleProjectOverview returns all projects joined with their most recent
// event, for the dashboard landing view.
// GET /api/projects/overview
func (s *Server) handleProjectOverview(w http.ResponseWriter, r *http.Request) {
	overviews, err := s.reportStore.ProjectOverviews(r.Context())
	if err != nil {
		s.logger.Error("Failed to build project overview",
			slog.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			slog.String("error", err.Error()),
		)

		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to build project overview"))

		return
	}

	s.writeJSON(w, r, http.StatusOK, overviews)
}
