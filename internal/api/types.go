// Package api provides HTTP API server implementation for the testdash service.
package api

import (
	"strings"

	"github.com/testdash-io/testdash/internal/ingestion"
)

type (
	// ResultsRequest models the payload of POST /api/results. It accepts two
	// shapes:
	//
	//   Multi-suite:  { suites: [{suite_name, total, passed, failed, cases?}],
	//                   project_id|project_name, event_name?, trigger? }
	//   Legacy flat:  { suite_name, total, passed, failed, cases?,
	//                   project_id|project_name, event_name?, trigger? }
	//
	// Numeric fields are pointers so that an absent field can be told apart
	// from an explicit zero; a suite with total 0 is valid, a suite missing
	// total is not.
	ResultsRequest struct {
		ProjectID   int64          `json:"project_id"`
		ProjectName string         `json:"project_name"`
		EventName   string         `json:"event_name"`
		Trigger     string         `json:"trigger"`
		Suites      []SuiteRequest `json:"suites"`

		// Legacy single-suite fields
		SuiteName string        `json:"suite_name"`
		Total     *int          `json:"total"`
		Passed    *int          `json:"passed"`
		Failed    *int          `json:"failed"`
		Cases     []CaseRequest `json:"cases"`
	}

	// SuiteRequest is one suite inside a multi-suite submission.
	SuiteRequest struct {
		SuiteName string        `json:"suite_name"`
		Total     *int          `json:"total"`
		Passed    *int          `json:"passed"`
		Failed    *int          `json:"failed"`
		Cases     []CaseRequest `json:"cases"`
	}

	// CaseRequest is one individual test result inside a suite.
	CaseRequest struct {
		CaseID       string `json:"case_id"`
		CaseName     string `json:"case_name"`
		Description  string `json:"description"`
		Module       string `json:"module"`
		Type         string `json:"type"`
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
		DurationMs   int    `json:"duration_ms"`
	}

	// IngestResponse is the 201 body of POST /api/results. ID mirrors the
	// first created run id for callers that predate multi-suite events.
	IngestResponse struct {
		ID      int64   `json:"id"`
		EventID int64   `json:"event_id"`
		RunIDs  []int64 `json:"run_ids"`
	}

	// ProjectRequest models the payload of POST /api/projects.
	ProjectRequest struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		RepoURL     string `json:"repo_url"`
	}

	// ProjectCreatedResponse is the 201 body of POST /api/projects.
	ProjectCreatedResponse struct {
		ID          int64   `json:"id"`
		Name        string  `json:"name"`
		Description *string `json:"description"`
		RepoURL     *string `json:"repo_url"`
	}
)

// mapResultsRequest maps the API payload to the canonical domain submission,
// normalizing the legacy flat shape into a one-element suites array.
//
// Validation approach:
//   - API layer (here): field presence (nil pointers) and shape selection
//   - Domain layer (EventSubmission.Validate): business rule validation
//
// This avoids the anti-pattern of duplicating validation logic across layers.
func mapResultsRequest(req *ResultsRequest) (*ingestion.EventSubmission, error) {
	sub := &ingestion.EventSubmission{
		ProjectID:   req.ProjectID,
		ProjectName: strings.TrimSpace(req.ProjectName),
		EventName:   strings.TrimSpace(req.EventName),
		Trigger:     strings.TrimSpace(req.Trigger),
	}

	switch {
	case len(req.Suites) > 0:
		sub.Suites = make([]ingestion.SuiteSubmission, 0, len(req.Suites))

		for i := range req.Suites {
			suite, err := mapSuiteRequest(&req.Suites[i])
			if err != nil {
				return nil, err
			}

			sub.Suites = append(sub.Suites, *suite)
		}
	case req.SuiteName != "" && req.Total != nil && req.Passed != nil && req.Failed != nil:
		// Legacy flat shape becomes a single-suite event
		sub.Suites = []ingestion.SuiteSubmission{{
			SuiteName: strings.TrimSpace(req.SuiteName),
			Total:     *req.Total,
			Passed:    *req.Passed,
			Failed:    *req.Failed,
			Cases:     mapCaseRequests(req.Cases),
		}}
	default:
		return nil, ingestion.ErrNoSuites
	}

	if err := sub.Validate(); err != nil {
		return nil, err
	}

	return sub, nil
}

// mapSuiteRequest maps one suite, rejecting suites with missing fields.
func mapSuiteRequest(req *SuiteRequest) (*ingestion.SuiteSubmission, error) {
	if strings.TrimSpace(req.SuiteName) == "" || req.Total == nil || req.Passed == nil || req.Failed == nil {
		return nil, ingestion.ErrSuiteIncomplete
	}

	return &ingestion.SuiteSubmission{
		SuiteName: strings.TrimSpace(req.SuiteName),
		Total:     *req.Total,
		Passed:    *req.Passed,
		Failed:    *req.Failed,
		Cases:     mapCaseRequests(req.Cases),
	}, nil
}

func mapCaseRequests(reqs []CaseRequest) []ingestion.CaseSubmission {
	if len(reqs) == 0 {
		return nil
	}

	cases := make([]ingestion.CaseSubmission, len(reqs))
	for i, c := range reqs {
		cases[i] = ingestion.CaseSubmission{
			CaseID:       c.CaseID,
			CaseName:     c.CaseName,
			Description:  c.Description,
			Module:       c.Module,
			Type:         ingestion.CaseType(c.Type),
			Status:       ingestion.CaseStatus(c.Status),
			ErrorMessage: c.ErrorMessage,
			DurationMs:   c.DurationMs,
		}
	}

	return cases
}

// hasJSONContentType checks if Content-Type header starts with "application/json".
// This allows charset parameters (e.g., "application/json; charset=utf-8").
func hasJSONContentType(contentType string) bool {
	return strings.HasPrefix(strings.TrimSpace(contentType), "application/json")
}
