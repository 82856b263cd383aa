// Package reporting provides the read-side projections served to the
// dashboard UI: project listings, event history, suite-run detail and
// aggregate summaries.
//
// The projections mirror the persisted rows closely enough that they carry
// JSON tags and are marshaled by the API handlers as-is; there is no
// business logic on the read path beyond SQL composition.
package reporting

import "time"

type (
	// Project is one registered project.
	Project struct {
		ID          int64     `json:"id"`
		Name        string    `json:"name"`
		Description *string   `json:"description"`
		RepoURL     *string   `json:"repo_url"`
		CreatedAt   time.Time `json:"created_at"`
	}

	// ProjectOverview is a project joined with its most recent event, for
	// the dashboard landing view. The Latest* fields are nil for projects
	// that have no events yet.
	ProjectOverview struct {
		Project

		LatestEventID   *int64     `json:"latest_event_id"`
		LatestEventName *string    `json:"latest_event_name"`
		LatestTrigger   *string    `json:"latest_trigger"`
		LatestTotal     *int       `json:"latest_total"`
		LatestPassed    *int       `json:"latest_passed"`
		LatestFailed    *int       `json:"latest_failed"`
		LatestSkipped   *int       `json:"latest_skipped"`
		LatestEventAt   *time.Time `json:"latest_event_at"`
	}

	// Event is one ingestion submission with its aggregate counters.
	Event struct {
		ID          int64     `json:"id"`
		ProjectID   *int64    `json:"project_id"`
		ProjectName *string   `json:"project_name"`
		EventName   string    `json:"event_name"`
		Trigger     string    `json:"trigger"`
		Total       int       `json:"total"`
		Passed      int       `json:"passed"`
		Failed      int       `json:"failed"`
		Skipped     int       `json:"skipped"`
		CreatedAt   time.Time `json:"created_at"`
	}

	// SuiteRun is one suite's result within an event.
	SuiteRun struct {
		ID          int64     `json:"id"`
		ProjectID   *int64    `json:"project_id"`
		ProjectName *string   `json:"project_name"`
		EventID     *int64    `json:"event_id"`
		SuiteName   string    `json:"suite_name"`
		Total       int       `json:"total"`
		Passed      int       `json:"passed"`
		Failed      int       `json:"failed"`
		CreatedAt   time.Time `json:"created_at"`
	}

	// Case is one individual test result. SuiteName, ProjectID and
	// ProjectName are populated by the search and event-detail queries,
	// which join through the owning run.
	Case struct {
		ID           int64   `json:"id"`
		RunID        int64   `json:"run_id"`
		CaseID       *string `json:"case_id"`
		CaseName     string  `json:"case_name"`
		Description  *string `json:"description"`
		Module       *string `json:"module"`
		Type         *string `json:"type"`
		Status       string  `json:"status"`
		ErrorMessage *string `json:"error_message"`
		DurationMs   *int    `json:"duration_ms"`
		SuiteName    *string `json:"suite_name,omitempty"`
		ProjectID    *int64  `json:"project_id,omitempty"`
		ProjectName  *string `json:"project_name,omitempty"`
	}

	// EventDetail is one event with its suite runs and their cases,
	// composed from three queries.
	EventDetail struct {
		Event

		Runs  []SuiteRun `json:"runs"`
		Cases []Case     `json:"cases"`
	}

	// Summary holds aggregate counters over suite runs, optionally scoped
	// to one project.
	Summary struct {
		RunCount    int64 `json:"run_count"`
		TotalTests  int64 `json:"total_tests"`
		TotalPassed int64 `json:"total_passed"`
		TotalFailed int64 `json:"total_failed"`
	}

	// RunFilter narrows the suite-run listing. ProjectID 0 means all
	// projects; Limit is clamped by the caller.
	RunFilter struct {
		ProjectID int64
		Limit     int
	}

	// CaseFilter narrows the case search. Zero values mean "no filter".
	CaseFilter struct {
		Status    string
		ProjectID int64
		Limit     int
	}
)
