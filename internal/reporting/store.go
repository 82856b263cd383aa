package reporting

import (
	"context"
	"errors"
)

// ErrEventNotFound is returned by Store.EventDetail for an unknown event
// id. Handlers map it to 404 Not Found rather than an empty success body.
var ErrEventNotFound = errors.New("event not found")

// Store defines the read-only interface for dashboard queries.
//
// This interface is intentionally separate from ingestion.Store so that the
// read handlers depend only on the query methods and the ingestion handler
// only on the write methods; storage.ResultStore implements both.
type Store interface {
	// ListProjects returns all projects sorted by name.
	ListProjects(ctx context.Context) ([]Project, error)

	// ProjectOverviews returns all projects, each joined with its most
	// recent event (one left join per project), sorted by name.
	ProjectOverviews(ctx context.Context) ([]ProjectOverview, error)

	// ListRuns returns suite runs newest-first, optionally scoped to a
	// project. The caller is responsible for clamping Limit.
	ListRuns(ctx context.Context, filter RunFilter) ([]SuiteRun, error)

	// CasesByRun returns the cases of one suite run, ordered by case id.
	CasesByRun(ctx context.Context, runID int64) ([]Case, error)

	// ListEvents returns a project's events newest-first, capped at the
	// retention ceiling.
	ListEvents(ctx context.Context, projectID int64) ([]Event, error)

	// EventDetail returns one event with its runs and their cases, or
	// ErrEventNotFound.
	EventDetail(ctx context.Context, eventID int64) (*EventDetail, error)

	// Summary returns aggregate counters over suite runs; projectID 0
	// means the global summary.
	Summary(ctx context.Context, projectID int64) (*Summary, error)

	// SearchCases returns cases filtered by status and/or project,
	// newest-first. The caller is responsible for clamping Limit.
	SearchCases(ctx context.Context, filter CaseFilter) ([]Case, error)
}
