package ingestion

import (
	"context"
	"errors"
)

// EventRetentionLimit is the number of events kept per project. PruneEvents
// deletes everything older, cascading to suite runs and cases.
const EventRetentionLimit = 5

// ErrDuplicateProject is returned by Store.CreateProject when the project
// name is already registered. Handlers map it to 409 Conflict.
var ErrDuplicateProject = errors.New("project already exists")

// Store defines the write-side persistence interface for test events.
//
// The domain package defines this interface to specify what it needs for
// event persistence, without depending on concrete implementations; the
// PostgreSQL implementation lives in internal/storage. The read-side
// projections used by the dashboard are a separate interface
// (reporting.Store) implemented by the same storage type.
type Store interface {
	// IngestEvent stores one event submission atomically: it resolves the
	// owning project (upserting by name when needed), writes the event row
	// with computed aggregates, one suite-run row per suite, and the batched
	// case rows per suite, all inside a single transaction. Any failure
	// rolls the whole call back; no partial event is ever visible.
	//
	// IngestEvent does NOT run the retention sweep. Callers trigger
	// PruneEvents after a successful return so that a sweep failure cannot
	// invalidate an already-committed ingestion.
	IngestEvent(ctx context.Context, sub *EventSubmission) (*IngestResult, error)

	// PruneEvents deletes the oldest events of a project beyond the
	// retention ceiling, cascading to their suite runs and cases. Returns
	// the number of deleted events. Idempotent: at or below the ceiling it
	// is a no-op.
	PruneEvents(ctx context.Context, projectID int64) (int, error)

	// CreateProject registers a project explicitly. Returns the created
	// row id, or ErrDuplicateProject when the name is taken.
	CreateProject(ctx context.Context, reg *ProjectRegistration) (int64, error)

	// HealthCheck verifies the storage backend is reachable. Used by the
	// /ready endpoint.
	HealthCheck(ctx context.Context) error
}
