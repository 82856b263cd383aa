package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lib/pq"

	"github.com/testdash-io/testdash/internal/config"
	"github.com/testdash-io/testdash/internal/ingestion"
)

// Sentinel errors for event storage operations.
var (
	// ErrIngestFailed is returned when an event submission cannot be stored.
	ErrIngestFailed = errors.New("event ingestion failed")

	// ErrProjectStoreFailed is returned when a project registration fails for
	// a reason other than a duplicate name.
	ErrProjectStoreFailed = errors.New("project storage failed")

	// ErrPruneFailed is returned when the retention sweep fails.
	ErrPruneFailed = errors.New("event retention sweep failed")
)

// ResultStore is the PostgreSQL-backed store for test events. It implements
// both the write-side ingestion.Store and the read-side reporting.Store
// interfaces over one shared connection pool.
type ResultStore struct {
	conn   *Connection
	logger *slog.Logger
}

// NewResultStore creates a PostgreSQL-backed test event store.
// Returns ErrNoDatabaseConnection if conn is nil.
//
// The store does not own the connection; the caller closes it on shutdown.
func NewResultStore(conn *Connection) (*ResultStore, error) {
	if conn == nil {
		return nil, ErrNoDatabaseConnection
	}

	return &ResultStore{
		conn: conn,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.GetEnvLogLevel("LOG_LEVEL", slog.LevelInfo),
		})),
	}, nil
}

// HealthCheck verifies the database connection is healthy and ready to serve
// requests. Used by the /ready endpoint and monitoring probes.
func (s *ResultStore) HealthCheck(ctx context.Context) error {
	if s.conn == nil {
		return ErrNoDatabaseConnection
	}

	return s.conn.HealthCheck(ctx)
}

// IngestEvent implements ingestion.Store.
//
// Stores one event submission atomically inside a single transaction:
//  1. Validates the canonical submission
//  2. Resolves the owning project (trusting project_id, or upserting by name)
//  3. Inserts the event row with aggregates computed across all suites
//  4. Inserts one suite-run row per suite
//  5. Inserts all cases of a suite in one multi-row INSERT
//
// Any failure rolls the whole submission back; no partial event is ever
// visible. The retention sweep is NOT part of the transaction, callers run
// PruneEvents after a successful return.
func (s *ResultStore) IngestEvent(
	ctx context.Context,
	sub *ingestion.EventSubmission,
) (*ingestion.IngestResult, error) {
	startTime := time.Now()

	if err := sub.Validate(); err != nil {
		s.logger.Error("Event submission validation failed",
			"error", err,
			"event_name", sub.Name(),
			"duration_ms", time.Since(startTime).Milliseconds(),
		)

		return nil, fmt.Errorf("%w: %w", ErrIngestFailed, err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %w", ErrIngestFailed, err)
	}

	defer func() {
		_ = tx.Rollback() // Safe to call even after commit
	}()

	projectID, err := s.resolveProject(ctx, tx, sub)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIngestFailed, err)
	}

	agg := sub.Aggregate()

	var eventID int64

	err = tx.QueryRowContext(ctx, `
		INSERT INTO events (project_id, event_name, trigger, total, passed, failed, skipped)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		nullableID(projectID),
		sub.Name(),
		sub.TriggerOrDefault(),
		agg.Total,
		agg.Passed,
		agg.Failed,
		agg.Skipped,
	).Scan(&eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to insert event: %w", ErrIngestFailed, err)
	}

	runIDs := make([]int64, 0, len(sub.Suites))

	for i := range sub.Suites {
		runID, err := s.insertSuiteRun(ctx, tx, projectID, eventID, &sub.Suites[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIngestFailed, err)
		}

		runIDs = append(runIDs, runID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit transaction: %w", ErrIngestFailed, err)
	}

	s.logger.Info("event ingested successfully",
		slog.Int64("event_id", eventID),
		slog.Int64("project_id", projectID),
		slog.String("event_name", sub.Name()),
		slog.Int("suites", len(sub.Suites)),
		slog.Int("total", agg.Total),
		slog.Int64("duration_ms", time.Since(startTime).Milliseconds()),
	)

	return &ingestion.IngestResult{
		ProjectID: projectID,
		EventID:   eventID,
		RunIDs:    runIDs,
	}, nil
}

// resolveProject determines the owning project for a submission within the
// ingestion transaction. An explicit ProjectID is trusted as-is; otherwise a
// non-empty ProjectName is upserted by name. Returns 0 when the submission
// carries neither (the event is stored unowned).
func (s *ResultStore) resolveProject(
	ctx context.Context,
	tx *sql.Tx,
	sub *ingestion.EventSubmission,
) (int64, error) {
	if sub.ProjectID > 0 {
		return sub.ProjectID, nil
	}

	if sub.ProjectName == "" {
		return 0, nil
	}

	// The no-op DO UPDATE makes RETURNING yield the id on conflict too.
	var projectID int64

	err := tx.QueryRowContext(ctx, `
		INSERT INTO projects (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		sub.ProjectName,
	).Scan(&projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert project %q: %w", sub.ProjectName, err)
	}

	return projectID, nil
}

// insertSuiteRun inserts one suite-run row and the suite's cases as a single
// multi-row INSERT, returning the new run id.
func (s *ResultStore) insertSuiteRun(
	ctx context.Context,
	tx *sql.Tx,
	projectID int64,
	eventID int64,
	suite *ingestion.SuiteSubmission,
) (int64, error) {
	var runID int64

	err := tx.QueryRowContext(ctx, `
		INSERT INTO test_runs (project_id, event_id, suite_name, total, passed, failed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		nullableID(projectID),
		eventID,
		suite.SuiteName,
		suite.Total,
		suite.Passed,
		suite.Failed,
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert suite run %q: %w", suite.SuiteName, err)
	}

	if len(suite.Cases) == 0 {
		return runID, nil
	}

	const caseColumns = 9

	query := `
		INSERT INTO test_cases
			(run_id, case_id, case_name, description, module, type, status, error_message, duration_ms)
		VALUES `
	args := make([]any, 0, len(suite.Cases)*caseColumns)

	for i := range suite.Cases {
		c := &suite.Cases[i]

		if i > 0 {
			query += ", "
		}

		base := i * caseColumns
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9)

		args = append(args,
			runID,
			nullableString(c.CaseID),
			c.CaseName,
			nullableString(c.Description),
			nullableString(c.Module),
			nullableString(string(c.Type)),
			string(c.Status),
			nullableString(c.ErrorMessage),
			nullableInt(c.DurationMs),
		)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("failed to insert %d cases for suite %q: %w",
			len(suite.Cases), suite.SuiteName, err)
	}

	return runID, nil
}

// PruneEvents implements ingestion.Store.
//
// Deletes a project's events beyond the retention ceiling, oldest first.
// Suite runs and cases follow via ON DELETE CASCADE. Runs outside the
// ingestion transaction so a sweep failure never rolls back a committed
// event; failures are surfaced to the caller for logging only.
func (s *ResultStore) PruneEvents(ctx context.Context, projectID int64) (int, error) {
	if projectID <= 0 {
		return 0, nil
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id FROM events
		WHERE project_id = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2`,
		projectID, ingestion.EventRetentionLimit,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPruneFailed, err)
	}
	defer func() { _ = rows.Close() }()

	var staleIDs []int64

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrPruneFailed, err)
		}

		staleIDs = append(staleIDs, id)
	}

	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPruneFailed, err)
	}

	if len(staleIDs) == 0 {
		return 0, nil
	}

	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM events WHERE id = ANY($1::bigint[])`,
		pq.Array(staleIDs),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPruneFailed, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPruneFailed, err)
	}

	s.logger.Info("pruned stale events",
		slog.Int64("project_id", projectID),
		slog.Int64("deleted", deleted),
	)

	return int(deleted), nil
}

// CreateProject implements ingestion.Store.
//
// Registers a project explicitly. Unlike the ingestion-time upsert this is
// strict: a taken name returns ingestion.ErrDuplicateProject so the handler
// can answer 409 Conflict.
func (s *ResultStore) CreateProject(
	ctx context.Context,
	reg *ingestion.ProjectRegistration,
) (int64, error) {
	if err := reg.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrProjectStoreFailed, err)
	}

	var projectID int64

	err := s.conn.QueryRowContext(ctx, `
		INSERT INTO projects (name, description, repo_url)
		VALUES ($1, $2, $3)
		RETURNING id`,
		reg.Name,
		nullableString(reg.Description),
		nullableString(reg.RepoURL),
	).Scan(&projectID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			s.logger.Warn("duplicate project registration",
				slog.String("name", reg.Name),
			)

			return 0, fmt.Errorf("%w: %s", ingestion.ErrDuplicateProject, reg.Name)
		}

		s.logger.Error("project creation failed",
			"error", err,
			"name", reg.Name,
		)

		return 0, fmt.Errorf("%w: %w", ErrProjectStoreFailed, err)
	}

	s.logger.Info("project created",
		slog.Int64("project_id", projectID),
		slog.String("name", reg.Name),
	)

	return projectID, nil
}
