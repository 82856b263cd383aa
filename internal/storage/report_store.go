package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/testdash-io/testdash/internal/ingestion"
	"github.com/testdash-io/testdash/internal/reporting"
)

// ErrReportQueryFailed is returned when a dashboard read query fails.
var ErrReportQueryFailed = errors.New("report query failed")

// ListProjects implements reporting.Store.
func (s *ResultStore) ListProjects(ctx context.Context) ([]reporting.Project, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, name, description, repo_url, created_at
		FROM projects
		ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
	}
	defer func() { _ = rows.Close() }()

	projects := make([]reporting.Project, 0)

	for rows.Next() {
		var p reporting.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.RepoURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
		}

		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
	}

	return projects, nil
}

// ProjectOverviews implements reporting.Store.
//
// Joins each project with its most recent event via LEFT JOIN LATERAL so
// projects without events still appear, with nil Latest* fields.
func (s *ResultStore) ProjectOverviews(ctx context.Context) ([]reporting.ProjectOverview, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT
			p.id, p.name, p.description, p.repo_url, p.created_at,
			e.id, e.event_name, e.trigger,
			e.total, e.passed, e.failed, e.skipped, e.created_at
		FROM projects p
		LEFT JOIN LATERAL (
			SELECT id, event_name, trigger, total, passed, failed, skipped, created_at
			FROM events
			WHERE events.project_id = p.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) e ON true
		ORDER BY p.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
	}
	defer func() { _ = rows.Close() }()

	overviews := make([]reporting.ProjectOverview, 0)

	for rows.Next() {
		var o reporting.ProjectOverview

		err := rows.Scan(
			&o.ID, &o.Name, &o.Description, &o.RepoURL, &o.CreatedAt,
			&o.LatestEventID, &o.LatestEventName, &o.LatestTrigger,
			&o.LatestTotal, &o.LatestPassed, &o.LatestFailed, &o.LatestSkipped,
			&o.LatestEventAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
		}

		overviews = append(overviews, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
	}

	return overviews, nil
}

// ListRuns implements reporting.Store.
func (s *ResultStore) ListRuns(
	ctx context.Context,
	filter reporting.RunFilter,
) ([]reporting.SuiteRun, error) {
	query := `
		SELECT
			r.id, r.project_id, p.name, r.event_id, r.suite_name,
			r.total, r.passed, r.failed, r.created_at
		FROM test_runs r
		LEFT JOIN projects p ON p.id = r.project_id`
	args := make([]any, 0, 2)

	if filter.ProjectID > 0 {
		args = append(args, filter.ProjectID)
		query += fmt.Sprintf(" WHERE r.project_id = $%d", len(args))
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY r.created_at DESC, r.id DESC LIMIT $%d", len(args))

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
	}
	defer func() { _ = rows.Close() }()

	return scanSuiteRuns(rows)
}

// CasesByRun implements reporting.Store.
func (s *ResultStore) CasesByRun(ctx context.Context, runID int64) ([]reporting.Case, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT
			id, run_id, case_id, case_name, description, module,
			type, status, error_message, duration_ms
		FROM test_cases
		WHERE run_id = $1
		ORDER BY case_id, id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
	}
	defer func() { _ = rows.Close() }()

	cases := make([]reporting.Case, 0)

	for rows.Next() {
		var c reporting.Case

		err := rows.Scan(
			&c.ID, &c.RunID, &c.CaseID, &c.CaseName, &c.Description, &c.Module,
			&c.Type, &c.Status, &c.ErrorMessage, &c.DurationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
		}

		cases = append(cases, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
	}

	return cases, nil
}

// ListEvents implements reporting.Store.
//
// Returns at most ingestion.EventRetentionLimit events. The sweep keeps the
// table at the ceiling already; the LIMIT also hides any not-yet-swept
// overshoot.
func (s *ResultStore) ListEvents(ctx context.Context, projectID int64) ([]reporting.Event, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT
			e.id, e.project_id, p.name, e.event_name, e.trigger,
			e.total, e.passed, e.failed, e.skipped, e.created_at
		FROM events e
		LEFT JOIN projects p ON p.id = e.project_id
		WHERE e.project_id = $1
		ORDER BY e.created_at DESC, e.id DESC
		LIMIT $2`,
		projectID, ingestion.EventRetentionLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
	}
	defer func() { _ = rows.Close() }()

	return scanEvents(rows)
}

// EventDetail implements reporting.Store.
//
// Composed from three queries: the event row, its suite runs, and all cases
// joined through those runs. Returns reporting.ErrEventNotFound for an
// unknown id.
func (s *ResultStore) EventDetail(ctx context.Context, eventID int64) (*reporting.EventDetail, error) {
	var detail reporting.EventDetail

	err := s.conn.QueryRowContext(ctx, `
		SELECT
			e.id, e.project_id, p.name, e.event_name, e.trigger,
			e.total, e.passed, e.failed, e.skipped, e.created_at
		FROM events e
		LEFT JOIN projects p ON p.id = e.project_id
		WHERE e.id = $1`,
		eventID,
	).Scan(
		&detail.ID, &detail.ProjectID, &detail.ProjectName,
		&detail.EventName, &detail.Trigger,
		&detail.Total, &detail.Passed, &detail.Failed, &detail.Skipped,
		&detail.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", reporting.ErrEventNotFound, eventID)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
	}

	runRows, err := s.conn.QueryContext(ctx, `
		SELECT
			r.id, r.project_id, p.name, r.event_id, r.suite_name,
			r.total, r.passed, r.failed, r.created_at
		FROM test_runs r
		LEFT JOIN projects p ON p.id = r.project_id
		WHERE r.event_id = $1
		ORDER BY r.id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
	}
	defer func() { _ = runRows.Close() }()

	detail.Runs, err = scanSuiteRuns(runRows)
	if err != nil {
		return nil, err
	}

	caseRows, err := s.conn.QueryContext(ctx, `
		SELECT
			c.id, c.run_id, c.case_id, c.case_name, c.description, c.module,
			c.type, c.status, c.error_message, c.duration_ms, r.suite_name
		FROM test_cases c
		JOIN test_runs r ON r.id = c.run_id
		WHERE r.event_id = $1
		ORDER BY c.run_id, c.case_id, c.id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
	}
	defer func() { _ = caseRows.Close() }()

	detail.Cases = make([]reporting.Case, 0)

	for caseRows.Next() {
		var c reporting.Case

		err := caseRows.Scan(
			&c.ID, &c.RunID, &c.CaseID, &c.CaseName, &c.Description, &c.Module,
			&c.Type, &c.Status, &c.ErrorMessage, &c.DurationMs, &c.SuiteName,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
		}

		detail.Cases = append(detail.Cases, c)
	}

	if err := caseRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
	}

	return &detail, nil
}

// Summary implements reporting.Store.
//
// Aggregates over suite runs, not events, so legacy single-suite
// submissions and multi-suite events count uniformly. projectID 0 means the
// global summary.
func (s *ResultStore) Summary(ctx context.Context, projectID int64) (*reporting.Summary, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(total), 0),
			COALESCE(SUM(passed), 0),
			COALESCE(SUM(failed), 0)
		FROM test_runs`
	args := make([]any, 0, 1)

	if projectID > 0 {
		args = append(args, projectID)
		query += " WHERE project_id = $1"
	}

	var summary reporting.Summary

	err := s.conn.QueryRowContext(ctx, query, args...).Scan(
		&summary.RunCount,
		&summary.TotalTests,
		&summary.TotalPassed,
		&summary.TotalFailed,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
	}

	return &summary, nil
}

// SearchCases implements reporting.Store.
func (s *ResultStore) SearchCases(
	ctx context.Context,
	filter reporting.CaseFilter,
) ([]reporting.Case, error) {
	query := `
		SELECT
			c.id, c.run_id, c.case_id, c.case_name, c.description, c.module,
			c.type, c.status, c.error_message, c.duration_ms,
			r.suite_name, r.project_id, p.name
		FROM test_cases c
		JOIN test_runs r ON r.id = c.run_id
		LEFT JOIN projects p ON p.id = r.project_id`
	args := make([]any, 0, 3)

	where := ""

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = fmt.Sprintf(" WHERE c.status = $%d", len(args))
	}

	if filter.ProjectID > 0 {
		args = append(args, filter.ProjectID)

		if where == "" {
			where = fmt.Sprintf(" WHERE r.project_id = $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND r.project_id = $%d", len(args))
		}
	}

	args = append(args, filter.Limit)
	query += where + fmt.Sprintf(" ORDER BY c.id DESC LIMIT $%d", len(args))

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
	}
	defer func() { _ = rows.Close() }()

	cases := make([]reporting.Case, 0)

	for rows.Next() {
		var c reporting.Case

		err := rows.Scan(
			&c.ID, &c.RunID, &c.CaseID, &c.CaseName, &c.Description, &c.Module,
			&c.Type, &c.Status, &c.ErrorMessage, &c.DurationMs,
			&c.SuiteName, &c.ProjectID, &c.ProjectName,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
		}

		cases = append(cases, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
	}

	return cases, nil
}

func scanSuiteRuns(rows *sql.Rows) ([]reporting.SuiteRun, error) {
	runs := make([]reporting.SuiteRun, 0)

	for rows.Next() {
		var r reporting.SuiteRun

		err := rows.Scan(
			&r.ID, &r.ProjectID, &r.ProjectName, &r.EventID, &r.SuiteName,
			&r.Total, &r.Passed, &r.Failed, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
		}

		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
	}

	return runs, nil
}

func scanEvents(rows *sql.Rows) ([]reporting.Event, error) {
	events := make([]reporting.Event, 0)

	for rows.Next() {
		var e reporting.Event

		err := rows.Scan(
			&e.ID, &e.ProjectID, &e.ProjectName, &e.EventName, &e.Trigger,
			&e.Total, &e.Passed, &e.Failed, &e.Skipped, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
		}

		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportQueryFailed, err)
	}

	return events, nil
}
