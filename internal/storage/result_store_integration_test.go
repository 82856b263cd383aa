package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"github.com/testdash-io/testdash/internal/config"
	"github.com/testdash-io/testdash/internal/ingestion"
)

// setupResultStore starts a PostgreSQL container, runs migrations and returns
// a store bound to it. Cleanup is registered on t.
func setupResultStore(ctx context.Context, t *testing.T) *ResultStore {
	t.Helper()

	testDB := config.SetupTestDatabase(ctx, t)

	t.Cleanup(func() {
		_ = testDB.Connection.Close()
		_ = testcontainers.TerminateContainer(testDB.Container)
	})

	store, err := NewResultStore(&Connection{DB: testDB.Connection})
	require.NoError(t, err)

	return store
}

// uniqueName returns a project name that cannot collide across subtests
// sharing one container.
func uniqueName(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

func TestResultStore_IngestEvent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	store := setupResultStore(ctx, t)

	t.Run("multi-suite submission creates event, runs and cases", func(t *testing.T) {
		projectName := uniqueName("my-api")

		sub := &ingestion.EventSubmission{
			ProjectName: projectName,
			EventName:   "Sanity Check",
			Trigger:     "ci",
			Suites: []ingestion.SuiteSubmission{
				{
					SuiteName: "auth",
					Total:     1,
					Passed:    1,
					Failed:    0,
					Cases: []ingestion.CaseSubmission{
						{
							CaseID:     "1.1",
							CaseName:   "Login with valid credentials",
							Module:     "authentication",
							Type:       ingestion.CaseTypePositive,
							Status:     ingestion.CaseStatusPass,
							DurationMs: 120,
						},
					},
				},
				{
					SuiteName: "users",
					Total:     1,
					Passed:    0,
					Failed:    1,
					Cases: []ingestion.CaseSubmission{
						{
							CaseName:     "Delete user account",
							Type:         ingestion.CaseTypeNegative,
							Status:       ingestion.CaseStatusFail,
							ErrorMessage: "Expected 204 but got 500",
						},
					},
				},
			},
		}

		result, err := store.IngestEvent(ctx, sub)
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Positive(t, result.ProjectID)
		assert.Positive(t, result.EventID)
		require.Len(t, result.RunIDs, 2)

		// Event-level aggregates are the arithmetic sum of the suites
		var total, passed, failed, skipped int

		err = store.conn.QueryRowContext(ctx,
			`SELECT total, passed, failed, skipped FROM events WHERE id = $1`,
			result.EventID,
		).Scan(&total, &passed, &failed, &skipped)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Equal(t, 1, passed)
		assert.Equal(t, 1, failed)
		assert.Equal(t, 0, skipped)

		// Both runs reference the event
		var runCount int

		err = store.conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM test_runs WHERE event_id = $1`,
			result.EventID,
		).Scan(&runCount)
		require.NoError(t, err)
		assert.Equal(t, 2, runCount)

		// Optional case fields are NULL, not empty strings
		var caseID, module *string

		err = store.conn.QueryRowContext(ctx,
			`SELECT case_id, module FROM test_cases WHERE run_id = $1`,
			result.RunIDs[1],
		).Scan(&caseID, &module)
		require.NoError(t, err)
		assert.Nil(t, caseID)
		assert.Nil(t, module)
	})

	t.Run("event name and trigger defaults are applied", func(t *testing.T) {
		sub := &ingestion.EventSubmission{
			ProjectName: uniqueName("defaults"),
			Suites: []ingestion.SuiteSubmission{
				{SuiteName: "smoke", Total: 1, Passed: 1},
			},
		}

		result, err := store.IngestEvent(ctx, sub)
		require.NoError(t, err)

		var eventName, trigger string

		err = store.conn.QueryRowContext(ctx,
			`SELECT event_name, trigger FROM events WHERE id = $1`,
			result.EventID,
		).Scan(&eventName, &trigger)
		require.NoError(t, err)
		assert.Equal(t, ingestion.DefaultEventName, eventName)
		assert.Equal(t, ingestion.DefaultTrigger, trigger)
	})

	t.Run("repeated project name reuses the same project row", func(t *testing.T) {
		projectName := uniqueName("reused")

		sub := &ingestion.EventSubmission{
			ProjectName: projectName,
			Suites:      []ingestion.SuiteSubmission{{SuiteName: "smoke", Total: 1, Passed: 1}},
		}

		first, err := store.IngestEvent(ctx, sub)
		require.NoError(t, err)

		second, err := store.IngestEvent(ctx, sub)
		require.NoError(t, err)

		assert.Equal(t, first.ProjectID, second.ProjectID)

		var projectRows int

		err = store.conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM projects WHERE name = $1`,
			projectName,
		).Scan(&projectRows)
		require.NoError(t, err)
		assert.Equal(t, 1, projectRows)
	})

	t.Run("concurrent submissions for one name yield a single project row", func(t *testing.T) {
		projectName := uniqueName("race")

		const writers = 8

		var wg sync.WaitGroup

		errs := make([]error, writers)

		for i := range writers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, errs[i] = store.IngestEvent(ctx, &ingestion.EventSubmission{
					ProjectName: projectName,
					Suites:      []ingestion.SuiteSubmission{{SuiteName: "smoke", Total: 1, Passed: 1}},
				})
			}()
		}

		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}

		var projectRows int

		err := store.conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM projects WHERE name = $1`,
			projectName,
		).Scan(&projectRows)
		require.NoError(t, err)
		assert.Equal(t, 1, projectRows)
	})

	t.Run("event without project reference is stored unowned", func(t *testing.T) {
		sub := &ingestion.EventSubmission{
			Suites: []ingestion.SuiteSubmission{{SuiteName: "anonymous", Total: 1, Passed: 1}},
		}

		result, err := store.IngestEvent(ctx, sub)
		require.NoError(t, err)
		assert.Zero(t, result.ProjectID)

		var projectID *int64

		err = store.conn.QueryRowContext(ctx,
			`SELECT project_id FROM events WHERE id = $1`,
			result.EventID,
		).Scan(&projectID)
		require.NoError(t, err)
		assert.Nil(t, projectID)
	})

	t.Run("stale project id surfaces as an error without partial writes", func(t *testing.T) {
		var before int

		require.NoError(t, store.conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM events`).Scan(&before))

		sub := &ingestion.EventSubmission{
			ProjectID: 999999999,
			Suites:    []ingestion.SuiteSubmission{{SuiteName: "smoke", Total: 1, Passed: 1}},
		}

		_, err := store.IngestEvent(ctx, sub)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrIngestFailed)

		var after int

		require.NoError(t, store.conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM events`).Scan(&after))
		assert.Equal(t, before, after)
	})

	t.Run("invalid case status rolls back the whole submission", func(t *testing.T) {
		projectName := uniqueName("rollback")

		sub := &ingestion.EventSubmission{
			ProjectName: projectName,
			Suites: []ingestion.SuiteSubmission{
				{SuiteName: "good", Total: 1, Passed: 1},
				{
					SuiteName: "bad",
					Total:     1,
					Failed:    1,
					Cases: []ingestion.CaseSubmission{
						// Violates the status CHECK constraint
						{CaseName: "broken", Status: ingestion.CaseStatus("exploded")},
					},
				},
			},
		}

		_, err := store.IngestEvent(ctx, sub)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrIngestFailed)

		// Nothing of the submission is visible, including the first suite
		var eventCount int

		err = store.conn.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM events e
			JOIN projects p ON p.id = e.project_id
			WHERE p.name = $1`,
			projectName,
		).Scan(&eventCount)
		require.NoError(t, err)
		assert.Zero(t, eventCount)
	})
}

func TestResultStore_PruneEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	store := setupResultStore(ctx, t)

	t.Run("keeps the newest events and cascades to runs and cases", func(t *testing.T) {
		projectName := uniqueName("retention")

		var projectID int64

		total := ingestion.EventRetentionLimit + 2
		for i := range total {
			sub := &ingestion.EventSubmission{
				ProjectName: projectName,
				EventName:   fmt.Sprintf("Run %d", i),
				Suites: []ingestion.SuiteSubmission{
					{
						SuiteName: "smoke",
						Total:     1,
						Passed:    1,
						Cases: []ingestion.CaseSubmission{
							{CaseName: "boot", Status: ingestion.CaseStatusPass},
						},
					},
				},
			}

			result, err := store.IngestEvent(ctx, sub)
			require.NoError(t, err)

			projectID = result.ProjectID
		}

		deleted, err := store.PruneEvents(ctx, projectID)
		require.NoError(t, err)
		assert.Equal(t, 2, deleted)

		var eventCount int

		err = store.conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM events WHERE project_id = $1`,
			projectID,
		).Scan(&eventCount)
		require.NoError(t, err)
		assert.Equal(t, ingestion.EventRetentionLimit, eventCount)

		// The survivors are the newest ones
		var oldestName string

		err = store.conn.QueryRowContext(ctx, `
			SELECT event_name FROM events
			WHERE project_id = $1
			ORDER BY created_at ASC, id ASC
			LIMIT 1`,
			projectID,
		).Scan(&oldestName)
		require.NoError(t, err)
		assert.Equal(t, "Run 2", oldestName)

		// Runs and cases of pruned events are gone with them
		var runCount, caseCount int

		err = store.conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM test_runs WHERE project_id = $1`,
			projectID,
		).Scan(&runCount)
		require.NoError(t, err)
		assert.Equal(t, ingestion.EventRetentionLimit, runCount)

		err = store.conn.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM test_cases c
			JOIN test_runs r ON r.id = c.run_id
			WHERE r.project_id = $1`,
			projectID,
		).Scan(&caseCount)
		require.NoError(t, err)
		assert.Equal(t, ingestion.EventRetentionLimit, caseCount)
	})

	t.Run("no-op at or below the ceiling", func(t *testing.T) {
		sub := &ingestion.EventSubmission{
			ProjectName: uniqueName("small"),
			Suites:      []ingestion.SuiteSubmission{{SuiteName: "smoke", Total: 1, Passed: 1}},
		}

		result, err := store.IngestEvent(ctx, sub)
		require.NoError(t, err)

		deleted, err := store.PruneEvents(ctx, result.ProjectID)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})

	t.Run("non-positive project id is a no-op", func(t *testing.T) {
		deleted, err := store.PruneEvents(ctx, 0)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}

func TestResultStore_CreateProject(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	store := setupResultStore(ctx, t)

	t.Run("registers a project with optional fields", func(t *testing.T) {
		name := uniqueName("explicit")

		projectID, err := store.CreateProject(ctx, &ingestion.ProjectRegistration{
			Name:        name,
			Description: "API test results",
			RepoURL:     "https://example.com/repo",
		})
		require.NoError(t, err)
		assert.Positive(t, projectID)

		var description, repoURL *string

		err = store.conn.QueryRowContext(ctx,
			`SELECT description, repo_url FROM projects WHERE id = $1`,
			projectID,
		).Scan(&description, &repoURL)
		require.NoError(t, err)
		require.NotNil(t, description)
		assert.Equal(t, "API test results", *description)
		require.NotNil(t, repoURL)
	})

	t.Run("empty optional fields are stored as NULL", func(t *testing.T) {
		projectID, err := store.CreateProject(ctx, &ingestion.ProjectRegistration{
			Name: uniqueName("bare"),
		})
		require.NoError(t, err)

		var description *string

		err = store.conn.QueryRowContext(ctx,
			`SELECT description FROM projects WHERE id = $1`,
			projectID,
		).Scan(&description)
		require.NoError(t, err)
		assert.Nil(t, description)
	})

	t.Run("duplicate name returns ErrDuplicateProject", func(t *testing.T) {
		name := uniqueName("dup")

		_, err := store.CreateProject(ctx, &ingestion.ProjectRegistration{Name: name})
		require.NoError(t, err)

		_, err = store.CreateProject(ctx, &ingestion.ProjectRegistration{Name: name})
		require.Error(t, err)
		assert.ErrorIs(t, err, ingestion.ErrDuplicateProject)
	})

	t.Run("missing name fails validation", func(t *testing.T) {
		_, err := store.CreateProject(ctx, &ingestion.ProjectRegistration{})
		require.Error(t, err)
		assert.ErrorIs(t, err, ingestion.ErrProjectNameRequired)
	})
}

func TestResultStore_HealthCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	store := setupResultStore(ctx, t)

	assert.NoError(t, store.HealthCheck(ctx))
}
