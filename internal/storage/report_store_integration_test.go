package storage

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testdash-io/testdash/internal/ingestion"
	"github.com/testdash-io/testdash/internal/reporting"
)

// ingestSample stores one event with the given suites and returns the result.
func ingestSample(
	ctx context.Context,
	t *testing.T,
	store *ResultStore,
	projectName, eventName string,
	suites ...ingestion.SuiteSubmission,
) *ingestion.IngestResult {
	t.Helper()

	result, err := store.IngestEvent(ctx, &ingestion.EventSubmission{
		ProjectName: projectName,
		EventName:   eventName,
		Trigger:     "ci",
		Suites:      suites,
	})
	require.NoError(t, err)

	return result
}

func TestReportStore_Projects(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	store := setupResultStore(ctx, t)

	nameA := "aaa-" + uniqueName("list")
	nameB := "zzz-" + uniqueName("list")

	ingestSample(ctx, t, store, nameB, "Run 1",
		ingestion.SuiteSubmission{SuiteName: "smoke", Total: 3, Passed: 2, Failed: 1})
	ingestSample(ctx, t, store, nameB, "Run 2",
		ingestion.SuiteSubmission{SuiteName: "smoke", Total: 4, Passed: 4})

	_, err := store.CreateProject(ctx, &ingestion.ProjectRegistration{Name: nameA})
	require.NoError(t, err)

	t.Run("projects are sorted by name", func(t *testing.T) {
		projects, err := store.ListProjects(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(projects), 2)

		names := make([]string, 0, len(projects))
		for _, p := range projects {
			names = append(names, p.Name)
		}

		assert.True(t, sort.StringsAreSorted(names), "projects not sorted by name: %v", names)
		assert.Contains(t, names, nameA)
		assert.Contains(t, names, nameB)
	})

	t.Run("overview carries the latest event of each project", func(t *testing.T) {
		overviews, err := store.ProjectOverviews(ctx)
		require.NoError(t, err)

		byName := make(map[string]reporting.ProjectOverview, len(overviews))
		for _, o := range overviews {
			byName[o.Name] = o
		}

		withEvents, ok := byName[nameB]
		require.True(t, ok)
		require.NotNil(t, withEvents.LatestEventName)
		assert.Equal(t, "Run 2", *withEvents.LatestEventName)
		require.NotNil(t, withEvents.LatestTotal)
		assert.Equal(t, 4, *withEvents.LatestTotal)

		empty, ok := byName[nameA]
		require.True(t, ok)
		assert.Nil(t, empty.LatestEventID)
		assert.Nil(t, empty.LatestEventName)
	})
}

func TestReportStore_RunsAndCases(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	store := setupResultStore(ctx, t)

	projectName := uniqueName("runs")
	result := ingestSample(ctx, t, store, projectName, "Sanity Check",
		ingestion.SuiteSubmission{
			SuiteName: "auth",
			Total:     2,
			Passed:    1,
			Failed:    1,
			Cases: []ingestion.CaseSubmission{
				{CaseID: "1.2", CaseName: "Second", Status: ingestion.CaseStatusFail, ErrorMessage: "boom"},
				{CaseID: "1.1", CaseName: "First", Status: ingestion.CaseStatusPass},
			},
		},
		ingestion.SuiteSubmission{SuiteName: "users", Total: 1, Passed: 1},
	)

	otherResult := ingestSample(ctx, t, store, uniqueName("other"), "Other Run",
		ingestion.SuiteSubmission{SuiteName: "payments", Total: 1, Passed: 1})

	t.Run("runs are scoped by project", func(t *testing.T) {
		runs, err := store.ListRuns(ctx, reporting.RunFilter{ProjectID: result.ProjectID, Limit: 20})
		require.NoError(t, err)
		require.Len(t, runs, 2)

		for _, r := range runs {
			require.NotNil(t, r.ProjectName)
			assert.Equal(t, projectName, *r.ProjectName)
			require.NotNil(t, r.EventID)
			assert.Equal(t, result.EventID, *r.EventID)
		}
	})

	t.Run("unscoped listing is newest-first and capped", func(t *testing.T) {
		runs, err := store.ListRuns(ctx, reporting.RunFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, "payments", runs[0].SuiteName)
	})

	t.Run("cases of a run are ordered by case id", func(t *testing.T) {
		cases, err := store.CasesByRun(ctx, result.RunIDs[0])
		require.NoError(t, err)
		require.Len(t, cases, 2)

		assert.Equal(t, "First", cases[0].CaseName)
		assert.Equal(t, "Second", cases[1].CaseName)
		require.NotNil(t, cases[1].ErrorMessage)
		assert.Equal(t, "boom", *cases[1].ErrorMessage)
	})

	t.Run("run without cases yields an empty slice", func(t *testing.T) {
		cases, err := store.CasesByRun(ctx, otherResult.RunIDs[0])
		require.NoError(t, err)
		assert.Empty(t, cases)
	})
}

func TestReportStore_Events(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	store := setupResultStore(ctx, t)

	projectName := uniqueName("events")

	var projectID int64

	// One more than the retention ceiling; the listing must still cap at it
	total := ingestion.EventRetentionLimit + 1
	for i := range total {
		result := ingestSample(ctx, t, store, projectName, fmt.Sprintf("Run %d", i),
			ingestion.SuiteSubmission{SuiteName: "smoke", Total: 1, Passed: 1})

		projectID = result.ProjectID
	}

	t.Run("listing is newest-first and capped at the retention ceiling", func(t *testing.T) {
		events, err := store.ListEvents(ctx, projectID)
		require.NoError(t, err)
		require.Len(t, events, ingestion.EventRetentionLimit)

		assert.Equal(t, fmt.Sprintf("Run %d", total-1), events[0].EventName)

		for _, e := range events {
			require.NotNil(t, e.ProjectName)
			assert.Equal(t, projectName, *e.ProjectName)
		}
	})

	t.Run("detail composes the event with its runs and cases", func(t *testing.T) {
		result := ingestSample(ctx, t, store, uniqueName("detail"), "Detailed Run",
			ingestion.SuiteSubmission{
				SuiteName: "auth",
				Total:     1,
				Passed:    1,
				Cases: []ingestion.CaseSubmission{
					{CaseID: "1.1", CaseName: "Login", Status: ingestion.CaseStatusPass},
				},
			},
			ingestion.SuiteSubmission{SuiteName: "users", Total: 1, Passed: 1},
		)

		detail, err := store.EventDetail(ctx, result.EventID)
		require.NoError(t, err)

		assert.Equal(t, "Detailed Run", detail.EventName)
		assert.Equal(t, 2, detail.Total)
		require.Len(t, detail.Runs, 2)
		assert.Equal(t, "auth", detail.Runs[0].SuiteName)

		require.Len(t, detail.Cases, 1)
		require.NotNil(t, detail.Cases[0].SuiteName)
		assert.Equal(t, "auth", *detail.Cases[0].SuiteName)
	})

	t.Run("unknown event id returns the not-found sentinel", func(t *testing.T) {
		_, err := store.EventDetail(ctx, 999999999)
		require.Error(t, err)
		assert.ErrorIs(t, err, reporting.ErrEventNotFound)
	})
}

func TestReportStore_SummaryAndSearch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	store := setupResultStore(ctx, t)

	result := ingestSample(ctx, t, store, uniqueName("summary"), "Run",
		ingestion.SuiteSubmission{
			SuiteName: "auth",
			Total:     4,
			Passed:    3,
			Failed:    1,
			Cases: []ingestion.CaseSubmission{
				{CaseName: "Login", Status: ingestion.CaseStatusPass},
				{CaseName: "Register", Status: ingestion.CaseStatusFail, ErrorMessage: "500"},
			},
		},
		ingestion.SuiteSubmission{
			SuiteName: "users",
			Total:     3,
			Passed:    3,
			Cases: []ingestion.CaseSubmission{
				{CaseName: "Profile", Status: ingestion.CaseStatusPass},
			},
		},
	)

	t.Run("project summary aggregates over suite runs", func(t *testing.T) {
		summary, err := store.Summary(ctx, result.ProjectID)
		require.NoError(t, err)

		assert.Equal(t, int64(2), summary.RunCount)
		assert.Equal(t, int64(7), summary.TotalTests)
		assert.Equal(t, int64(6), summary.TotalPassed)
		assert.Equal(t, int64(1), summary.TotalFailed)
	})

	t.Run("global summary includes every run", func(t *testing.T) {
		summary, err := store.Summary(ctx, 0)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, summary.RunCount, int64(2))
	})

	t.Run("search filters by status and project", func(t *testing.T) {
		cases, err := store.SearchCases(ctx, reporting.CaseFilter{
			Status:    string(ingestion.CaseStatusFail),
			ProjectID: result.ProjectID,
			Limit:     50,
		})
		require.NoError(t, err)
		require.Len(t, cases, 1)

		assert.Equal(t, "Register", cases[0].CaseName)
		require.NotNil(t, cases[0].SuiteName)
		assert.Equal(t, "auth", *cases[0].SuiteName)
		require.NotNil(t, cases[0].ProjectID)
		assert.Equal(t, result.ProjectID, *cases[0].ProjectID)
	})

	t.Run("search respects the limit", func(t *testing.T) {
		cases, err := store.SearchCases(ctx, reporting.CaseFilter{
			ProjectID: result.ProjectID,
			Limit:     2,
		})
		require.NoError(t, err)
		assert.Len(t, cases, 2)
	})

	t.Run("unknown status matches nothing", func(t *testing.T) {
		cases, err := store.SearchCases(ctx, reporting.CaseFilter{
			Status:    "exploded",
			ProjectID: result.ProjectID,
			Limit:     50,
		})
		require.NoError(t, err)
		assert.Empty(t, cases)
	})
}
