// Package ingestion provides the domain model for test execution events.
//
// An event is one submission from a CI pipeline or client script and carries
// one or more suites, each with optional per-case detail. The API layer
// parses both accepted wire formats (a suites array or the flat legacy
// single-suite shape) into the canonical EventSubmission defined here before
// any business logic runs.
package ingestion

type (
	// EventSubmission is the canonical representation of one ingestion
	// request. Exactly one of ProjectID / ProjectName is normally set;
	// both may be absent, in which case the event is stored without an
	// owning project.
	//
	// This is a pure domain model without JSON tags. The API layer uses
	// ResultsRequest for JSON unmarshaling and maps to this type.
	EventSubmission struct {
		// ProjectID references an existing project when > 0. It is used
		// as-is, without an existence check; a stale id surfaces as a
		// foreign key violation at storage time.
		ProjectID int64

		// ProjectName, when ProjectID is unset, is resolved to a project
		// row via an atomic upsert (created if absent, reused otherwise).
		ProjectName string

		// EventName labels the submission (e.g. "Nightly E2E").
		// Empty means DefaultEventName.
		EventName string

		// Trigger records what started the run (e.g. "ci", "manual").
		// Empty means DefaultTrigger.
		Trigger string

		// Suites holds at least one suite result.
		Suites []SuiteSubmission
	}

	// SuiteSubmission is one named group of test cases reported together
	// within an event.
	SuiteSubmission struct {
		SuiteName string
		Total     int
		Passed    int
		Failed    int

		// Cases is optional per-case detail. May be empty.
		Cases []CaseSubmission
	}

	// CaseSubmission is one individual test result with outcome status and
	// optional timing/error detail. All fields except CaseName and Status
	// are optional and stored as NULL when empty.
	CaseSubmission struct {
		CaseID       string
		CaseName     string
		Description  string
		Module       string
		Type         CaseType
		Status       CaseStatus
		ErrorMessage string
		DurationMs   int
	}

	// CaseStatus is the outcome of a single test case.
	CaseStatus string

	// CaseType classifies a test case as exercising the happy path or an
	// error path.
	CaseType string

	// EventAggregate holds event-level counters computed as the arithmetic
	// sum of a submission's suites.
	EventAggregate struct {
		Total   int
		Passed  int
		Failed  int
		Skipped int
	}

	// IngestResult reports the identifiers created by one successful
	// ingestion call.
	IngestResult struct {
		// ProjectID is the resolved owning project, 0 when the event was
		// submitted without a project reference.
		ProjectID int64

		// EventID is the created event row.
		EventID int64

		// RunIDs holds one id per created suite run, in submission order.
		RunIDs []int64
	}

	// ProjectRegistration is an explicit project registration via
	// POST /api/projects.
	ProjectRegistration struct {
		Name        string
		Description string
		RepoURL     string
	}
)

// Case outcome statuses. The status column carries a matching CHECK
// constraint, so an invalid value is rejected at storage time as well.
const (
	CaseStatusPass CaseStatus = "pass"
	CaseStatusFail CaseStatus = "fail"
	CaseStatusSkip CaseStatus = "skip"
)

// Case types.
const (
	CaseTypePositive CaseType = "positive"
	CaseTypeNegative CaseType = "negative"
)

// Defaults applied when a submission omits the optional event metadata.
const (
	DefaultEventName = "Test Run"
	DefaultTrigger   = "manual"
)

// IsValid reports whether the status is one of pass, fail or skip.
func (s CaseStatus) IsValid() bool {
	return s == CaseStatusPass || s == CaseStatusFail || s == CaseStatusSkip
}

// IsValid reports whether the type is positive or negative. The empty
// string is not valid; absence is modeled as a NULL column instead.
func (t CaseType) IsValid() bool {
	return t == CaseTypePositive || t == CaseTypeNegative
}

// Name returns the event name with the default applied.
func (e *EventSubmission) Name() string {
	if e.EventName == "" {
		return DefaultEventName
	}

	return e.EventName
}

// TriggerOrDefault returns the trigger with the default applied.
func (e *EventSubmission) TriggerOrDefault() string {
	if e.Trigger == "" {
		return DefaultTrigger
	}

	return e.Trigger
}

// Aggregate computes the event-level counters as the sum of each suite's
// total/passed/failed. Skipped is derived, clamped at zero:
//
//	skipped = max(0, total - passed - failed)
func (e *EventSubmission) Aggregate() EventAggregate {
	var agg EventAggregate

	for _, suite := range e.Suites {
		agg.Total += suite.Total
		agg.Passed += suite.Passed
		agg.Failed += suite.Failed
	}

	agg.Skipped = agg.Total - agg.Passed - agg.Failed
	if agg.Skipped < 0 {
		agg.Skipped = 0
	}

	return agg
}
