package ingestion

import (
	"errors"
	"fmt"
)

// Sentinel errors for submission validation. Handlers map these to
// 400 Bad Request responses; none of them opens a transaction.
var (
	// ErrNoSuites is returned when a submission carries no suites at all.
	ErrNoSuites = errors.New("provide 'suites' array or 'suite_name, total, passed, failed'")

	// ErrSuiteIncomplete is returned when a suite is missing one of the
	// required fields (suite_name, total, passed, failed).
	ErrSuiteIncomplete = errors.New("each suite requires: suite_name, total, passed, failed")

	// ErrProjectNameRequired is returned when a project registration has
	// an empty name.
	ErrProjectNameRequired = errors.New("missing required field: name")
)

// Validate checks that the submission satisfies the presence requirements:
// at least one suite, each with a suite name. The numeric counters are
// presence-checked at the API boundary, where a missing JSON field is still
// distinguishable from zero.
//
// Deliberately no range validation beyond that: the service trusts its
// CI-facing callers and lets the store's CHECK constraints catch garbage.
func (e *EventSubmission) Validate() error {
	if len(e.Suites) == 0 {
		return ErrNoSuites
	}

	for i := range e.Suites {
		if e.Suites[i].SuiteName == "" {
			return fmt.Errorf("%w (suite %d)", ErrSuiteIncomplete, i)
		}
	}

	return nil
}

// Validate checks the presence requirement for an explicit registration.
func (p *ProjectRegistration) Validate() error {
	if p.Name == "" {
		return ErrProjectNameRequired
	}

	return nil
}
