package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventSubmission_Aggregate(t *testing.T) {
	tests := []struct {
		name     string
		suites   []SuiteSubmission
		expected EventAggregate
	}{
		{
			name: "single suite sums pass through",
			suites: []SuiteSubmission{
				{SuiteName: "auth", Total: 4, Passed: 3, Failed: 1},
			},
			expected: EventAggregate{Total: 4, Passed: 3, Failed: 1, Skipped: 0},
		},
		{
			name: "multiple suites are summed",
			suites: []SuiteSubmission{
				{SuiteName: "auth", Total: 4, Passed: 3, Failed: 1},
				{SuiteName: "users", Total: 3, Passed: 3, Failed: 0},
			},
			expected: EventAggregate{Total: 7, Passed: 6, Failed: 1, Skipped: 0},
		},
		{
			name: "skipped derived from the gap",
			suites: []SuiteSubmission{
				{SuiteName: "smoke", Total: 10, Passed: 6, Failed: 2},
			},
			expected: EventAggregate{Total: 10, Passed: 6, Failed: 2, Skipped: 2},
		},
		{
			name: "skipped clamps at zero when counters overlap",
			suites: []SuiteSubmission{
				{SuiteName: "smoke", Total: 2, Passed: 2, Failed: 1},
			},
			expected: EventAggregate{Total: 2, Passed: 2, Failed: 1, Skipped: 0},
		},
		{
			name:     "no suites yields zero aggregate",
			suites:   nil,
			expected: EventAggregate{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &EventSubmission{Suites: tt.suites}

			assert.Equal(t, tt.expected, sub.Aggregate())
		})
	}
}

func TestEventSubmission_Defaults(t *testing.T) {
	t.Run("empty name and trigger fall back to defaults", func(t *testing.T) {
		sub := &EventSubmission{}

		assert.Equal(t, DefaultEventName, sub.Name())
		assert.Equal(t, DefaultTrigger, sub.TriggerOrDefault())
	})

	t.Run("explicit values are kept", func(t *testing.T) {
		sub := &EventSubmission{EventName: "Nightly E2E", Trigger: "ci"}

		assert.Equal(t, "Nightly E2E", sub.Name())
		assert.Equal(t, "ci", sub.TriggerOrDefault())
	})
}

func TestCaseStatus_IsValid(t *testing.T) {
	assert.True(t, CaseStatusPass.IsValid())
	assert.True(t, CaseStatusFail.IsValid())
	assert.True(t, CaseStatusSkip.IsValid())

	assert.False(t, CaseStatus("").IsValid())
	assert.False(t, CaseStatus("passed").IsValid())
	assert.False(t, CaseStatus("PASS").IsValid())
}

func TestCaseType_IsValid(t *testing.T) {
	assert.True(t, CaseTypePositive.IsValid())
	assert.True(t, CaseTypeNegative.IsValid())

	assert.False(t, CaseType("").IsValid())
	assert.False(t, CaseType("neutral").IsValid())
}
