package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSubmission_Validate(t *testing.T) {
	t.Run("valid multi-suite submission", func(t *testing.T) {
		sub := &EventSubmission{
			ProjectName: "my-api",
			Suites: []SuiteSubmission{
				{SuiteName: "auth", Total: 4, Passed: 3, Failed: 1},
				{SuiteName: "users", Total: 3, Passed: 3, Failed: 0},
			},
		}

		assert.NoError(t, sub.Validate())
	})

	t.Run("no suites", func(t *testing.T) {
		sub := &EventSubmission{ProjectName: "my-api"}

		err := sub.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoSuites)
	})

	t.Run("suite without a name", func(t *testing.T) {
		sub := &EventSubmission{
			ProjectName: "my-api",
			Suites: []SuiteSubmission{
				{SuiteName: "auth", Total: 1, Passed: 1},
				{Total: 1, Passed: 1},
			},
		}

		err := sub.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSuiteIncomplete)
		assert.Contains(t, err.Error(), "suite 1")
	})

	t.Run("no project reference is allowed", func(t *testing.T) {
		sub := &EventSubmission{
			Suites: []SuiteSubmission{
				{SuiteName: "smoke", Total: 1, Passed: 1},
			},
		}

		assert.NoError(t, sub.Validate())
	})
}

func TestProjectRegistration_Validate(t *testing.T) {
	t.Run("name present", func(t *testing.T) {
		reg := &ProjectRegistration{Name: "my-api", Description: "API tests"}

		assert.NoError(t, reg.Validate())
	})

	t.Run("name missing", func(t *testing.T) {
		reg := &ProjectRegistration{Description: "no name"}

		err := reg.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrProjectNameRequired)
	})
}
