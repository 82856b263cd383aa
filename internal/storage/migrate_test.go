package storage

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsFS(t *testing.T) {
	entries, err := fs.ReadDir(MigrationsFS(), ".")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	// Every migration needs both directions or golang-migrate refuses to run
	assert.Contains(t, names, "001_init_schema.up.sql")
	assert.Contains(t, names, "001_init_schema.down.sql")
	assert.Contains(t, names, "002_add_event_id_to_test_runs.up.sql")
	assert.Contains(t, names, "002_add_event_id_to_test_runs.down.sql")
}
