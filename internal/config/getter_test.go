package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvStr(t *testing.T) {
	t.Setenv("TESTDASH_TEST_STR", "hello")

	assert.Equal(t, "hello", GetEnvStr("TESTDASH_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", GetEnvStr("TESTDASH_TEST_STR_MISSING", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TESTDASH_TEST_INT", "42")
	t.Setenv("TESTDASH_TEST_INT_BAD", "not-a-number")

	assert.Equal(t, 42, GetEnvInt("TESTDASH_TEST_INT", 7))
	assert.Equal(t, 7, GetEnvInt("TESTDASH_TEST_INT_BAD", 7))
	assert.Equal(t, 7, GetEnvInt("TESTDASH_TEST_INT_MISSING", 7))
}

func TestGetEnvInt64(t *testing.T) {
	t.Setenv("TESTDASH_TEST_INT64", "1048576")

	assert.Equal(t, int64(1048576), GetEnvInt64("TESTDASH_TEST_INT64", 1))
	assert.Equal(t, int64(1), GetEnvInt64("TESTDASH_TEST_INT64_MISSING", 1))
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"1", true},
		{"YES", true},
		{"false", false},
		{"0", false},
		{"No", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TESTDASH_TEST_BOOL", tt.value)

			assert.Equal(t, tt.expected, GetEnvBool("TESTDASH_TEST_BOOL", !tt.expected))
		})
	}

	t.Run("garbage falls back to default", func(t *testing.T) {
		t.Setenv("TESTDASH_TEST_BOOL", "maybe")

		assert.True(t, GetEnvBool("TESTDASH_TEST_BOOL", true))
	})
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TESTDASH_TEST_DURATION", "45s")
	t.Setenv("TESTDASH_TEST_DURATION_BAD", "soon")

	assert.Equal(t, 45*time.Second, GetEnvDuration("TESTDASH_TEST_DURATION", time.Minute))
	assert.Equal(t, time.Minute, GetEnvDuration("TESTDASH_TEST_DURATION_BAD", time.Minute))
}

func TestGetEnvLogLevel(t *testing.T) {
	tests := []struct {
		value    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TESTDASH_TEST_LOG_LEVEL", tt.value)

			assert.Equal(t, tt.expected, GetEnvLogLevel("TESTDASH_TEST_LOG_LEVEL", slog.LevelInfo))
		})
	}

	t.Run("unknown level falls back to default", func(t *testing.T) {
		t.Setenv("TESTDASH_TEST_LOG_LEVEL", "verbose")

		assert.Equal(t, slog.LevelWarn, GetEnvLogLevel("TESTDASH_TEST_LOG_LEVEL", slog.LevelWarn))
	})
}

func TestParseCommaSeparatedList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, ParseCommaSeparatedList("a, b ,c"))
	assert.Equal(t, []string{"a"}, ParseCommaSeparatedList("a,,"))
	assert.Empty(t, ParseCommaSeparatedList(""))
}
