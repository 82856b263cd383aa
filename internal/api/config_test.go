package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerConfig_Validate(t *testing.T) {
	valid := newTestConfig()

	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	tests := []struct {
		name     string
		mutate   func(c *ServerConfig)
		expected error
	}{
		{"zero port", func(c *ServerConfig) { c.Port = 0 }, ErrInvalidPort},
		{"port above range", func(c *ServerConfig) { c.Port = 70000 }, ErrInvalidPort},
		{"empty host", func(c *ServerConfig) { c.Host = "" }, ErrEmptyHost},
		{"zero read timeout", func(c *ServerConfig) { c.ReadTimeout = 0 }, ErrInvalidReadTimeout},
		{"negative write timeout", func(c *ServerConfig) { c.WriteTimeout = -time.Second }, ErrInvalidWriteTimeout},
		{"zero shutdown timeout", func(c *ServerConfig) { c.ShutdownTimeout = 0 }, ErrInvalidShutdownTimeout},
		{"zero max request size", func(c *ServerConfig) { c.MaxRequestSize = 0 }, ErrInvalidMaxRequestSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *newTestConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestServerConfig_Address(t *testing.T) {
	cfg := &ServerConfig{Host: "0.0.0.0", Port: 3000}

	assert.Equal(t, "0.0.0.0:3000", cfg.Address())
}

func TestLoadServerConfig_Defaults(t *testing.T) {
	cfg := LoadServerConfig()

	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, defaultHost, cfg.Host)
	assert.Equal(t, defaultMaxRequestSize, cfg.MaxRequestSize)
	assert.Equal(t, defaultStaticDir, cfg.StaticDir)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit("", 20, 100))
	assert.Equal(t, 50, clampLimit("50", 20, 100))
	assert.Equal(t, 100, clampLimit("500", 20, 100))
	assert.Equal(t, 20, clampLimit("abc", 20, 100))
	assert.Equal(t, 20, clampLimit("-3", 20, 100))
	assert.Equal(t, 20, clampLimit("0", 20, 100))
}

func TestParseQueryID(t *testing.T) {
	assert.Equal(t, int64(0), parseQueryID(""))
	assert.Equal(t, int64(7), parseQueryID("7"))
	assert.Equal(t, int64(0), parseQueryID("abc"))
	assert.Equal(t, int64(0), parseQueryID("-1"))
}
