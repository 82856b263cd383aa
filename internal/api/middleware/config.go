// Package middleware provides HTTP middleware components for the testdash API.
package middleware

import (
	"time"

	"github.com/testdash-io/testdash/internal/config"
)

// Config holds rate limiter configuration.
//
// Rate limits specify requests per second (RPS) for two tiers:
//   - Global: Applied to all requests
//   - Per-client: Applied per remote host
//
// Burst capacity allows temporary bursts above sustained rate.
// If burst fields are 0, they are computed automatically as 2 x rate.
type Config struct {
	// Rate limits (requests per second)
	GlobalRPS int // Default: 100
	ClientRPS int // Default: 20

	// Optional burst capacity overrides (0 = computed as 2 x rate)
	GlobalBurst int
	ClientBurst int

	// Memory cleanup configuration
	CleanupInterval time.Duration // Default: 5 minutes
	IdleTimeout     time.Duration // Default: 1 hour
	MaxClients      int           // Default: 10,000
}

// LoadConfig loads middleware config from environment variables with fallback to defaults.
//
// Default burst capacity: 2 x rate (allows 2-second burst)
// Default cleanup: every 5 minutes, removes clients idle >1 hour.
func LoadConfig() *Config {
	return &Config{
		GlobalRPS: config.GetEnvInt("TESTDASH_GLOBAL_RPS", defaultGlobalRPS),
		ClientRPS: config.GetEnvInt("TESTDASH_CLIENT_RPS", defaultClientRPS),

		// Burst overrides (0 = auto-compute)
		GlobalBurst: config.GetEnvInt("TESTDASH_GLOBAL_BURST", 0),
		ClientBurst: config.GetEnvInt("TESTDASH_CLIENT_BURST", 0),

		CleanupInterval: config.GetEnvDuration(
			"TESTDASH_RATE_LIMIT_CLEANUP_INTERVAL", rateLimiterCleanupInterval,
		),
		IdleTimeout: config.GetEnvDuration("TESTDASH_RATE_LIMIT_IDLE_TIMEOUT", rateLimiterIdleTimeout),
		MaxClients:  config.GetEnvInt("TESTDASH_RATE_LIMIT_MAX_CLIENTS", maxClients),
	}
}
