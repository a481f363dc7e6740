package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Run("TTL overrides apply", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "5m")
		t.Setenv("REQUEST_TTL", "1h")

		cfg := FromEnv()
		assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
		assert.Equal(t, time.Hour, cfg.RequestTTL)
	})

	// Runs after the override subtest: an earlier call with env overrides
	// must not leak into a later call without them.
	t.Run("defaults are per call, not package state", func(t *testing.T) {
		cfg := FromEnv()
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
		assert.Equal(t, defaultSessionTTL, cfg.SessionTTL)
		assert.Equal(t, defaultRequestTTL, cfg.RequestTTL)
		assert.NotEmpty(t, cfg.JWTSigningKey)
	})

	t.Run("malformed TTL falls back to the default", func(t *testing.T) {
		t.Setenv("REQUEST_TTL", "tomorrow")

		cfg := FromEnv()
		assert.Equal(t, defaultRequestTTL, cfg.RequestTTL)
	})
}
