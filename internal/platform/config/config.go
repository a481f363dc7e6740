package config

import (
	"os"
	"time"

	"attesta/pkg/secrets"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	BaseURL       string
	Environment   string
	JWTSigningKey string
	SessionTTL    time.Duration
	RequestTTL    time.Duration
}

// Default lifetimes; overridable via environment.
const (
	defaultSessionTTL = 30 * time.Minute
	defaultRequestTTL = 24 * time.Hour // verification requests expire after a day
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("ATTESTA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// BaseURL is embedded in every issued QR payload; verifiers resolve
	// redemption URLs against it.
	baseURL := os.Getenv("ATTESTA_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	env := os.Getenv("ATTESTA_ENV")
	if env == "" {
		env = "development"
	}

	sessionTTL := defaultSessionTTL
	if ttlStr := os.Getenv("SESSION_TTL"); ttlStr != "" {
		if duration, err := time.ParseDuration(ttlStr); err == nil {
			sessionTTL = duration
		}
	}
	requestTTL := defaultRequestTTL
	if ttlStr := os.Getenv("REQUEST_TTL"); ttlStr != "" {
		if duration, err := time.ParseDuration(ttlStr); err == nil {
			requestTTL = duration
		}
	}

	// Without an explicit key, sessions use an ephemeral one and do not
	// survive a restart. Production must set JWT_SIGNING_KEY.
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		generated, err := secrets.Generate()
		if err != nil {
			generated = "dev-only-insecure-signing-key"
		}
		jwtSigningKey = generated
	}

	return Server{
		Addr:          addr,
		BaseURL:       baseURL,
		Environment:   env,
		JWTSigningKey: jwtSigningKey,
		SessionTTL:    sessionTTL,
		RequestTTL:    requestTTL,
	}
}
