package main

import "time"

// Config holds server configuration loaded from environment variables.
type Config struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	RedisURL string `envconfig:"REDIS_URL"`

	// StoreBackend selects session storage: "redis" (default) or "memory"
	// for single-process development runs.
	StoreBackend string `envconfig:"STORE_BACKEND" default:"redis"`

	// IssuerURL is the identity provider base, e.g. https://auth.example.com.
	// Tenant paths are appended per request.
	IssuerURL string `envconfig:"ISSUER_URL" required:"true"`

	SessionTTL      time.Duration `envconfig:"SESSION_TTL" default:"1h"`
	ProviderTimeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"10s"`

	// IncludeSysClaims asks introspection for system claims alongside the
	// standard ones.
	IncludeSysClaims bool `envconfig:"INCLUDE_SYS_CLAIMS" default:"false"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogEnv   string `envconfig:"LOG_ENV" default:"development"`

	ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout      time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout       time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
}
