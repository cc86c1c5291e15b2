package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cocofhu/mcp-adapter-console/validation"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var validLogLevels = []string{"trace", "debug", "info", "warn", "error", "disabled"}

const maxRetries = 10

// Validate checks every section of cfg and returns the first problem found.
func Validate(cfg *Config) error {
	if err := validateApp(&cfg.App); err != nil {
		return fmt.Errorf("app config: %w", err)
	}
	if err := validateBackend(&cfg.Backend); err != nil {
		return fmt.Errorf("backend config: %w", err)
	}
	if err := validateLog(&cfg.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	if err := cfg.Observability.Validate(); err != nil {
		return fmt.Errorf("observability config: %w", err)
	}
	return nil
}

func validateApp(cfg *AppConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return NewMissingFieldError("app.name")
	}
	validEnvs := []string{EnvDevelopment, EnvStaging, EnvProduction}
	if !slices.Contains(validEnvs, cfg.Env) {
		return NewInvalidFieldError("app.env", fmt.Sprintf("unknown environment %q", cfg.Env), validEnvs)
	}
	return nil
}

// validateBackend checks the URL is an absolute http(s) URL and the
// transport tuning values are in range.
func validateBackend(cfg *BackendConfig) error {
	v := validation.New()

	if cfg.URL == "" {
		return NewMissingFieldError("backend.url")
	}
	if !v.IsURL(cfg.URL) || !(strings.HasPrefix(cfg.URL, "http://") || strings.HasPrefix(cfg.URL, "https://")) {
		return NewValidationError("backend.url", fmt.Sprintf("%q is not an absolute http(s) url", cfg.URL))
	}
	if cfg.Timeout <= 0 {
		return NewValidationError("backend.timeout", "must be positive")
	}
	if cfg.Retries < 0 || cfg.Retries > maxRetries {
		return NewValidationError("backend.retries", fmt.Sprintf("must be between 0 and %d", maxRetries))
	}
	if cfg.RetryDelay < 0 {
		return NewValidationError("backend.retrydelay", "must not be negative")
	}
	if cfg.RateLimit.RPS < 0 {
		return NewValidationError("backend.ratelimit.rps", "must not be negative")
	}
	if cfg.RateLimit.RPS > 0 && cfg.RateLimit.Burst < 1 {
		return NewValidationError("backend.ratelimit.burst", "must be at least 1 when rps is set")
	}
	for name := range cfg.Headers {
		if !v.IsHeaderName(name) {
			return NewValidationError("backend.headers", fmt.Sprintf("invalid header name %q", name))
		}
	}
	return nil
}

func validateLog(cfg *LogConfig) error {
	if !slices.Contains(validLogLevels, strings.ToLower(cfg.Level)) {
		return NewInvalidFieldError("log.level", fmt.Sprintf("unknown level %q", cfg.Level), validLogLevels)
	}
	return nil
}
