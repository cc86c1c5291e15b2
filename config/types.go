package config

import (
	"time"

	"github.com/knadh/koanf/v2"

	"github.com/cocofhu/mcp-adapter-console/observability"
)

// Config is the console's configuration. The koanf instance it was loaded
// from is kept for raw key access.
type Config struct {
	App     AppConfig     `koanf:"app" json:"app" yaml:"app"`
	Backend BackendConfig `koanf:"backend" json:"backend" yaml:"backend"`
	Log     LogConfig     `koanf:"log" json:"log" yaml:"log"`

	// Observability controls span export of backend calls
	Observability observability.Config `koanf:"observability" json:"observability" yaml:"observability"`

	k *koanf.Koanf `json:"-" yaml:"-"`
}

// AppConfig holds general settings.
type AppConfig struct {
	Name string `koanf:"name" json:"name" yaml:"name"`
	Env  string `koanf:"env" json:"env" yaml:"env"`
}

// BackendConfig describes how to reach the adapter backend.
type BackendConfig struct {
	// URL is the base of the REST API, e.g. http://localhost:8080/api
	URL        string          `koanf:"url" json:"url" yaml:"url"`
	Timeout    time.Duration   `koanf:"timeout" json:"timeout" yaml:"timeout"`
	Retries    int             `koanf:"retries" json:"retries" yaml:"retries"`
	RetryDelay time.Duration   `koanf:"retrydelay" json:"retrydelay" yaml:"retrydelay"`
	RateLimit  RateLimitConfig `koanf:"ratelimit" json:"ratelimit" yaml:"ratelimit"`
	// Headers are sent with every backend request
	Headers map[string]string `koanf:"headers" json:"headers" yaml:"headers"`
}

// RateLimitConfig caps outgoing requests. An RPS of 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps" json:"rps" yaml:"rps"`
	Burst int     `koanf:"burst" json:"burst" yaml:"burst"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty"`
}
