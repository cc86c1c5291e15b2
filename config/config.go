package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultFile is read when Load is called without a path; it may be absent.
	DefaultFile = "mcpconsole.yaml"
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "MCPCONSOLE_"
)

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. The YAML file at path, or DefaultFile when path is empty
// 3. Default values (lowest priority)
//
// An explicitly named file must exist; DefaultFile is optional.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	optional := path == ""
	if optional {
		path = DefaultFile
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !optional || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := loadEnv(k); err != nil {
		return nil, err
	}

	return finish(k)
}

// LoadBytes loads configuration from YAML held in memory, on top of the
// defaults and below the environment.
func LoadBytes(data []byte) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := loadEnv(k); err != nil {
		return nil, err
	}

	return finish(k)
}

func finish(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnv maps MCPCONSOLE_BACKEND_RATELIMIT_RPS to backend.ratelimit.rps.
func loadEnv(k *koanf.Koanf) error {
	provider := env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			return strings.ReplaceAll(key, "_", "."), value
		},
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name": "mcpconsole",
		"app.env":  EnvDevelopment,

		"backend.url":             "http://localhost:8080/api",
		"backend.timeout":         "30s",
		"backend.retries":         2,
		"backend.retrydelay":      "200ms",
		"backend.ratelimit.rps":   0,
		"backend.ratelimit.burst": 10,

		"log.level":  "info",
		"log.pretty": false,

		"observability.enabled":        false,
		"observability.service.name":   "mcpconsole",
		"observability.trace.endpoint": "stdout",
		"observability.trace.protocol": "http",
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
