// Package config loads the newsdesk configuration from defaults, an
// optional YAML file and NEWSDESK_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read by Load.
// NEWSDESK_API_BASE_URL sets api.base_url.
const EnvPrefix = "NEWSDESK_"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Option configures Load and NewSource.
type Option func(*options)

type options struct {
	file    string
	environ func() []string
}

// WithFile reads a YAML file between the defaults and the environment.
// A missing file is an error.
func WithFile(path string) Option {
	return func(o *options) {
		o.file = path
	}
}

// WithEnviron replaces os.Environ as the source of environment variables.
func WithEnviron(fn func() []string) Option {
	return func(o *options) {
		o.environ = fn
	}
}

func newOptions(opts ...Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. YAML configuration file, when given
// 3. Default values (lowest priority)
func Load(opts ...Option) (*Config, error) {
	return load(newOptions(opts...))
}

func load(o options) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if o.file != "" {
		if err := k.Load(file.Provider(o.file), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", o.file, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
		EnvironFunc:   o.environ,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// envKey maps NEWSDESK_API_BASE_URL to api.base_url: the first segment is
// the section, the rest is the key.
func envKey(k, v string) (string, any) {
	k = strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
	section, key, found := strings.Cut(k, "_")
	if !found {
		return k, v
	}
	return section + "." + key, v
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"api.base_url":       "http://localhost:4000",
		"api.timeout_ms":     15000,
		"api.retries":        0,
		"api.retry_delay_ms": 300,

		"app.debug": false,

		"log.level":  "info",
		"log.pretty": false,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	return validate.Struct(cfg)
}
