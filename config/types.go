package config

import (
	"time"

	"github.com/kroma-labs/newsdesk-go/httpclient"
)

// Config is the newsdesk client configuration.
type Config struct {
	API APIConfig `koanf:"api" yaml:"api"`
	App AppConfig `koanf:"app" yaml:"app"`
	Log LogConfig `koanf:"log" yaml:"log"`
}

// APIConfig holds the backend endpoint and the fetch policy defaults.
type APIConfig struct {
	// BaseURL is the configured base. http://localhost:4000 and
	// http://127.0.0.1:4000 enable the dev port sweep.
	BaseURL string `koanf:"base_url" yaml:"base_url" validate:"required,url"`

	TimeoutMS    int `koanf:"timeout_ms" yaml:"timeout_ms" validate:"gte=0"`
	Retries      int `koanf:"retries" yaml:"retries" validate:"gte=0,lte=10"`
	RetryDelayMS int `koanf:"retry_delay_ms" yaml:"retry_delay_ms" validate:"gte=0"`
}

// Timeout returns TimeoutMS as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// RetryDelay returns RetryDelayMS as a duration.
func (c APIConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

// AppConfig holds general application settings.
type AppConfig struct {
	// Debug turns on per-attempt client logging.
	Debug bool `koanf:"debug" yaml:"debug"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level" validate:"oneof=trace debug info warn error disabled"`
	Pretty bool   `koanf:"pretty" yaml:"pretty"`
}

// ClientConfig returns the httpclient transport settings with the request
// defaults taken from the API section.
func (c *Config) ClientConfig() httpclient.Config {
	hc := httpclient.DefaultConfig()
	hc.Timeout = c.API.Timeout()
	hc.Retries = c.API.Retries
	hc.RetryDelay = c.API.RetryDelay()
	return hc
}
