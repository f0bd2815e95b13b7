package config

import (
	"sync"

	"github.com/knadh/koanf/providers/file"
	"github.com/rs/zerolog"
)

// Source holds the current configuration and reloads it on demand.
//
// It implements httpclient.BaseURLSource: the client reads BaseURL on
// every request, so a reload that changes api.base_url drops the learned
// fallback base on the next call.
type Source struct {
	opts options

	mu  sync.RWMutex
	cfg *Config

	watchMu sync.Mutex
	watcher *file.File
}

// NewSource loads the configuration once and returns a Source serving it.
func NewSource(opts ...Option) (*Source, error) {
	o := newOptions(opts...)
	cfg, err := load(o)
	if err != nil {
		return nil, err
	}
	return &Source{opts: o, cfg: cfg}, nil
}

// Config returns a copy of the current configuration.
func (s *Source) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.cfg
}

// BaseURL returns the configured api.base_url.
func (s *Source) BaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.API.BaseURL
}

// Reload re-reads every provider. On error the current configuration is
// kept.
func (s *Source) Reload() error {
	cfg, err := load(s.opts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// Watch reloads the configuration whenever the YAML file changes. Failed
// reloads are logged and leave the current configuration in place. It is
// a no-op without a file.
func (s *Source) Watch(logger zerolog.Logger) error {
	if s.opts.file == "" {
		return nil
	}

	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watcher != nil {
		return nil
	}

	w := file.Provider(s.opts.file)
	err := w.Watch(func(_ any, err error) {
		if err != nil {
			logger.Warn().Err(err).Str("file", s.opts.file).Msg("config watch failed")
			return
		}
		if err := s.Reload(); err != nil {
			logger.Warn().Err(err).Str("file", s.opts.file).Msg("config reload failed")
			return
		}
		logger.Info().Str("file", s.opts.file).Str("base_url", s.BaseURL()).Msg("config reloaded")
	})
	if err != nil {
		return err
	}
	s.watcher = w
	return nil
}

// Close stops watching the file.
func (s *Source) Close() error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Unwatch()
	s.watcher = nil
	return err
}
