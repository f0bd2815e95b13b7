// Package newsapi provides typed callers for the newsdesk backend on top
// of httpclient.
//
// Every call is a thin pass-through: it picks the path, method and body
// and leaves retries, fallback and errors to the client. The article feed
// is the exception. It is fetched with AllowOffline and, when the backend
// is unreachable, falls back to the last list fetched for the same query.
//
//	api := newsapi.New(client)
//	feed, err := api.Articles.List(ctx, newsapi.ListParams{Category: "tech"})
//	if err != nil {
//	    return err
//	}
//	if feed.Offline {
//	    fmt.Println("showing cached articles:", feed.Message)
//	}
package newsapi

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kroma-labs/newsdesk-go/httpclient"
	"github.com/rs/zerolog"
)

// DefaultFeedTTL is how long a fetched article list may be served while
// offline.
const DefaultFeedTTL = 10 * time.Minute

var validate = validator.New(validator.WithRequiredStructEnabled())

// API groups the backend callers.
type API struct {
	Articles *ArticlesService
	AI       *AIService
	Users    *UsersService
}

type apiConfig struct {
	feedTTL     time.Duration
	feedRetries int
	logger      zerolog.Logger
}

// Option configures New.
type Option func(*apiConfig)

// WithFeedTTL sets how long an article list stays usable as offline
// fallback. Zero keeps entries until the process exits.
func WithFeedTTL(ttl time.Duration) Option {
	return func(c *apiConfig) {
		c.feedTTL = ttl
	}
}

// WithFeedRetries overrides the client retry count for Articles.List.
func WithFeedRetries(n int) Option {
	return func(c *apiConfig) {
		c.feedRetries = n
	}
}

// WithLogger sets the logger used to report offline fallbacks.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *apiConfig) {
		c.logger = logger
	}
}

// New builds the callers on client.
func New(client *httpclient.Client, opts ...Option) *API {
	cfg := apiConfig{
		feedTTL:     DefaultFeedTTL,
		feedRetries: -1,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &API{
		Articles: &ArticlesService{
			client:  client,
			cache:   newFeedCache(cfg.feedTTL),
			retries: cfg.feedRetries,
			logger:  cfg.logger,
		},
		AI:    &AIService{client: client},
		Users: &UsersService{client: client},
	}
}

func validateParams(v any) error {
	if err := validate.Struct(v); err != nil {
		return &httpclient.ValidationError{Err: err}
	}
	return nil
}
