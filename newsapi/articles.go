package newsapi

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/kroma-labs/newsdesk-go/httpclient"
	"github.com/rs/zerolog"
)

var errEmptyID = errors.New("article id is required")

// ArticlesService calls /articles.
type ArticlesService struct {
	client  *httpclient.Client
	cache   *feedCache
	retries int // -1 keeps the client default
	logger  zerolog.Logger
}

// List fetches the article feed.
//
// A network failure is not an error here: the returned Feed has Offline
// set and, when a list for the same params was fetched within the cache
// TTL, carries that list with Stale set. HTTP errors are returned as is.
func (s *ArticlesService) List(ctx context.Context, params ListParams) (*Feed, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	query := params.values()
	key := query.Encode()

	var articles []Article
	rb := s.client.Request("ListArticles").
		Decode(&articles).
		AllowOffline()
	for k := range query {
		rb.Query(k, query.Get(k))
	}
	if s.retries >= 0 {
		rb.Retries(s.retries)
	}

	res, err := rb.Get(ctx, "/articles")
	if err != nil {
		return nil, err
	}

	if res.NetworkError {
		feed := &Feed{Offline: true, Message: res.Message}
		if cached, ok := s.cache.get(key); ok {
			feed.Articles = cached.articles
			feed.FetchedAt = cached.fetchedAt
			feed.Stale = true
		}
		s.logger.Warn().
			Str("query", key).
			Bool("cached", feed.Stale).
			Str("reason", res.Message).
			Msg("article feed offline")
		return feed, nil
	}

	fetchedAt := s.cache.put(key, articles)
	return &Feed{Articles: articles, FetchedAt: fetchedAt}, nil
}

// Get fetches one article by id.
func (s *ArticlesService) Get(ctx context.Context, id string) (*Article, error) {
	if id == "" {
		return nil, &httpclient.ValidationError{Err: errEmptyID}
	}

	var article Article
	_, err := s.client.Request("GetArticle").
		Path("/articles/{id}").
		PathParam("id", id).
		Decode(&article).
		Get(ctx)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	if p.Category != "" {
		v.Set("category", p.Category)
	}
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	return v
}
