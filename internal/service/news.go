package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nimbusapi/nimbus/internal/cache"
	"github.com/nimbusapi/nimbus/internal/domain/news"
)

const (
	headlinesTTL = 15 * time.Minute
	searchTTL    = 10 * time.Minute

	headlinesCacheKey    = "news:headlines:v1:top"
	searchCacheKeyPrefix = "news:search:v1:q="
)

// Metrics is the slice of observability the services need. Nil is fine.
type Metrics interface {
	ObserveCacheLookup(class string, hit bool)
	ObserveUpstream(provider, op string, d time.Duration, err error)
}

// NewsFetcher is what the NewsAPI client implements.
type NewsFetcher interface {
	TopHeadlines(ctx context.Context) ([]news.Article, error)
	Everything(ctx context.Context, query string) ([]news.Article, error)
}

type NewsService struct {
	fetcher NewsFetcher
	cache   cache.Store
	metrics Metrics
}

func NewNewsService(fetcher NewsFetcher, store cache.Store, metrics Metrics) *NewsService {
	return &NewsService{
		fetcher: fetcher,
		cache:   store,
		metrics: metrics,
	}
}

func (s *NewsService) Headlines(ctx context.Context) (news.Response, error) {
	return s.cached(ctx, "news_headlines", "top_headlines", headlinesCacheKey, headlinesTTL, func() ([]news.Article, error) {
		return s.fetcher.TopHeadlines(ctx)
	})
}

func (s *NewsService) Search(ctx context.Context, query string) (news.Response, error) {
	key := searchCacheKeyPrefix + normalizeQuery(query)

	return s.cached(ctx, "news_search", "everything", key, searchTTL, func() ([]news.Article, error) {
		return s.fetcher.Everything(ctx, query)
	})
}

func (s *NewsService) cached(ctx context.Context, class, op, key string, ttl time.Duration, fetch func() ([]news.Article, error)) (news.Response, error) {
	if raw, ok := s.cache.Get(ctx, key); ok {
		var resp news.Response

		// a corrupt entry is just a miss
		if err := json.Unmarshal([]byte(raw), &resp); err == nil {
			s.observe(class, true)
			return resp, nil
		}
	}

	s.observe(class, false)

	start := time.Now()
	articles, err := fetch()

	if s.metrics != nil {
		s.metrics.ObserveUpstream("newsapi", op, time.Since(start), err)
	}

	if err != nil {
		return news.Response{}, err
	}

	resp := news.Response{
		Count:    len(articles),
		Articles: articles,
	}

	if raw, err := json.Marshal(resp); err == nil {
		s.cache.Set(ctx, key, string(raw), ttl)
	}

	return resp, nil
}

func (s *NewsService) observe(class string, hit bool) {
	if s.metrics != nil {
		s.metrics.ObserveCacheLookup(class, hit)
	}
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
