package newsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/nimbusapi/nimbus/internal/domain/news"
	"github.com/nimbusapi/nimbus/internal/upstream"
)

const defaultBaseURL = "https://newsapi.org/v2"

type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// NewWithBaseURL is used by tests to point the client at a local server.
func NewWithBaseURL(apiKey, baseURL string) *Client {
	c := New(apiKey)
	c.baseURL = baseURL
	return c
}

// wire shapes as NewsAPI returns them

type apiResponse struct {
	Status   string       `json:"status"`
	Articles []apiArticle `json:"articles"`
}

type apiArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

func (c *Client) TopHeadlines(ctx context.Context) ([]news.Article, error) {
	params := url.Values{}
	params.Set("country", "us")
	params.Set("pageSize", "20")

	return c.fetch(ctx, "/top-headlines", params)
}

func (c *Client) Everything(ctx context.Context, query string) ([]news.Article, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", "20")

	return c.fetch(ctx, "/everything", params)
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) ([]news.Article, error) {
	if c.apiKey == "" {
		return nil, upstream.ErrNotConfigured
	}

	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)

	if err != nil {
		return nil, upstream.ErrUnavailable
	}

	resp, err := c.httpc.Do(req)

	if err != nil {
		return nil, upstream.ErrUnavailable
	}

	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, upstream.ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, upstream.ErrUnavailable
	}

	var body apiResponse

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, upstream.ErrUnavailable
	}

	return mapArticles(body.Articles), nil
}

func mapArticles(in []apiArticle) []news.Article {
	out := make([]news.Article, 0, len(in))

	for _, a := range in {
		// skip entries that cannot render as an article
		if a.Title == "" || a.URL == "" {
			continue
		}

		source := a.Source.Name
		if source == "" {
			source = "Unknown"
		}

		out = append(out, news.Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
			Source:      source,
		})
	}

	return out
}
