package newsapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nimbusapi/nimbus/internal/upstream"
	"github.com/nimbusapi/nimbus/internal/upstream/newsapi"
)

const sampleHeadlines = `{
	"status": "ok",
	"articles": [
		{"source": {"name": "BBC"}, "title": "First", "description": "d", "url": "https://example.com/1", "publishedAt": "2024-01-01T00:00:00Z"},
		{"source": {"name": ""}, "title": "Second", "url": "https://example.com/2", "publishedAt": "2024-01-01T01:00:00Z"},
		{"source": {"name": "CNN"}, "title": "", "url": "https://example.com/3"},
		{"source": {"name": "CNN"}, "title": "No URL", "url": ""}
	]
}`

func TestTopHeadlines_MapsAndSkipsInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/top-headlines" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		if r.URL.Query().Get("apiKey") != "k" {
			t.Errorf("missing apiKey param")
		}

		if r.URL.Query().Get("country") != "us" {
			t.Errorf("missing country param")
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleHeadlines))
	}))
	defer srv.Close()

	client := newsapi.NewWithBaseURL("k", srv.URL)

	articles, err := client.TopHeadlines(context.Background())

	if err != nil {
		t.Fatalf("TopHeadlines: %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2 (invalid entries skipped)", len(articles))
	}

	if articles[0].Source != "BBC" {
		t.Fatalf("source mapping broken: %+v", articles[0])
	}

	if articles[1].Source != "Unknown" {
		t.Fatalf("empty source should map to Unknown: %+v", articles[1])
	}
}

func TestEverything_SendsQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/everything" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		if got := r.URL.Query().Get("q"); got != "golang" {
			t.Errorf("q = %q, want golang", got)
		}

		if got := r.URL.Query().Get("sortBy"); got != "publishedAt" {
			t.Errorf("sortBy = %q, want publishedAt", got)
		}

		_, _ = w.Write([]byte(`{"status":"ok","articles":[]}`))
	}))
	defer srv.Close()

	client := newsapi.NewWithBaseURL("k", srv.URL)

	articles, err := client.Everything(context.Background(), "golang")

	if err != nil {
		t.Fatalf("Everything: %v", err)
	}

	if len(articles) != 0 {
		t.Fatalf("got %d articles, want 0", len(articles))
	}
}

func TestFetch_NoAPIKey(t *testing.T) {
	client := newsapi.New("")

	_, err := client.TopHeadlines(context.Background())

	if !errors.Is(err, upstream.ErrNotConfigured) {
		t.Fatalf("got %v, want ErrNotConfigured", err)
	}
}

func TestFetch_UpstreamStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, upstream.ErrRateLimited},
		{"server error", http.StatusInternalServerError, upstream.ErrUnavailable},
		{"unauthorized", http.StatusUnauthorized, upstream.ErrUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			client := newsapi.NewWithBaseURL("k", srv.URL)

			_, err := client.TopHeadlines(context.Background())

			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}
