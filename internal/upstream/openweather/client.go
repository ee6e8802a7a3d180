package openweather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/nimbusapi/nimbus/internal/domain/weather"
	"github.com/nimbusapi/nimbus/internal/upstream"
)

const (
	defaultBaseURL = "https://api.openweathermap.org/data/2.5"
	dateLayout     = "Mon January 02 2006"
)

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

// wire shapes as OpenWeatherMap returns them

type apiConditions struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Dt int64 `json:"dt"`
}

type apiForecast struct {
	List []apiConditions `json:"list"`
}

// Current fetches the current conditions for a location.
func (c *Client) Current(ctx context.Context, location string) ([]weather.Data, error) {
	raw, err := c.fetch(ctx, "/weather", location)

	if err != nil {
		return nil, err
	}

	var body apiConditions

	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, upstream.ErrUnavailable
	}

	if len(body.Weather) == 0 {
		return nil, upstream.ErrUnavailable
	}

	return []weather.Data{{
		Date:        time.Now().Format(dateLayout),
		Main:        body.Weather[0].Main,
		Temp:        body.Main.Temp,
		Description: body.Weather[0].Description,
	}}, nil
}

// Forecast fetches the 3-hourly forecast and keeps the first entry per
// calendar day out of the first ten entries, roughly three to four days.
func (c *Client) Forecast(ctx context.Context, location string) ([]weather.Data, error) {
	raw, err := c.fetch(ctx, "/forecast", location)

	if err != nil {
		return nil, err
	}

	var body apiForecast

	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, upstream.ErrUnavailable
	}

	list := body.List
	if len(list) > 10 {
		list = list[:10]
	}

	seen := make(map[string]struct{}, len(list))
	out := make([]weather.Data, 0, len(list))

	for _, item := range list {
		if len(item.Weather) == 0 {
			continue
		}

		date := time.Unix(item.Dt, 0).Format(dateLayout)

		if _, ok := seen[date]; ok {
			continue
		}
		seen[date] = struct{}{}

		out = append(out, weather.Data{
			Date:        date,
			Main:        item.Weather[0].Main,
			Temp:        item.Main.Temp,
			Description: item.Weather[0].Description,
		})
	}

	return out, nil
}

func (c *Client) fetch(ctx context.Context, endpoint, location string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, upstream.ErrNotConfigured
	}

	params := url.Values{}
	params.Set("q", location)
	params.Set("units", "metric")
	params.Set("appid", c.apiKey)

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
	case resp.StatusCode == http.StatusNotFound:
		return nil, upstream.ErrLocationNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, upstream.ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, upstream.ErrUnavailable
	}

	var buf json.RawMessage

	if err := json.NewDecoder(resp.Body).Decode(&buf); err != nil {
		return nil, upstream.ErrUnavailable
	}

	return buf, nil
}
