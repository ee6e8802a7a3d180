package openweather_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nimbusapi/nimbus/internal/upstream"
	"github.com/nimbusapi/nimbus/internal/upstream/openweather"
)

const sampleCurrent = `{
	"weather": [{"main": "Clouds", "description": "overcast clouds"}],
	"main": {"temp": 12.34},
	"dt": 1700000000
}`

func TestCurrent_MapsConditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		if got := r.URL.Query().Get("q"); got != "London" {
			t.Errorf("q = %q, want London", got)
		}

		if got := r.URL.Query().Get("units"); got != "metric" {
			t.Errorf("units = %q, want metric", got)
		}

		if got := r.URL.Query().Get("appid"); got != "k" {
			t.Errorf("appid = %q, want k", got)
		}

		_, _ = w.Write([]byte(sampleCurrent))
	}))
	defer srv.Close()

	client := openweather.NewWithBaseURL("k", srv.URL)

	data, err := client.Current(context.Background(), "London")

	if err != nil {
		t.Fatalf("Current: %v", err)
	}

	if len(data) != 1 {
		t.Fatalf("got %d entries, want 1", len(data))
	}

	if data[0].Main != "Clouds" || data[0].Temp != 12.34 {
		t.Fatalf("unexpected mapping: %+v", data[0])
	}
}

func TestForecast_OneEntryPerDay(t *testing.T) {
	// four 3-hourly entries across two days
	day1 := time.Date(2024, 1, 1, 6, 0, 0, 0, time.Local)
	entries := ""

	for i, ts := range []time.Time{
		day1,
		day1.Add(3 * time.Hour),
		day1.Add(24 * time.Hour),
		day1.Add(27 * time.Hour),
	} {
		if i > 0 {
			entries += ","
		}
		entries += fmt.Sprintf(
			`{"weather":[{"main":"Clear","description":"clear sky"}],"main":{"temp":%d},"dt":%d}`,
			10+i, ts.Unix(),
		)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		_, _ = w.Write([]byte(`{"list":[` + entries + `]}`))
	}))
	defer srv.Close()

	client := openweather.NewWithBaseURL("k", srv.URL)

	data, err := client.Forecast(context.Background(), "London")

	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}

	if len(data) != 2 {
		t.Fatalf("got %d entries, want 2 (one per day)", len(data))
	}

	// the first entry of each day wins
	if data[0].Temp != 10 || data[1].Temp != 12 {
		t.Fatalf("unexpected per-day picks: %+v", data)
	}
}

func TestFetch_LocationNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := openweather.NewWithBaseURL("k", srv.URL)

	_, err := client.Current(context.Background(), "Nowhereville")

	if !errors.Is(err, upstream.ErrLocationNotFound) {
		t.Fatalf("got %v, want ErrLocationNotFound", err)
	}
}

func TestFetch_NoAPIKey(t *testing.T) {
	client := openweather.New("")

	_, err := client.Current(context.Background(), "London")

	if !errors.Is(err, upstream.ErrNotConfigured) {
		t.Fatalf("got %v, want ErrNotConfigured", err)
	}
}
