package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nimbusapi/nimbus/internal/cache"
	"github.com/nimbusapi/nimbus/internal/domain/weather"
	"github.com/nimbusapi/nimbus/internal/service"
	"github.com/nimbusapi/nimbus/internal/upstream"
)

type fakeWeatherProvider struct {
	currentCalls  int
	forecastCalls int
	err           error
}

func (f *fakeWeatherProvider) Current(context.Context, string) ([]weather.Data, error) {
	f.currentCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []weather.Data{{Date: "Mon January 01 2024", Main: "Clear", Temp: 21.5}}, nil
}

func (f *fakeWeatherProvider) Forecast(context.Context, string) ([]weather.Data, error) {
	f.forecastCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []weather.Data{
		{Date: "Mon January 01 2024", Main: "Clear", Temp: 21.5},
		{Date: "Tue January 02 2024", Main: "Rain", Temp: 17.0},
	}, nil
}

func TestCurrent_ResponseShape(t *testing.T) {
	svc := service.NewWeatherService(&fakeWeatherProvider{}, cache.NewMemoryStore(), nil)

	resp, err := svc.Current(context.Background(), "London")

	if err != nil {
		t.Fatalf("Current: %v", err)
	}

	if resp.Count != 1 || resp.Unit != "metric" || resp.Location != "London" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCurrentAndForecast_KeysDoNotCollide(t *testing.T) {
	ctx := context.Background()
	provider := &fakeWeatherProvider{}
	svc := service.NewWeatherService(provider, cache.NewMemoryStore(), nil)

	if _, err := svc.Current(ctx, "London"); err != nil {
		t.Fatalf("Current: %v", err)
	}

	if _, err := svc.Forecast(ctx, "London"); err != nil {
		t.Fatalf("Forecast: %v", err)
	}

	if provider.currentCalls != 1 || provider.forecastCalls != 1 {
		t.Fatalf("want one upstream call each, got current=%d forecast=%d",
			provider.currentCalls, provider.forecastCalls)
	}
}

func TestCurrent_LocationCaseSharesCacheEntry(t *testing.T) {
	ctx := context.Background()
	provider := &fakeWeatherProvider{}
	svc := service.NewWeatherService(provider, cache.NewMemoryStore(), nil)

	if _, err := svc.Current(ctx, "London"); err != nil {
		t.Fatalf("Current: %v", err)
	}

	if _, err := svc.Current(ctx, "LONDON"); err != nil {
		t.Fatalf("Current upper: %v", err)
	}

	if provider.currentCalls != 1 {
		t.Fatalf("location casing should share a cache entry, got %d calls", provider.currentCalls)
	}
}

func TestForecast_ErrorPropagates(t *testing.T) {
	provider := &fakeWeatherProvider{err: upstream.ErrLocationNotFound}
	svc := service.NewWeatherService(provider, cache.NewMemoryStore(), nil)

	_, err := svc.Forecast(context.Background(), "Nowhereville")

	if !errors.Is(err, upstream.ErrLocationNotFound) {
		t.Fatalf("got %v, want ErrLocationNotFound", err)
	}
}
