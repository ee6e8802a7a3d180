package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nimbusapi/nimbus/internal/cache"
	"github.com/nimbusapi/nimbus/internal/domain/weather"
)

const (
	currentWeatherTTL = 10 * time.Minute
	forecastTTL       = 30 * time.Minute

	currentCacheKeyPrefix  = "weather:current:v1:loc="
	forecastCacheKeyPrefix = "weather:forecast:v1:loc="
)

// WeatherProvider is what the OpenWeatherMap client implements.
type WeatherProvider interface {
	Current(ctx context.Context, location string) ([]weather.Data, error)
	Forecast(ctx context.Context, location string) ([]weather.Data, error)
}

type WeatherService struct {
	provider WeatherProvider
	cache    cache.Store
	metrics  Metrics
}

func NewWeatherService(provider WeatherProvider, store cache.Store, metrics Metrics) *WeatherService {
	return &WeatherService{
		provider: provider,
		cache:    store,
		metrics:  metrics,
	}
}

func (s *WeatherService) Current(ctx context.Context, location string) (weather.Response, error) {
	key := currentCacheKeyPrefix + normalizeQuery(location)

	return s.cached(ctx, "weather_current", "current", key, currentWeatherTTL, location, func() ([]weather.Data, error) {
		return s.provider.Current(ctx, location)
	})
}

func (s *WeatherService) Forecast(ctx context.Context, location string) (weather.Response, error) {
	key := forecastCacheKeyPrefix + normalizeQuery(location)

	return s.cached(ctx, "weather_forecast", "forecast", key, forecastTTL, location, func() ([]weather.Data, error) {
		return s.provider.Forecast(ctx, location)
	})
}

func (s *WeatherService) cached(ctx context.Context, class, op, key string, ttl time.Duration, location string, fetch func() ([]weather.Data, error)) (weather.Response, error) {
	if raw, ok := s.cache.Get(ctx, key); ok {
		var resp weather.Response

		if err := json.Unmarshal([]byte(raw), &resp); err == nil {
			s.observe(class, true)
			return resp, nil
		}
	}

	s.observe(class, false)

	start := time.Now()
	data, err := fetch()

	if s.metrics != nil {
		s.metrics.ObserveUpstream("openweather", op, time.Since(start), err)
	}

	if err != nil {
		return weather.Response{}, err
	}

	resp := weather.Response{
		Count:    len(data),
		Unit:     "metric",
		Location: location,
		Data:     data,
	}

	if raw, err := json.Marshal(resp); err == nil {
		s.cache.Set(ctx, key, string(raw), ttl)
	}

	return resp, nil
}

func (s *WeatherService) observe(class string, hit bool) {
	if s.metrics != nil {
		s.metrics.ObserveCacheLookup(class, hit)
	}
}
