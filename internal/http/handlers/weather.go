package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nimbusapi/nimbus/internal/domain/weather"
	"github.com/nimbusapi/nimbus/internal/upstream"
)

type WeatherProvider interface {
	Current(ctx context.Context, location string) (weather.Response, error)
	Forecast(ctx context.Context, location string) (weather.Response, error)
}

type WeatherHandler struct {
	svc WeatherProvider
}

func NewWeatherHandler(svc WeatherProvider) *WeatherHandler {
	return &WeatherHandler{svc: svc}
}

// GetWeather returns current conditions for ?location=, or the multi-day
// forecast when ?forecast=true.

func (h *WeatherHandler) GetWeather(ctx *gin.Context) {
	location := ctx.Query("location")

	if location == "" {
		RespondBadRequest(ctx, "Missing location query parameter", nil)
		return
	}

	forecast, parseErr := strconv.ParseBool(ctx.DefaultQuery("forecast", "false"))

	if parseErr != nil {
		RespondBadRequest(ctx, "Invalid forecast query parameter", nil)
		return
	}

	var (
		resp weather.Response
		err  error
	)

	if forecast {
		resp, err = h.svc.Forecast(ctx.Request.Context(), location)
	} else {
		resp, err = h.svc.Current(ctx.Request.Context(), location)
	}

	if err != nil {
		if errors.Is(err, upstream.ErrLocationNotFound) {
			RespondNotFound(ctx, "Location not found")
			return
		}

		respondUpstreamError(ctx, err, "Could not fetch weather data")
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// respondUpstreamError maps provider failures onto the gateway statuses.

func respondUpstreamError(ctx *gin.Context, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, upstream.ErrNotConfigured):
		RespondUnavailable(ctx, "provider_not_configured", "Upstream provider is not configured")
	case errors.Is(err, upstream.ErrRateLimited):
		RespondBadGateway(ctx, "upstream_rate_limited", "Upstream provider rate limit reached")
	case errors.Is(err, upstream.ErrUnavailable):
		RespondBadGateway(ctx, "upstream_unavailable", "Upstream provider is unavailable")
	default:
		RespondInternal(ctx, fallbackMsg)
	}
}
