package observability

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nimbusapi/nimbus/internal/upstream"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// upstream providers (NewsAPI / OpenWeatherMap)
	UpstreamDuration *prometheus.HistogramVec
	UpstreamErrors   *prometheus.CounterVec

	// response cache
	CacheLookups *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nimbus",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "nimbus",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				// Sane initial defaults
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "nimbus",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "nimbus",
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Upstream provider call latency by provider and op.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"provider", "op", "status"}, // status=ok|error
		),
		UpstreamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nimbus",
				Subsystem: "upstream",
				Name:      "errors_total",
				Help:      "Upstream provider failures by provider and class.",
			},
			[]string{"provider", "class"}, // class=unavailable|rate_limited|not_found|not_configured
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nimbus",
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Response cache lookups by endpoint class and result.",
			},
			[]string{"class", "result"}, // result=hit|miss
		),
	}
	reg.MustRegister(p.RequestsTotal, p.RequestsDuration, p.InFlight, p.UpstreamDuration, p.UpstreamErrors, p.CacheLookups)

	return p
}

// ObserveCacheLookup satisfies the service layer's Metrics interface.
func (p *Prom) ObserveCacheLookup(class string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}

	p.CacheLookups.WithLabelValues(class, result).Inc()
}

// ObserveUpstream records latency of a provider call and, on failure, the
// failure class.
func (p *Prom) ObserveUpstream(provider, op string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		p.UpstreamErrors.WithLabelValues(provider, errorClass(err)).Inc()
	}

	p.UpstreamDuration.WithLabelValues(provider, op, status).Observe(d.Seconds())
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, upstream.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, upstream.ErrLocationNotFound):
		return "not_found"
	case errors.Is(err, upstream.ErrNotConfigured):
		return "not_configured"
	default:
		return "unavailable"
	}
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}
