package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nimbusapi/nimbus/internal/auth"
	"github.com/nimbusapi/nimbus/internal/config"
	"github.com/nimbusapi/nimbus/internal/http/handlers"
	"github.com/nimbusapi/nimbus/internal/http/middlewares"
	"github.com/nimbusapi/nimbus/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	apiName    = "News & Weather API"
	apiVersion = "1.0.0"

	maxBodyBytes = 1 << 20 // 1 MiB
)

// Deps carries everything the router wires together. Constructed in main,
// faked in tests.
type Deps struct {
	Log     *slog.Logger
	Cfg     config.Config
	JWT     *auth.Manager
	Users   handlers.UserRepo
	News    handlers.NewsProvider
	Weather handlers.WeatherProvider
	Prom    *observability.Prom
	Pings   map[string]func() error
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("nimbus-api"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.ProcessTime())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{})))
	}

	// Rate limiting is attached per route rather than globally so the
	// user-keyed variant runs after RequireAuth has resolved the caller.
	limiter := middlewares.NewRateLimiter(d.Cfg.RateLimitRequests, d.Cfg.RateLimitWindow())
	limitByIP := limiter.RateLimiterMiddleware(middlewares.KeyByIP)
	limitByUser := limiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP)

	authMW := middlewares.NewAuthMiddleware(d.JWT)

	// wire up handlers
	healthHandler := handlers.NewHealthHandler(d.Pings)
	authHandler := handlers.NewAuthHandler(d.Users, d.Users, d.JWT)
	newsHandler := handlers.NewNewsHandler(d.News)
	weatherHandler := handlers.NewWeatherHandler(d.Weather)

	r.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"message": "Welcome to " + apiName,
			"version": apiVersion,
			"health":  "/health",
		})
	})
	r.GET("/health", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)

	api := r.Group("/api")

	api.POST("/signup", limitByIP, authHandler.SignUp)
	api.POST("/login", limitByIP, authHandler.Login)
	api.POST("/logout", authMW.RequireAuth(), limitByUser, authHandler.Logout)
	api.GET("/me", authMW.RequireAuth(), limitByUser, authHandler.Me)

	api.GET("/news", authMW.RequireAuth(), limitByUser, newsHandler.GetNews)
	api.GET("/weather", limitByIP, weatherHandler.GetWeather)

	return r
}
