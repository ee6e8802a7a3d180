package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nimbusapi/nimbus/internal/auth"
	"github.com/nimbusapi/nimbus/internal/cache"
	"github.com/nimbusapi/nimbus/internal/config"
	"github.com/nimbusapi/nimbus/internal/db"
	httpx "github.com/nimbusapi/nimbus/internal/http"
	"github.com/nimbusapi/nimbus/internal/http/handlers"
	"github.com/nimbusapi/nimbus/internal/observability"
	"github.com/nimbusapi/nimbus/internal/repo/memory"
	"github.com/nimbusapi/nimbus/internal/repo/postgres"
	"github.com/nimbusapi/nimbus/internal/service"
	"github.com/nimbusapi/nimbus/internal/upstream/newsapi"
	"github.com/nimbusapi/nimbus/internal/upstream/openweather"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// .env is optional, real deployments use the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// tracing (optional, needs a collector endpoint)
	var shutdownTracer func(context.Context) error

	if cfg.OtelEndpoint != "" {
		ctx, cancel := config.WithTimeout(5 * time.Second)
		sd, err := observability.InitTracer(ctx, "nimbus-api", cfg.OtelEndpoint)
		cancel()

		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			shutdownTracer = sd
		}
	}

	pings := map[string]func() error{}

	// users: postgres when configured, in-memory otherwise
	var users handlers.UserRepo

	if cfg.DBURL != "" {
		pool, err := db.NewPool(cfg.DBURL)

		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}

		defer pool.Close()

		ctx, cancel := config.WithTimeout(5 * time.Second)
		err = db.EnsureSchema(ctx, pool)
		cancel()

		if err != nil {
			log.Error("schema bootstrap failed", "err", err)
			os.Exit(1)
		}

		users = postgres.NewUsersRepo(pool)
		pings["db"] = func() error {
			ctx, cancel := config.WithTimeout(1 * time.Second)
			defer cancel()
			return pool.Ping(ctx)
		}
	} else {
		log.Warn("no database configured, using in-memory users repo")
		users = memory.NewUsersRepo()
	}

	// cache + blacklist: redis when configured, memory fallback always on
	memStore := cache.NewMemoryStore()
	stopSweeper := memStore.StartSweeper(5 * time.Minute)
	defer stopSweeper()

	var store cache.Store = memStore
	var blacklist auth.Blacklist

	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		defer client.Close()

		store = cache.NewFallback(cache.NewRedisStore(client), memStore)
		blacklist = auth.NewRedisBlacklist(client)
		pings["redis"] = func() error {
			ctx, cancel := config.WithTimeout(1 * time.Second)
			defer cancel()
			return client.Ping(ctx).Err()
		}
	}

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL(), blacklist)

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	newsSvc := service.NewNewsService(newsapi.New(cfg.NewsAPIKey), store, prom)
	weatherSvc := service.NewWeatherService(openweather.New(cfg.OpenWeatherAPIKey), store, prom)

	router := httpx.NewRouter(httpx.Deps{
		Log:     log,
		Cfg:     cfg,
		JWT:     jwtManager,
		Users:   users,
		News:    newsSvc,
		Weather: weatherSvc,
		Prom:    prom,
		Pings:   pings,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
			return
		}

		if shutdownTracer != nil {
			if err := shutdownTracer(ctx); err != nil {
				log.Error("tracer shutdown failed", "err", err)
			}
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
