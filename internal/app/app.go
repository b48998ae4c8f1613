// Package app provides the main application setup and dependency injection.
package app

import (
	"context"
	"time"

	"drama-gateway-go/pkg/appctx"
	"drama-gateway-go/pkg/cache"
	"drama-gateway-go/pkg/config"
	"drama-gateway-go/pkg/handlers/api"
	"drama-gateway-go/pkg/httpclient"
	"drama-gateway-go/pkg/logging"
	"drama-gateway-go/pkg/refresh"
	"drama-gateway-go/pkg/scraper"
	"drama-gateway-go/pkg/server"
)

// App is the main application container.
type App struct {
	Ctx        *appctx.Context
	Server     *server.Server
	HTTPClient *httpclient.Client
	Prewarmer  *refresh.Prewarmer

	redisStore *cache.Redis
}

// New creates and initializes the application.
func New() (*App, error) {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log := logging.New(cfg.LogLevel, cfg.LogJSON, nil)
	log.Info("initializing drama gateway",
		"port", cfg.Port,
		"upstream", cfg.UpstreamBaseURL,
		"log_level", cfg.LogLevel,
	)

	// Create application context
	ctx := appctx.New(cfg, log)

	// Create HTTP client
	httpClient := httpclient.New(cfg, log)

	// Create cache store: Redis when configured, in-memory otherwise
	gw := &App{}
	var store cache.Store
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedis(cfg.RedisURL, log)
		if err != nil {
			log.Warn("redis unavailable, falling back to in-memory cache", "error", err)
			store = cache.NewMemory(cfg.CacheCapacity)
		} else {
			log.Info("using redis cache")
			store = redisStore
			gw.redisStore = redisStore
		}
	} else {
		store = cache.NewMemory(cfg.CacheCapacity)
	}
	ctx.WithCache(store)

	// Create scraper
	sc := scraper.New(httpClient, store, cfg, log)
	ctx.WithScraper(sc)

	// Create prewarmer (no-op when no schedule is configured)
	prewarmer, err := refresh.New(sc, cfg.PrewarmSchedule, cfg.FetchTimeout, log)
	if err != nil {
		return nil, err
	}
	if cfg.PrewarmSchedule != "" {
		log.Info("prewarm enabled", "schedule", cfg.PrewarmSchedule)
	}

	// Create HTTP server
	srv := server.New(cfg, log)

	// Create API handlers
	handlers := api.NewHandlers(ctx)
	handlers.RegisterRoutes(srv.Router())

	gw.Ctx = ctx
	gw.Server = srv
	gw.HTTPClient = httpClient
	gw.Prewarmer = prewarmer
	return gw, nil
}

// Run starts the application.
func (a *App) Run() error {
	a.Prewarmer.Start()
	a.Ctx.Log.Info("starting drama gateway server", "port", a.Ctx.Config.Port)
	return a.Server.Start()
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() {
	a.Ctx.Log.Info("shutting down application")

	a.Prewarmer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Server.Shutdown(ctx); err != nil {
		a.Ctx.Log.Error("server shutdown error", "error", err)
	}

	if a.redisStore != nil {
		if err := a.redisStore.Close(); err != nil {
			a.Ctx.Log.Warn("redis close failed", "error", err)
		}
	}
}
