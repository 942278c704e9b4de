package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq"

	"github.com/achaudhary7/SilverInfo-sub003/internal/adapters/cache"
	"github.com/achaudhary7/SilverInfo-sub003/internal/adapters/fetcher"
	v1 "github.com/achaudhary7/SilverInfo-sub003/internal/adapters/handler/http/v1"
	"github.com/achaudhary7/SilverInfo-sub003/internal/adapters/repository/memory"
	"github.com/achaudhary7/SilverInfo-sub003/internal/adapters/repository/postgres"
	"github.com/achaudhary7/SilverInfo-sub003/internal/config"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/port"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/service/extremes"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/service/formula"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/service/health"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/service/prices"
)

type App struct {
	cfg         *config.Config
	router      *http.ServeMux
	db          *sql.DB
	redisClient *redis.Client

	// Services
	priceService  port.PriceService
	healthService port.HealthService

	// For graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

func NewApp(cfg *config.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (app *App) Initialize() error {
	slog.Info("Initializing application...")
	app.router = http.NewServeMux()

	loc, err := time.LoadLocation(app.cfg.Pricing.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load market timezone %q: %w", app.cfg.Pricing.Timezone, err)
	}

	// Database connection. The extremes and close stores must be
	// durable across cold starts; the in-memory fallback keeps the
	// price path alive but loses intraday history on restart, so the
	// degradation is logged loudly.
	var extremesStore port.ExtremesStore
	var closeStore port.CloseStore
	dbConn, err := postgres.NewDbConnInstance(&app.cfg.Repository)
	if err != nil {
		slog.Error("Database connection failed, intraday extremes will not survive restarts", "error", err)
		mem := memory.NewStore()
		extremesStore = mem
		closeStore = mem
	} else {
		app.db = dbConn
		pgStore := postgres.NewStore(dbConn)
		extremesStore = pgStore
		closeStore = pgStore
		slog.Info("Database connected successfully")
	}

	// Redis connection
	redisClient := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", app.cfg.Cache.RedisHost, app.cfg.Cache.RedisPort),
		Password:     app.cfg.Cache.RedisPassword,
		DB:           app.cfg.Cache.RedisDB,
		PoolSize:     app.cfg.Cache.PoolSize,
		MinIdleConns: app.cfg.Cache.MinIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()

	var resultCache port.ResultCache
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis connection failed, using process-local cache", "error", err)
		resultCache = cache.NewMemoryAdapter()
	} else {
		app.redisClient = redisClient
		resultCache = cache.NewRedisAdapter(redisClient)
		slog.Info("Redis connected successfully")
	}

	// Provider fallback chain
	chain, err := fetcher.NewChain(app.cfg.Providers)
	if err != nil {
		return fmt.Errorf("failed to build provider chain: %w", err)
	}
	slog.Info("Provider chain configured", "providers", chain.Providers())

	// Core services
	tracker := extremes.New(extremesStore, loc)
	engine := formula.New(app.cfg.Pricing)

	app.priceService = prices.NewPriceService(
		resultCache,
		chain,
		engine,
		tracker,
		closeStore,
		app.cfg.Pricing.CacheTTLSeconds,
		app.cfg.Pricing.BaseCurrency,
		app.cfg.Pricing.TargetCurrency,
	)
	app.healthService = health.NewHealthService(app.db, resultCache, chain)

	// Handlers (adapters layer)
	priceHandler := v1.NewPriceHandler(app.priceService, app.cfg.Pricing.RefreshSecret)
	healthHandler := v1.NewHealthHandler(app.healthService)

	v1.SetMarketRoutes(app.router, priceHandler, healthHandler)

	slog.Info("Application initialized successfully")
	return nil
}

func (app *App) Run() {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.App.Port),
		Handler: app.router,
	}

	slog.Info("Starting server", "port", app.cfg.App.Port)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Server error", "error", err)
		return
	}
}

// Shutdown gracefully shuts down the application
func (app *App) Shutdown() error {
	slog.Info("Shutting down application...")

	app.cancel()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}

	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			slog.Error("Failed to close Redis", "error", err)
		}
	}

	slog.Info("Application shutdown complete")
	return nil
}
