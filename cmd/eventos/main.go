package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmpinto/eventos-escuteiros/internal/config"
	"github.com/jmpinto/eventos-escuteiros/internal/handler"
	"github.com/jmpinto/eventos-escuteiros/internal/infra/airtable"
	"github.com/jmpinto/eventos-escuteiros/internal/infra/cache"
	"github.com/jmpinto/eventos-escuteiros/internal/infra/observability"
	"github.com/jmpinto/eventos-escuteiros/internal/infra/resilience"
	"github.com/jmpinto/eventos-escuteiros/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = godotenv.Load()

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("base_id", cfg.AirtableBaseID),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Duration("session_ttl", cfg.SessionTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "eventos-escuteiros")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	tableCache := cache.New(cfg.CacheTTL)

	// --- Remote base client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	cb := resilience.NewCircuitBreaker("airtable")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)
	gateway := airtable.NewClient(httpClient, cfg.AirtableBaseURL, cfg.AirtableBaseID, cfg.AirtableAPIKey, cb, bulkhead, logger)

	// --- Services ---
	sessions := service.NewMemorySessionStore(cfg.SessionTTL)
	authSvc := service.NewAuthService(gateway, sessions, cfg.SessionSecret, cfg.SessionTTL, logger)
	salesSvc := service.NewSalesService(gateway, tableCache, metrics, logger)
	adminSvc := service.NewAdminService(gateway, tableCache, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(authSvc, salesSvc, adminSvc, gateway, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
