package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ymatsuda/hospital-census/internal/api/router"
	"github.com/ymatsuda/hospital-census/internal/census"
	appconfig "github.com/ymatsuda/hospital-census/internal/config"
	"github.com/ymatsuda/hospital-census/internal/http/handlers"
	"github.com/ymatsuda/hospital-census/internal/observability/metrics"
	"github.com/ymatsuda/hospital-census/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting hospital-census API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()

	// Connection pool for the census aggregation queries.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := pool.Ping(pingCtx); err != nil {
		cancelPing()
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	cancelPing()

	// database/sql handle for the metadata endpoints.
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database handle", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// Initialize metrics
	var queryMetrics *metrics.QueryMetrics
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		queryMetrics = metrics.NewQueryMetrics(registry)
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	// Initialize repositories and handlers
	censusRepo := census.NewRepository(pool)
	censusHandler := census.NewHandler(censusRepo, logger, queryMetrics)
	metaHandler := handlers.NewMetaHandler(db, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		CensusHandler:      censusHandler,
		MetaHandler:        metaHandler,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
