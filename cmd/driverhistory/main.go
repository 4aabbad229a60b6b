package main

import (
	"context"
	"database/sql"
	"daylog-service/internal/adapters/cache"
	"daylog-service/internal/adapters/repositories"
	"daylog-service/internal/api"
	"daylog-service/internal/api/handlers"
	"daylog-service/internal/config"
	"daylog-service/internal/platform/db"
	"daylog-service/internal/ports"
	"daylog-service/internal/services"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// main is the driver history composition root.
// It wires Postgres (or the unconfigured stand-in) and the optional Redis day cache
// behind ports and starts the HTTP server.
func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("starting driver history server",
		"log_level", cfg.LogLevel.String(),
		"http_addr", cfg.HTTPAddr,
		"app_env", cfg.AppEnv,
		"stop_filter_policy", cfg.StopFilterPolicy,
		"redis_enabled", cfg.RedisEnabled,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		repo ports.DriverRepository
		conn *sql.DB
	)
	switch {
	case cfg.DriverStore == config.DriverStoreMemory:
		seed, err := repositories.LoadDriverHistorySeed(cfg.SeedPath)
		if err != nil {
			logger.Error("failed to load driver history seed", "path", cfg.SeedPath, "error", err)
			os.Exit(1)
		}
		repo = repositories.NewMemoryDriverRepository(seed)
		logger.Info("serving driver history from memory", "seed", cfg.SeedPath)
	case cfg.DriverDB.Configured():
		conn, err = db.Connect(cfg.DriverDB.URL)
		if err != nil {
			logger.Error("invalid driver database settings", "error", err)
			os.Exit(1)
		}
		pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := conn.PingContext(pingCtx); err != nil {
			// Requests report 503 until the database is reachable.
			logger.Error("postgres unavailable at startup", "error", err)
		}
		pingCancel()
	default:
		logger.Warn("driver database not configured", "reason", cfg.DriverDB.Error)
	}
	if conn != nil {
		defer conn.Close()
		repo = repositories.NewPostgresDriverRepository(conn)
	} else if repo == nil {
		repo = repositories.NewUnconfiguredDriverRepository(cfg.DriverDB.Error)
	}

	days := services.NewDriverDayService(repo, nil)
	if cfg.RedisEnabled {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, driver-day cache disabled", "error", err)
		} else {
			defer client.Close()
			days.Cache = cache.NewRedisDayCache(client, cfg.CacheTTL, logger)
			logger.Info("driver-day cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
		}
	}

	driverHandler := &handlers.DriverHandler{
		Repo:       repo,
		Days:       days,
		Policy:     cfg.StopFilterPolicy,
		Production: cfg.Production(),
	}
	healthHandler := &handlers.HealthHandler{
		Repo:       repo,
		Token:      cfg.HealthcheckToken,
		Production: cfg.Production(),
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewDriverRouter(driverHandler, healthHandler, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
