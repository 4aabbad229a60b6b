package main

import (
	"context"
	"daylog-service/internal/adapters/repositories"
	"daylog-service/internal/api"
	"daylog-service/internal/api/handlers"
	"daylog-service/internal/config"
	"daylog-service/internal/platform/db"
	"daylog-service/internal/services"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// main is the activity tracker composition root.
// It opens the SQLite file, ensures the schema and starts the HTTP server.
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

	logger.Info("starting baby tracker server",
		"log_level", cfg.LogLevel.String(),
		"http_addr", cfg.HTTPAddr,
		"db_path", cfg.TrackerDBPath,
		"tz", cfg.TrackerLocation.String(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := db.OpenSQLite(ctx, cfg.TrackerDBPath)
	if err != nil {
		logger.Error("failed to open tracker database", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := repositories.InitTrackerSchema(ctx, conn); err != nil {
		logger.Error("failed to initialize tracker schema", "error", err)
		os.Exit(1)
	}

	repo := repositories.NewSqliteActivityRepository(conn)
	trackerHandler := &handlers.TrackerHandler{
		Repo:       repo,
		Stats:      services.NewStatsService(repo, cfg.TrackerLocation),
		Location:   cfg.TrackerLocation,
		Production: cfg.Production(),
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewTrackerRouter(trackerHandler, logger),
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
