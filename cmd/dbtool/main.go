package main

import (
	"context"
	"database/sql"
	"daylog-service/internal/adapters/repositories"
	"daylog-service/internal/config"
	"daylog-service/internal/platform/db"
	"flag"
	"fmt"
	"log/slog"
	"os"
)

// dbtool creates the driver history schema in Postgres and optionally loads a JSON seed.
func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	seedPath := flag.String("seed", cfg.SeedPath, "JSON seed file")
	skipSeed := flag.Bool("schema-only", false, "create the schema without seeding")
	flag.Parse()

	if !cfg.DriverDB.Configured() {
		slog.Error("driver database not configured", "reason", cfg.DriverDB.Error)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DriverDB.URL)
	if err != nil {
		slog.Error("failed to open postgres", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := initAndSeed(ctx, conn, *seedPath, !*skipSeed); err != nil {
		slog.Error("dbtool failed", "error", err)
		os.Exit(1)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string, seed bool) error {
	slog.Info("initializing database schema")
	if err := repositories.InitDriverSchema(ctx, conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	slog.Info("schema ready")

	if !seed {
		return nil
	}

	slog.Info("seeding database", "path", seedPath)
	if err := repositories.SeedDriverHistory(ctx, conn, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	slog.Info("seeding complete")

	return nil
}
