package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the activity tracker's SQLite schema.
// Times are stored as fixed-width UTC text so that text order is time order.
func InitTrackerSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init tracker schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init tracker schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createSettingsQuery := `
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY DEFAULT 1,
		baby_name TEXT NOT NULL DEFAULT '',
		baby_dob TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	);
	`

	createActivitiesQuery := `
	CREATE TABLE IF NOT EXISTS activities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		time TEXT,
		start_time TEXT,
		end_time TEXT,
		duration INTEGER,
		feed_type TEXT,
		side TEXT,
		amount INTEGER,
		diaper_type TEXT,
		notes TEXT,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	);
	`

	createCurrentSleepQuery := `
	CREATE TABLE IF NOT EXISTS current_sleep (
		id INTEGER PRIMARY KEY DEFAULT 1,
		start_time TEXT,
		is_active INTEGER NOT NULL DEFAULT 0
	);
	`

	statements := []string{
		createSettingsQuery,
		createActivitiesQuery,
		createCurrentSleepQuery,
		`INSERT OR IGNORE INTO settings (id) VALUES (1);`,
		`INSERT OR IGNORE INTO current_sleep (id) VALUES (1);`,
		`CREATE INDEX IF NOT EXISTS idx_activities_type ON activities(type);`,
		`CREATE INDEX IF NOT EXISTS idx_activities_time ON activities(time);`,
		`CREATE INDEX IF NOT EXISTS idx_activities_end_time ON activities(end_time);`,
		`CREATE INDEX IF NOT EXISTS idx_activities_created ON activities(created_at);`,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init tracker schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init tracker schema: commit tx: %w", err)
	}

	return nil
}
