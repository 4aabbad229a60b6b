package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Initialize the driver history schema in Postgres.
func InitDriverSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init driver schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init driver schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDriverQuery := `
	CREATE TABLE IF NOT EXISTS tbl_driver (
		driver_id BIGINT PRIMARY KEY,
		display_name TEXT NOT NULL,
		vehicle_id TEXT
	);
	`

	createDriverStatsQuery := `
	CREATE TABLE IF NOT EXISTS tbl_driver_stats (
		id BIGSERIAL PRIMARY KEY,
		driver_id BIGINT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		datetime TIMESTAMP NOT NULL,
		speed DOUBLE PRECISION
	);
	`

	createJobHistoryQuery := `
	CREATE TABLE IF NOT EXISTS tbl_job_history (
		id BIGSERIAL PRIMARY KEY,
		job_id BIGINT NOT NULL,
		new_driver_id BIGINT NOT NULL,
		job_datetime TIMESTAMP NOT NULL,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		status TEXT NOT NULL
	);
	`

	createJobQuery := `
	CREATE TABLE IF NOT EXISTS tbl_job (
		job_id BIGINT PRIMARY KEY,
		customer_name TEXT,
		address TEXT,
		order_ref TEXT,
		notes TEXT,
		package_count INTEGER
	);
	`

	statements := []string{
		createDriverQuery,
		createDriverStatsQuery,
		createJobHistoryQuery,
		createJobQuery,
		`CREATE INDEX IF NOT EXISTS idx_driver_stats_driver_datetime ON tbl_driver_stats(driver_id, datetime);`,
		`CREATE INDEX IF NOT EXISTS idx_job_history_driver_datetime ON tbl_job_history(new_driver_id, job_datetime);`,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init driver schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init driver schema: commit tx: %w", err)
	}

	return nil
}

type DriverSeed struct {
	DriverID    int64   `json:"driver_id"`
	DisplayName string  `json:"display_name"`
	VehicleID   *string `json:"vehicle_id"`
}

type GPSSeed struct {
	DriverID int64     `json:"driver_id"`
	Lat      float64   `json:"lat"`
	Lng      float64   `json:"lng"`
	Datetime time.Time `json:"datetime"`
	Speed    *float64  `json:"speed"`
}

type JobHistorySeed struct {
	JobID       int64     `json:"job_id"`
	DriverID    int64     `json:"new_driver_id"`
	JobDatetime time.Time `json:"job_datetime"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Status      string    `json:"status"`
}

type JobSeed struct {
	JobID        int64   `json:"job_id"`
	CustomerName *string `json:"customer_name"`
	Address      *string `json:"address"`
	OrderRef     *string `json:"order_ref"`
	Notes        *string `json:"notes"`
	PackageCount *int64  `json:"package_count"`
}

// DriverHistorySeed is the JSON layout read by SeedDriverHistory.
type DriverHistorySeed struct {
	Drivers    []DriverSeed     `json:"drivers"`
	GPS        []GPSSeed        `json:"gps"`
	JobHistory []JobHistorySeed `json:"job_history"`
	Jobs       []JobSeed        `json:"jobs"`
}

func (s *DriverHistorySeed) validate() error {
	for i, d := range s.Drivers {
		if d.DriverID <= 0 {
			return fmt.Errorf("invalid driver_id at drivers index %d: %d", i+1, d.DriverID)
		}
		if strings.TrimSpace(d.DisplayName) == "" {
			return fmt.Errorf("drivers index %d: display_name cannot be empty", i+1)
		}
	}
	for i, g := range s.GPS {
		if g.Datetime.IsZero() {
			return fmt.Errorf("gps index %d: datetime is required", i+1)
		}
	}
	for i, j := range s.JobHistory {
		if strings.TrimSpace(j.Status) == "" {
			return fmt.Errorf("job_history index %d: status cannot be empty", i+1)
		}
	}
	return nil
}

// LoadDriverHistorySeed reads and validates a driver history JSON file.
func LoadDriverHistorySeed(jsonPath string) (*DriverHistorySeed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", jsonPath, err)
	}

	var data DriverHistorySeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if err := data.validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

// Populate the driver history tables from a JSON file.
// Drivers and jobs are upserted; GPS and job-history rows are appended.
func SeedDriverHistory(ctx context.Context, db *sql.DB, jsonPath string) error {
	if db == nil {
		return errors.New("seed driver history: DB is nil")
	}

	data, err := LoadDriverHistorySeed(jsonPath)
	if err != nil {
		return fmt.Errorf("seed driver history: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed driver history: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	steps := []struct {
		name  string
		query string
		n     int
		args  func(i int) []any
	}{
		{
			name: "drivers",
			query: `
			INSERT INTO tbl_driver (driver_id, display_name, vehicle_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (driver_id) DO UPDATE SET
				display_name = EXCLUDED.display_name,
				vehicle_id = EXCLUDED.vehicle_id;
			`,
			n: len(data.Drivers),
			args: func(i int) []any {
				d := data.Drivers[i]
				return []any{d.DriverID, strings.TrimSpace(d.DisplayName), d.VehicleID}
			},
		},
		{
			name: "jobs",
			query: `
			INSERT INTO tbl_job (job_id, customer_name, address, order_ref, notes, package_count)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (job_id) DO UPDATE SET
				customer_name = EXCLUDED.customer_name,
				address = EXCLUDED.address,
				order_ref = EXCLUDED.order_ref,
				notes = EXCLUDED.notes,
				package_count = EXCLUDED.package_count;
			`,
			n: len(data.Jobs),
			args: func(i int) []any {
				j := data.Jobs[i]
				return []any{j.JobID, j.CustomerName, j.Address, j.OrderRef, j.Notes, j.PackageCount}
			},
		},
		{
			name: "gps",
			query: `
			INSERT INTO tbl_driver_stats (driver_id, lat, lng, datetime, speed)
			VALUES ($1, $2, $3, $4, $5);
			`,
			n: len(data.GPS),
			args: func(i int) []any {
				g := data.GPS[i]
				return []any{g.DriverID, g.Lat, g.Lng, g.Datetime.UTC(), g.Speed}
			},
		},
		{
			name: "job_history",
			query: `
			INSERT INTO tbl_job_history (job_id, new_driver_id, job_datetime, latitude, longitude, status)
			VALUES ($1, $2, $3, $4, $5, $6);
			`,
			n: len(data.JobHistory),
			args: func(i int) []any {
				j := data.JobHistory[i]
				return []any{j.JobID, j.DriverID, j.JobDatetime.UTC(), j.Latitude, j.Longitude, j.Status}
			},
		},
	}

	for _, step := range steps {
		if step.n == 0 {
			continue
		}
		if err := execEach(ctx, tx, step.query, step.n, step.args); err != nil {
			return fmt.Errorf("seed driver history: %s: %w", step.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed driver history: commit tx: %w", err)
	}

	return nil
}

func execEach(ctx context.Context, tx *sql.Tx, query string, n int, args func(i int) []any) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return fmt.Errorf("insert row #%d: %w", i+1, err)
		}
	}
	return nil
}
