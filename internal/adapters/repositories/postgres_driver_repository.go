package repositories

import (
	"context"
	"database/sql"
	"daylog-service/internal/domain"
	"daylog-service/internal/platform/obs"
	"daylog-service/internal/ports"
	"errors"
	"fmt"
	"time"
)

const (
	dateLayout          = "2006-01-02"
	availableDatesLimit = 30
)

// Postgres-backed implementation of the DriverRepository port.
type PostgresDriverRepository struct{ DB *sql.DB }

func NewPostgresDriverRepository(db *sql.DB) *PostgresDriverRepository {
	return &PostgresDriverRepository{DB: db}
}

var _ ports.DriverRepository = (*PostgresDriverRepository)(nil)

// Return all drivers ordered by display name.
func (p *PostgresDriverRepository) ListDrivers(ctx context.Context) (_ []domain.Driver, err error) {
	defer obs.Time(ctx, "ListDrivers")(&err)
	if p.DB == nil {
		return nil, errors.New("postgres driver repository: DB is nil")
	}

	query := `
	SELECT
		driver_id,
		display_name,
		vehicle_id
	FROM tbl_driver
	ORDER BY display_name, driver_id;
	`
	rows, err := p.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list drivers: query driver table: %w", err)
	}
	defer rows.Close()

	drivers := make([]domain.Driver, 0, 32)
	for rows.Next() {
		var d domain.Driver
		var vehicle sql.NullString
		if err := rows.Scan(&d.ID, &d.DisplayName, &vehicle); err != nil {
			return nil, fmt.Errorf("list drivers: scan row: %w", err)
		}
		d.VehicleID = stringPtr(vehicle)
		drivers = append(drivers, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drivers: row iteration: %w", err)
	}

	return drivers, nil
}

// Return one driver, or domain.ErrDriverNotFound.
func (p *PostgresDriverRepository) GetDriver(ctx context.Context, driverID int64) (_ *domain.Driver, err error) {
	defer obs.Time(ctx, "GetDriver")(&err)
	if p.DB == nil {
		return nil, errors.New("postgres driver repository: DB is nil")
	}

	var d domain.Driver
	var vehicle sql.NullString
	err = p.DB.QueryRowContext(ctx,
		`SELECT driver_id, display_name, vehicle_id FROM tbl_driver WHERE driver_id = $1`,
		driverID,
	).Scan(&d.ID, &d.DisplayName, &vehicle)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDriverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get driver %d: %w", driverID, err)
	}
	d.VehicleID = stringPtr(vehicle)
	return &d, nil
}

// Return the GPS samples of a driver-day, ascending by timestamp.
func (p *PostgresDriverRepository) GPSTrack(ctx context.Context, driverID int64, day time.Time) (_ []domain.GPSPoint, err error) {
	defer obs.Time(ctx, "GPSTrack")(&err)
	if p.DB == nil {
		return nil, errors.New("postgres driver repository: DB is nil")
	}

	query := `
	SELECT
		lat,
		lng,
		datetime,
		speed
	FROM tbl_driver_stats
	WHERE driver_id = $1 AND DATE(datetime) = $2::date
	ORDER BY datetime ASC, id ASC;
	`
	rows, err := p.DB.QueryContext(ctx, query, driverID, day.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("gps track: query driver stats: %w", err)
	}
	defer rows.Close()

	track := make([]domain.GPSPoint, 0, 512)
	for rows.Next() {
		var pt domain.GPSPoint
		var speed sql.NullFloat64
		if err := rows.Scan(&pt.Lat, &pt.Lng, &pt.Timestamp, &speed); err != nil {
			return nil, fmt.Errorf("gps track: scan row: %w", err)
		}
		pt.Timestamp = pt.Timestamp.UTC()
		if speed.Valid {
			s := speed.Float64
			pt.Speed = &s
		}
		track = append(track, pt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("gps track: row iteration: %w", err)
	}

	return track, nil
}

// Return pickup/delivery job events of a driver-day, ascending by timestamp.
// Every column after status is an optional job detail; non-null values land in Extra.
func (p *PostgresDriverRepository) JobHistory(ctx context.Context, driverID int64, day time.Time) (_ []domain.JobEvent, err error) {
	defer obs.Time(ctx, "JobHistory")(&err)
	if p.DB == nil {
		return nil, errors.New("postgres driver repository: DB is nil")
	}

	query := `
	SELECT
		jh.job_id,
		jh.job_datetime,
		jh.latitude,
		jh.longitude,
		jh.status,
		j.customer_name,
		j.address,
		j.order_ref,
		j.notes,
		j.package_count
	FROM tbl_job_history jh
	LEFT JOIN tbl_job j ON j.job_id = jh.job_id
	WHERE jh.new_driver_id = $1
		AND DATE(jh.job_datetime) = $2::date
		AND jh.latitude IS NOT NULL
		AND jh.longitude IS NOT NULL
		AND jh.status IN ($3, $4)
	ORDER BY jh.job_datetime ASC, jh.id ASC;
	`
	rows, err := p.DB.QueryContext(ctx, query,
		driverID, day.Format(dateLayout), domain.JobStatusInTransit, domain.JobStatusOrderDelivered)
	if err != nil {
		return nil, fmt.Errorf("job history: query job history: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("job history: columns: %w", err)
	}
	const fixed = 5
	extraNames := columns[fixed:]

	events := make([]domain.JobEvent, 0, 64)
	for rows.Next() {
		var ev domain.JobEvent
		extras := make([]any, len(extraNames))
		dest := []any{&ev.JobID, &ev.JobDatetime, &ev.Latitude, &ev.Longitude, &ev.Status}
		for i := range extras {
			dest = append(dest, &extras[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("job history: scan row: %w", err)
		}
		ev.JobDatetime = ev.JobDatetime.UTC()

		for i, name := range extraNames {
			v := normalizeColumnValue(extras[i])
			if v == nil {
				continue
			}
			if ev.Extra == nil {
				ev.Extra = make(map[string]any, len(extraNames))
			}
			ev.Extra[name] = v
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("job history: row iteration: %w", err)
	}

	return events, nil
}

func normalizeColumnValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC()
	default:
		return v
	}
}

// Return recent dates with GPS data, newest first.
func (p *PostgresDriverRepository) AvailableDates(ctx context.Context, driverID int64) (_ []time.Time, err error) {
	defer obs.Time(ctx, "AvailableDates")(&err)
	if p.DB == nil {
		return nil, errors.New("postgres driver repository: DB is nil")
	}

	query := `
	SELECT DISTINCT DATE(datetime) AS day
	FROM tbl_driver_stats
	WHERE driver_id = $1
	ORDER BY day DESC
	LIMIT $2;
	`
	rows, err := p.DB.QueryContext(ctx, query, driverID, availableDatesLimit)
	if err != nil {
		return nil, fmt.Errorf("available dates: query driver stats: %w", err)
	}
	defer rows.Close()

	dates := make([]time.Time, 0, availableDatesLimit)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("available dates: scan row: %w", err)
		}
		dates = append(dates, time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("available dates: row iteration: %w", err)
	}

	return dates, nil
}

// Return the columns of a table in the public schema, in ordinal order.
func (p *PostgresDriverRepository) DescribeTable(ctx context.Context, table string) (_ []ports.ColumnInfo, err error) {
	defer obs.Time(ctx, "DescribeTable")(&err)
	if p.DB == nil {
		return nil, errors.New("postgres driver repository: DB is nil")
	}

	query := `
	SELECT
		column_name,
		data_type,
		is_nullable
	FROM information_schema.columns
	WHERE table_schema = current_schema() AND table_name = $1
	ORDER BY ordinal_position;
	`
	rows, err := p.DB.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("describe table %q: query information schema: %w", table, err)
	}
	defer rows.Close()

	columns := make([]ports.ColumnInfo, 0, 16)
	for rows.Next() {
		var c ports.ColumnInfo
		var nullable string
		if err := rows.Scan(&c.Name, &c.DataType, &nullable); err != nil {
			return nil, fmt.Errorf("describe table %q: scan row: %w", table, err)
		}
		c.Nullable = nullable == "YES"
		columns = append(columns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("describe table %q: row iteration: %w", table, err)
	}

	return columns, nil
}

func (p *PostgresDriverRepository) Ping(ctx context.Context) (err error) {
	defer obs.Time(ctx, "Ping")(&err)
	if p.DB == nil {
		return errors.New("postgres driver repository: DB is nil")
	}
	return p.DB.PingContext(ctx)
}
