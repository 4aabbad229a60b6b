package ports

import (
	"context"
	"daylog-service/internal/domain"
	"time"
)

// ColumnInfo describes one column of a relational table.
type ColumnInfo struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
}

// Port: read-only access to driver telemetry and job history.
// Days are calendar dates as understood by the store's own date function.
type DriverRepository interface {
	// Return all drivers ordered by display name.
	ListDrivers(ctx context.Context) ([]domain.Driver, error)
	// Return one driver, or domain.ErrDriverNotFound.
	GetDriver(ctx context.Context, driverID int64) (*domain.Driver, error)
	// Return the GPS samples of a driver-day, ascending by timestamp.
	GPSTrack(ctx context.Context, driverID int64, day time.Time) ([]domain.GPSPoint, error)
	// Return pickup/delivery job events of a driver-day, ascending by timestamp.
	JobHistory(ctx context.Context, driverID int64, day time.Time) ([]domain.JobEvent, error)
	// Return recent dates with GPS data, newest first.
	AvailableDates(ctx context.Context, driverID int64) ([]time.Time, error)
	DescribeTable(ctx context.Context, table string) ([]ColumnInfo, error)
	Ping(ctx context.Context) error
}
