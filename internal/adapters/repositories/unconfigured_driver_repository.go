package repositories

import (
	"context"
	"daylog-service/internal/domain"
	"daylog-service/internal/ports"
	"fmt"
	"time"
)

// UnconfiguredDriverRepository stands in when the Postgres settings are incomplete.
// Every call fails with domain.ErrDatabaseUnconfigured carrying the config error.
type UnconfiguredDriverRepository struct{ Reason string }

func NewUnconfiguredDriverRepository(reason string) *UnconfiguredDriverRepository {
	return &UnconfiguredDriverRepository{Reason: reason}
}

var _ ports.DriverRepository = (*UnconfiguredDriverRepository)(nil)

func (u *UnconfiguredDriverRepository) err() error {
	if u.Reason == "" {
		return domain.ErrDatabaseUnconfigured
	}
	return fmt.Errorf("%w: %s", domain.ErrDatabaseUnconfigured, u.Reason)
}

func (u *UnconfiguredDriverRepository) ListDrivers(context.Context) ([]domain.Driver, error) {
	return nil, u.err()
}

func (u *UnconfiguredDriverRepository) GetDriver(context.Context, int64) (*domain.Driver, error) {
	return nil, u.err()
}

func (u *UnconfiguredDriverRepository) GPSTrack(context.Context, int64, time.Time) ([]domain.GPSPoint, error) {
	return nil, u.err()
}

func (u *UnconfiguredDriverRepository) JobHistory(context.Context, int64, time.Time) ([]domain.JobEvent, error) {
	return nil, u.err()
}

func (u *UnconfiguredDriverRepository) AvailableDates(context.Context, int64) ([]time.Time, error) {
	return nil, u.err()
}

func (u *UnconfiguredDriverRepository) DescribeTable(context.Context, string) ([]ports.ColumnInfo, error) {
	return nil, u.err()
}

func (u *UnconfiguredDriverRepository) Ping(context.Context) error {
	return u.err()
}
