package ports

import (
	"context"
	"daylog-service/internal/domain"
	"time"
)

// Optional cache of assembled driver-days. Implementations report a miss as (nil, nil).
type DriverDayCache interface {
	Get(ctx context.Context, driverID int64, day time.Time) (*domain.DriverDay, error)
	Put(ctx context.Context, dd *domain.DriverDay) error
}
