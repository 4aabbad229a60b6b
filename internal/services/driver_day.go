package services

import (
	"context"
	"daylog-service/internal/domain"
	"daylog-service/internal/ports"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DriverDayService assembles driver-days from the relational store.
type DriverDayService struct {
	Repo  ports.DriverRepository
	Cache ports.DriverDayCache
	// Now reports the current time; days before its date are treated as closed.
	Now func() time.Time
}

func NewDriverDayService(repo ports.DriverRepository, cache ports.DriverDayCache) *DriverDayService {
	return &DriverDayService{Repo: repo, Cache: cache, Now: time.Now}
}

// Get returns the driver-day for driverID on day.
//
// GPS and job rows are independent reads, so both are fetched concurrently; stop
// derivation starts only after both have arrived. Closed days are served from and
// written to the cache when one is configured. Cache failures are logged, never fatal.
func (s *DriverDayService) Get(ctx context.Context, driverID int64, day time.Time) (*domain.DriverDay, error) {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	cacheable := s.Cache != nil && s.closed(day)

	if cacheable {
		dd, err := s.Cache.Get(ctx, driverID, day)
		if err != nil {
			slog.WarnContext(ctx, "driver day cache read failed", "driver_id", driverID, "error", err)
		} else if dd != nil {
			return dd, nil
		}
	}

	driver, err := s.Repo.GetDriver(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("get driver day: %w", err)
	}

	var (
		track []domain.GPSPoint
		jobs  []domain.JobEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		track, err = s.Repo.GPSTrack(gctx, driverID, day)
		if err != nil {
			return fmt.Errorf("gps track: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		jobs, err = s.Repo.JobHistory(gctx, driverID, day)
		if err != nil {
			return fmt.Errorf("job history: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("get driver day: %w", err)
	}

	if track == nil {
		track = []domain.GPSPoint{}
	}
	stops, deliveries := DeriveFromJobs(jobs)

	dd := &domain.DriverDay{
		DriverID:   driver.ID,
		DriverName: driver.DisplayName,
		Date:       day,
		GPSTrack:   track,
		Stops:      stops,
		Deliveries: deliveries,
	}

	if cacheable {
		if err := s.Cache.Put(ctx, dd); err != nil {
			slog.WarnContext(ctx, "driver day cache write failed", "driver_id", driverID, "error", err)
		}
	}

	return dd, nil
}

// closed reports whether day lies strictly before today.
func (s *DriverDayService) closed(day time.Time) bool {
	now := s.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return day.Before(today)
}
