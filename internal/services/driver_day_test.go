package services

import (
	"context"
	"daylog-service/internal/domain"
	"daylog-service/internal/ports"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeDriverRepo struct {
	driver *domain.Driver
	track  []domain.GPSPoint
	jobs   []domain.JobEvent
	gpsErr error

	// both fetches block on this until the other has started
	started sync.WaitGroup
	calls   atomic.Int32
}

func (f *fakeDriverRepo) ListDrivers(context.Context) ([]domain.Driver, error) {
	return []domain.Driver{*f.driver}, nil
}

func (f *fakeDriverRepo) GetDriver(_ context.Context, id int64) (*domain.Driver, error) {
	f.calls.Add(1)
	if f.driver == nil || f.driver.ID != id {
		return nil, domain.ErrDriverNotFound
	}
	return f.driver, nil
}

func (f *fakeDriverRepo) GPSTrack(context.Context, int64, time.Time) ([]domain.GPSPoint, error) {
	f.started.Done()
	f.started.Wait()
	return f.track, f.gpsErr
}

func (f *fakeDriverRepo) JobHistory(context.Context, int64, time.Time) ([]domain.JobEvent, error) {
	f.started.Done()
	f.started.Wait()
	return f.jobs, nil
}

func (f *fakeDriverRepo) AvailableDates(context.Context, int64) ([]time.Time, error) {
	return nil, nil
}

func (f *fakeDriverRepo) DescribeTable(context.Context, string) ([]ports.ColumnInfo, error) {
	return nil, nil
}

func (f *fakeDriverRepo) Ping(context.Context) error { return nil }

type fakeDayCache struct {
	days map[string]*domain.DriverDay
	puts int
}

func cacheKey(id int64, day time.Time) string {
	return fmt.Sprintf("%d/%s", id, day.Format("2006-01-02"))
}

func (c *fakeDayCache) Get(_ context.Context, id int64, day time.Time) (*domain.DriverDay, error) {
	return c.days[cacheKey(id, day)], nil
}

func (c *fakeDayCache) Put(_ context.Context, dd *domain.DriverDay) error {
	c.puts++
	c.days[cacheKey(dd.DriverID, dd.Date)] = dd
	return nil
}

func newFakeDriverRepo() *fakeDriverRepo {
	ts := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	speed := 12.0

	f := &fakeDriverRepo{
		driver: &domain.Driver{ID: 1, DisplayName: "Alex Thompson"},
		track: []domain.GPSPoint{
			{Lat: 51.5, Lng: -0.1, Timestamp: ts, Speed: &speed},
			{Lat: 51.6, Lng: -0.1, Timestamp: ts.Add(time.Minute), Speed: &speed},
		},
		jobs: []domain.JobEvent{
			{JobID: 10, Status: domain.JobStatusInTransit, JobDatetime: ts, Latitude: 51.5, Longitude: -0.1},
			{JobID: 11, Status: domain.JobStatusOrderDelivered, JobDatetime: ts.Add(time.Hour), Latitude: 51.6, Longitude: -0.1},
		},
	}
	f.started.Add(2)
	return f
}

func TestDriverDayService_Get(t *testing.T) {
	repo := newFakeDriverRepo()
	svc := NewDriverDayService(repo, nil)

	// GPSTrack and JobHistory each wait for the other, so this only returns when
	// both ran concurrently.
	dd, err := svc.Get(context.Background(), 1, time.Date(2024, 3, 11, 17, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if dd.DriverName != "Alex Thompson" {
		t.Errorf("DriverName = %q", dd.DriverName)
	}
	if !dd.Date.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v, want midnight UTC", dd.Date)
	}
	if len(dd.GPSTrack) != 2 || len(dd.Stops) != 2 || len(dd.Deliveries) != 2 {
		t.Fatalf("unexpected day: %d points, %d stops, %d deliveries",
			len(dd.GPSTrack), len(dd.Stops), len(dd.Deliveries))
	}
	if dd.Stops[0].Type != domain.StopPickup || dd.Stops[1].Type != domain.StopDelivered {
		t.Errorf("stop types = %q, %q", dd.Stops[0].Type, dd.Stops[1].Type)
	}
}

func TestDriverDayService_DriverNotFound(t *testing.T) {
	repo := newFakeDriverRepo()
	svc := NewDriverDayService(repo, nil)

	_, err := svc.Get(context.Background(), 99, time.Now())
	if !errors.Is(err, domain.ErrDriverNotFound) {
		t.Fatalf("got %v, want ErrDriverNotFound", err)
	}
}

func TestDriverDayService_FetchError(t *testing.T) {
	repo := newFakeDriverRepo()
	repo.gpsErr = errors.New("connection reset")
	svc := NewDriverDayService(repo, nil)

	_, err := svc.Get(context.Background(), 1, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC))
	if err == nil || !errors.Is(err, repo.gpsErr) {
		t.Fatalf("got %v, want wrapped fetch error", err)
	}
}

func TestDriverDayService_CachesClosedDaysOnly(t *testing.T) {
	cache := &fakeDayCache{days: map[string]*domain.DriverDay{}}
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

	// yesterday: cached after the first read
	repo := newFakeDriverRepo()
	svc := NewDriverDayService(repo, cache)
	svc.Now = func() time.Time { return now }

	yesterday := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	first, err := svc.Get(context.Background(), 1, yesterday)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cache.puts != 1 {
		t.Fatalf("puts = %d, want 1", cache.puts)
	}

	second, err := svc.Get(context.Background(), 1, yesterday)
	if err != nil {
		t.Fatalf("Get (cached): %v", err)
	}
	if second != first {
		t.Errorf("second read was not served from the cache")
	}
	if got := repo.calls.Load(); got != 1 {
		t.Errorf("repository hit %d times, want 1", got)
	}

	// today: never cached
	repo = newFakeDriverRepo()
	svc.Repo = repo
	if _, err := svc.Get(context.Background(), 1, now); err != nil {
		t.Fatalf("Get (today): %v", err)
	}
	if cache.puts != 1 {
		t.Errorf("today's day was cached")
	}
}
