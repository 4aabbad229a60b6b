package repositories

import (
	"context"
	"daylog-service/internal/domain"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

const seedPath = "../../../data/seeds/driver_history.json"

func newTestMemoryRepo(t *testing.T) *MemoryDriverRepository {
	t.Helper()

	seed, err := LoadDriverHistorySeed(seedPath)
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	return NewMemoryDriverRepository(seed)
}

func TestMemoryDriverRepository_Drivers(t *testing.T) {
	repo := newTestMemoryRepo(t)
	ctx := context.Background()

	drivers, err := repo.ListDrivers(ctx)
	if err != nil {
		t.Fatalf("ListDrivers: %v", err)
	}
	if len(drivers) != 2 || drivers[0].DisplayName != "Alex Thompson" || drivers[1].DisplayName != "Priya Nair" {
		t.Fatalf("unexpected drivers: %+v", drivers)
	}

	if _, err := repo.GetDriver(ctx, 999); !errors.Is(err, domain.ErrDriverNotFound) {
		t.Fatalf("GetDriver(999): got %v, want ErrDriverNotFound", err)
	}
}

func TestMemoryDriverRepository_DriverDay(t *testing.T) {
	repo := newTestMemoryRepo(t)
	ctx := context.Background()
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	track, err := repo.GPSTrack(ctx, 101, day)
	if err != nil {
		t.Fatalf("GPSTrack: %v", err)
	}
	if len(track) != 7 {
		t.Fatalf("got %d points, want 7", len(track))
	}
	for i := 1; i < len(track); i++ {
		if track[i].Timestamp.Before(track[i-1].Timestamp) {
			t.Fatalf("track not ascending at %d", i)
		}
	}
	if track[6].Speed != nil {
		t.Errorf("null speed should stay nil")
	}

	jobs, err := repo.JobHistory(ctx, 101, day)
	if err != nil {
		t.Fatalf("JobHistory: %v", err)
	}
	if len(jobs) != 4 {
		t.Fatalf("got %d job events, want 4", len(jobs))
	}
	if jobs[3].JobID != 5002 || jobs[3].Status != domain.JobStatusOrderDelivered {
		t.Errorf("last event = %+v", jobs[3])
	}
	if jobs[3].Extra[domain.JobDetailNotes] != "Leave with concierge" {
		t.Errorf("notes = %v", jobs[3].Extra[domain.JobDetailNotes])
	}
	if _, ok := jobs[0].Extra[domain.JobDetailNotes]; ok {
		t.Errorf("null notes should not be carried")
	}

	other, err := repo.GPSTrack(ctx, 101, day.AddDate(0, 0, 1))
	if err != nil || len(other) != 0 {
		t.Fatalf("next day: got %d points, err %v", len(other), err)
	}
}

func TestMemoryDriverRepository_AvailableDates(t *testing.T) {
	repo := newTestMemoryRepo(t)

	dates, err := repo.AvailableDates(context.Background(), 101)
	if err != nil {
		t.Fatalf("AvailableDates: %v", err)
	}
	if len(dates) != 1 || dates[0].Format(dateLayout) != "2024-03-11" {
		t.Fatalf("got %v, want [2024-03-11]", dates)
	}

	none, err := repo.AvailableDates(context.Background(), 102)
	if err != nil || len(none) != 0 {
		t.Fatalf("driver without gps: got %v, err %v", none, err)
	}
}

func TestMemoryDriverRepository_SkipsUnusableJobRows(t *testing.T) {
	lat, lng := 51.5, -0.1
	ts := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

	// build test data
	seed := &DriverHistorySeed{
		Drivers: []DriverSeed{{DriverID: 1, DisplayName: "Sam"}},
		JobHistory: []JobHistorySeed{
			{JobID: 1, DriverID: 1, JobDatetime: ts, Latitude: &lat, Longitude: &lng, Status: domain.JobStatusInTransit},
			{JobID: 2, DriverID: 1, JobDatetime: ts, Latitude: nil, Longitude: &lng, Status: domain.JobStatusInTransit},
			{JobID: 3, DriverID: 1, JobDatetime: ts, Latitude: &lat, Longitude: &lng, Status: "cancelled"},
		},
	}
	repo := NewMemoryDriverRepository(seed)

	jobs, err := repo.JobHistory(context.Background(), 1, ts)
	if err != nil {
		t.Fatalf("JobHistory: %v", err)
	}
	if len(jobs) != 1 || jobs[0].JobID != 1 {
		t.Fatalf("got %+v, want only job 1", jobs)
	}
}

func TestMemoryDriverRepository_DescribeTable(t *testing.T) {
	repo := NewMemoryDriverRepository(nil)

	cols, err := repo.DescribeTable(context.Background(), "tbl_driver")
	if err != nil {
		t.Fatalf("DescribeTable: %v", err)
	}
	if len(cols) != 3 || cols[2].Name != "vehicle_id" || !cols[2].Nullable {
		t.Fatalf("unexpected columns: %+v", cols)
	}

	// every table the Postgres schema creates is describable
	for _, table := range []string{"tbl_driver", "tbl_driver_stats", "tbl_job_history", "tbl_job"} {
		cols, err := repo.DescribeTable(context.Background(), table)
		if err != nil || len(cols) == 0 {
			t.Errorf("%s: got %d columns, err %v", table, len(cols), err)
		}
	}

	jobCols, _ := repo.DescribeTable(context.Background(), "tbl_job")
	if len(jobCols) != 6 || jobCols[0].Name != "job_id" || jobCols[0].Nullable {
		t.Errorf("unexpected tbl_job columns: %+v", jobCols)
	}

	if cols, _ := repo.DescribeTable(context.Background(), "nope"); len(cols) != 0 {
		t.Fatalf("unknown table: got %+v", cols)
	}
}

func TestLoadDriverHistorySeed_Invalid(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"malformed":     `{"drivers": [`,
		"bad driver id": `{"drivers": [{"driver_id": 0, "display_name": "X"}]}`,
		"empty name":    `{"drivers": [{"driver_id": 1, "display_name": "  "}]}`,
		"empty status":  `{"job_history": [{"job_id": 1, "new_driver_id": 1, "job_datetime": "2024-03-11T08:00:00Z", "status": ""}]}`,
	}

	for name, body := range cases {
		path := filepath.Join(dir, name+".json")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		if _, err := LoadDriverHistorySeed(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}

	if _, err := LoadDriverHistorySeed(filepath.Join(dir, "missing.json")); err == nil {
		t.Errorf("missing file: expected an error")
	}
}

func TestUnconfiguredDriverRepository(t *testing.T) {
	repo := NewUnconfiguredDriverRepository("Missing required database env vars: PGHOST")

	err := repo.Ping(context.Background())
	if !errors.Is(err, domain.ErrDatabaseUnconfigured) {
		t.Fatalf("Ping: got %v, want ErrDatabaseUnconfigured", err)
	}
	if _, err := repo.GPSTrack(context.Background(), 1, time.Now()); !errors.Is(err, domain.ErrDatabaseUnconfigured) {
		t.Fatalf("GPSTrack: got %v", err)
	}
}

func TestMemoryDriverRepository_ConcurrentReads(t *testing.T) {
	repo := newTestMemoryRepo(t)
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	// readers share the maps without locks; run with -race
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := context.Background()
			if _, err := repo.ListDrivers(ctx); err != nil {
				errs <- err
				return
			}
			track, err := repo.GPSTrack(ctx, 101, day)
			if err != nil || len(track) != 7 {
				errs <- fmt.Errorf("gps track: %d points, err %v", len(track), err)
				return
			}
			jobs, err := repo.JobHistory(ctx, 101, day)
			if err != nil || len(jobs) != 4 {
				errs <- fmt.Errorf("job history: %d events, err %v", len(jobs), err)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
