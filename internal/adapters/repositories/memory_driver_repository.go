package repositories

import (
	"context"
	"daylog-service/internal/domain"
	"daylog-service/internal/ports"
	"sort"
	"time"
)

// In-memory implementation of the DriverRepository port, filled from a seed.
// It answers the same queries as the Postgres repository without a database.
// It is read-only after construction, so concurrent reads need no locking.
type MemoryDriverRepository struct {
	drivers map[int64]domain.Driver
	gps     map[int64][]domain.GPSPoint
	jobs    map[int64][]domain.JobEvent
}

var _ ports.DriverRepository = (*MemoryDriverRepository)(nil)

func NewMemoryDriverRepository(seed *DriverHistorySeed) *MemoryDriverRepository {
	m := &MemoryDriverRepository{
		drivers: make(map[int64]domain.Driver),
		gps:     make(map[int64][]domain.GPSPoint),
		jobs:    make(map[int64][]domain.JobEvent),
	}
	if seed == nil {
		return m
	}

	for _, d := range seed.Drivers {
		m.drivers[d.DriverID] = domain.Driver{ID: d.DriverID, DisplayName: d.DisplayName, VehicleID: d.VehicleID}
	}

	for _, g := range seed.GPS {
		m.gps[g.DriverID] = append(m.gps[g.DriverID], domain.GPSPoint{
			Lat: g.Lat, Lng: g.Lng, Timestamp: g.Datetime.UTC(), Speed: g.Speed,
		})
	}
	for id := range m.gps {
		track := m.gps[id]
		sort.SliceStable(track, func(i, j int) bool { return track[i].Timestamp.Before(track[j].Timestamp) })
	}

	details := make(map[int64]map[string]any, len(seed.Jobs))
	for _, j := range seed.Jobs {
		extra := map[string]any{}
		putString(extra, domain.JobDetailCustomerName, j.CustomerName)
		putString(extra, domain.JobDetailAddress, j.Address)
		putString(extra, domain.JobDetailOrderRef, j.OrderRef)
		putString(extra, domain.JobDetailNotes, j.Notes)
		if j.PackageCount != nil {
			extra[domain.JobDetailPackageCount] = *j.PackageCount
		}
		details[j.JobID] = extra
	}

	for _, j := range seed.JobHistory {
		if j.Latitude == nil || j.Longitude == nil {
			continue
		}
		if j.Status != domain.JobStatusInTransit && j.Status != domain.JobStatusOrderDelivered {
			continue
		}
		ev := domain.JobEvent{
			JobID:       j.JobID,
			JobDatetime: j.JobDatetime.UTC(),
			Latitude:    *j.Latitude,
			Longitude:   *j.Longitude,
			Status:      j.Status,
		}
		if extra := details[j.JobID]; len(extra) > 0 {
			ev.Extra = make(map[string]any, len(extra))
			for k, v := range extra {
				ev.Extra[k] = v
			}
		}
		m.jobs[j.DriverID] = append(m.jobs[j.DriverID], ev)
	}
	for id := range m.jobs {
		events := m.jobs[id]
		sort.SliceStable(events, func(i, j int) bool { return events[i].JobDatetime.Before(events[j].JobDatetime) })
	}

	return m
}

func putString(m map[string]any, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func (m *MemoryDriverRepository) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	drivers := make([]domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		drivers = append(drivers, d)
	}
	sort.Slice(drivers, func(i, j int) bool {
		if drivers[i].DisplayName != drivers[j].DisplayName {
			return drivers[i].DisplayName < drivers[j].DisplayName
		}
		return drivers[i].ID < drivers[j].ID
	})
	return drivers, nil
}

func (m *MemoryDriverRepository) GetDriver(ctx context.Context, driverID int64) (*domain.Driver, error) {
	d, ok := m.drivers[driverID]
	if !ok {
		return nil, domain.ErrDriverNotFound
	}
	return &d, nil
}

func (m *MemoryDriverRepository) GPSTrack(ctx context.Context, driverID int64, day time.Time) ([]domain.GPSPoint, error) {
	track := make([]domain.GPSPoint, 0)
	for _, p := range m.gps[driverID] {
		if sameDate(p.Timestamp, day) {
			track = append(track, p)
		}
	}
	return track, nil
}

func (m *MemoryDriverRepository) JobHistory(ctx context.Context, driverID int64, day time.Time) ([]domain.JobEvent, error) {
	events := make([]domain.JobEvent, 0)
	for _, ev := range m.jobs[driverID] {
		if sameDate(ev.JobDatetime, day) {
			events = append(events, ev)
		}
	}
	return events, nil
}

func (m *MemoryDriverRepository) AvailableDates(ctx context.Context, driverID int64) ([]time.Time, error) {
	seen := make(map[time.Time]struct{})
	dates := make([]time.Time, 0)
	for _, p := range m.gps[driverID] {
		t := p.Timestamp.UTC()
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	if len(dates) > availableDatesLimit {
		dates = dates[:availableDatesLimit]
	}
	return dates, nil
}

var memoryTables = map[string][]ports.ColumnInfo{
	"tbl_driver": {
		{Name: "driver_id", DataType: "bigint"},
		{Name: "display_name", DataType: "text"},
		{Name: "vehicle_id", DataType: "text", Nullable: true},
	},
	"tbl_driver_stats": {
		{Name: "id", DataType: "bigint"},
		{Name: "driver_id", DataType: "bigint"},
		{Name: "lat", DataType: "double precision"},
		{Name: "lng", DataType: "double precision"},
		{Name: "datetime", DataType: "timestamp without time zone"},
		{Name: "speed", DataType: "double precision", Nullable: true},
	},
	"tbl_job_history": {
		{Name: "id", DataType: "bigint"},
		{Name: "job_id", DataType: "bigint"},
		{Name: "new_driver_id", DataType: "bigint"},
		{Name: "job_datetime", DataType: "timestamp without time zone"},
		{Name: "latitude", DataType: "double precision", Nullable: true},
		{Name: "longitude", DataType: "double precision", Nullable: true},
		{Name: "status", DataType: "text"},
	},
	"tbl_job": {
		{Name: "job_id", DataType: "bigint"},
		{Name: "customer_name", DataType: "text", Nullable: true},
		{Name: "address", DataType: "text", Nullable: true},
		{Name: "order_ref", DataType: "text", Nullable: true},
		{Name: "notes", DataType: "text", Nullable: true},
		{Name: "package_count", DataType: "integer", Nullable: true},
	},
}

func (m *MemoryDriverRepository) DescribeTable(ctx context.Context, table string) ([]ports.ColumnInfo, error) {
	return memoryTables[table], nil
}

func (m *MemoryDriverRepository) Ping(ctx context.Context) error { return nil }
