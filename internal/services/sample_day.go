package services

import (
	"daylog-service/internal/domain"
	"fmt"
	"math/rand"
	"time"
)

type waypoint struct{ lat, lng float64 }

// Depot, seven delivery areas and the return leg through central London.
var sampleRoute = []waypoint{
	{51.5074, -0.1278},
	{51.5124, -0.1200},
	{51.5180, -0.1100},
	{51.5220, -0.0950},
	{51.5150, -0.0850},
	{51.5080, -0.0900},
	{51.5000, -0.1000},
	{51.4950, -0.1150},
	{51.5074, -0.1278},
}

var sampleAddresses = []string{
	"123 Baker Street",
	"45 Oxford Street",
	"78 Regent Street",
	"12 Piccadilly",
	"89 Fleet Street",
	"34 Strand",
	"56 Whitehall",
	"90 Victoria Street",
}

var sampleCustomers = []string{
	"John Smith",
	"Emma Wilson",
	"James Brown",
	"Sarah Davis",
	"Michael Johnson",
	"Lisa Anderson",
	"David Taylor",
	"Jennifer White",
}

const (
	SampleDriverID   = 1
	SampleDriverName = "Alex Thompson"
)

// SampleDriverDay builds a demonstration driver-day for clients without a backend.
// The same date and seed always produce the same day.
func SampleDriverDay(date time.Time, seed int64) *domain.DriverDay {
	rng := rand.New(rand.NewSource(seed))
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	track := sampleTrack(day, rng)
	stops := ClusterStops(track, DefaultClusterOptions())
	deliveries := sampleDeliveries(stops, rng)

	return &domain.DriverDay{
		DriverID:   SampleDriverID,
		DriverName: SampleDriverName,
		Date:       day,
		GPSTrack:   track,
		Stops:      stops,
		Deliveries: deliveries,
	}
}

func sampleTrack(day time.Time, rng *rand.Rand) []domain.GPSPoint {
	points := make([]domain.GPSPoint, 0, 320)
	current := day.Add(8 * time.Hour)

	jitter := func() float64 { return (rng.Float64() - 0.5) * 0.001 }
	speed := func(v float64) *float64 { return &v }

	for i := 0; i < len(sampleRoute)-1; i++ {
		from, to := sampleRoute[i], sampleRoute[i+1]

		// Dwell at each delivery area: stationary samples one to two minutes apart.
		if i > 0 {
			dwell := 4 + rng.Intn(6)
			for k := 0; k < dwell; k++ {
				current = current.Add(time.Minute + time.Duration(rng.Int63n(int64(time.Minute))))
				points = append(points, domain.GPSPoint{
					Lat:       from.lat + jitter()/10,
					Lng:       from.lng + jitter()/10,
					Timestamp: current,
					Speed:     speed(rng.Float64() * 2),
				})
			}
		}

		segment := 20 + rng.Intn(10)
		for j := 1; j <= segment; j++ {
			progress := float64(j) / float64(segment)
			current = current.Add(30*time.Second + time.Duration(rng.Int63n(int64(90*time.Second))))
			points = append(points, domain.GPSPoint{
				Lat:       from.lat + (to.lat-from.lat)*progress + jitter(),
				Lng:       from.lng + (to.lng-from.lng)*progress + jitter(),
				Timestamp: current,
				Speed:     speed(15 + rng.Float64()*35),
			})
		}
	}

	return points
}

func sampleDeliveries(stops []domain.Stop, rng *rand.Rand) []domain.Delivery {
	out := make([]domain.Delivery, 0, len(stops))
	n := 0
	for _, s := range stops {
		if s.Type != domain.StopDelivery {
			continue
		}

		status := domain.DeliveryCompleted
		if rng.Float64() <= 0.1 {
			status = domain.DeliveryFailed
		}

		details := domain.JobDetails{}
		details.Set(domain.JobDetailAddress, sampleAddresses[n%len(sampleAddresses)])
		details.Set(domain.JobDetailCustomerName, sampleCustomers[n%len(sampleCustomers)])
		if rng.Float64() > 0.7 {
			details.Set(domain.JobDetailNotes, "Left with neighbor")
		}

		completedAt := s.DepartureTime
		n++
		out = append(out, domain.Delivery{
			ID:          fmt.Sprintf("delivery-%d", n),
			StopID:      s.ID,
			Status:      status,
			CompletedAt: &completedAt,
			JobDetails:  details,
		})
	}
	return out
}
