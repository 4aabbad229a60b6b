package services

import (
	"daylog-service/internal/domain"
	"math"
	"time"

	"github.com/paulmach/orb"
)

// EarthRadiusKm is the mean Earth radius used for track distances.
const EarthRadiusKm = 6371.0

// ActiveTime is a duration split into whole hours and remainder minutes.
type ActiveTime struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// TrackStatistics summarizes a GPS track.
type TrackStatistics struct {
	PointCount      int        `json:"pointCount"`
	AverageSpeed    float64    `json:"averageSpeed"`
	TotalDistanceKm float64    `json:"totalDistanceKm"`
	ActiveTime      ActiveTime `json:"activeTime"`
	Bounds          *orb.Bound `json:"bounds,omitempty"`
}

// HaversineKm returns the great-circle distance between two samples.
func HaversineKm(p, q domain.GPSPoint) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := q.Lat * math.Pi / 180
	dLat := (q.Lat - p.Lat) * math.Pi / 180
	dLng := (q.Lng - p.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	a := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	// Floating error can push a marginally above 1 for antipodal samples.
	a = math.Min(math.Max(a, 0), 1)

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// TotalDistanceKm sums haversine distances between consecutive samples.
func TotalDistanceKm(track []domain.GPSPoint) float64 {
	total := 0.0
	for i := 1; i < len(track); i++ {
		total += HaversineKm(track[i-1], track[i])
	}
	return total
}

// AverageSpeed is the mean speed over samples reporting a positive speed, or 0.
func AverageSpeed(track []domain.GPSPoint) float64 {
	sum := 0.0
	n := 0
	for _, p := range track {
		if s := p.SpeedOrZero(); s > 0 {
			sum += s
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// TrackActiveTime is the span from the first to the last sample.
func TrackActiveTime(track []domain.GPSPoint) ActiveTime {
	if len(track) < 2 {
		return ActiveTime{}
	}

	span := track[len(track)-1].Timestamp.Sub(track[0].Timestamp)
	if span < 0 {
		span = 0
	}
	total := int(span / time.Minute)
	return ActiveTime{Hours: total / 60, Minutes: total % 60}
}

// TrackBounds returns the bounding box of the track, or nil for an empty track.
func TrackBounds(track []domain.GPSPoint) *orb.Bound {
	if len(track) == 0 {
		return nil
	}

	mp := make(orb.MultiPoint, 0, len(track))
	for _, p := range track {
		mp = append(mp, p.Coordinates().Point())
	}
	b := mp.Bound()
	return &b
}

// ComputeTrackStats computes every track statistic in one call.
func ComputeTrackStats(track []domain.GPSPoint) TrackStatistics {
	return TrackStatistics{
		PointCount:      len(track),
		AverageSpeed:    AverageSpeed(track),
		TotalDistanceKm: TotalDistanceKm(track),
		ActiveTime:      TrackActiveTime(track),
		Bounds:          TrackBounds(track),
	}
}
