package domain

import "time"

// GPSPoint is one telemetry sample of a driver's position.
// Speed is nil when the device did not report it; consumers treat that as stationary.
type GPSPoint struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
	Speed     *float64  `json:"speed,omitempty"`
}

// SpeedOrZero returns the reported speed, or 0 when absent.
func (p GPSPoint) SpeedOrZero() float64 {
	if p.Speed == nil {
		return 0
	}
	return *p.Speed
}

func (p GPSPoint) Coordinates() Coordinates {
	return Coordinates{Lon: p.Lng, Lat: p.Lat}
}
