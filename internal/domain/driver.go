package domain

import "time"

type Driver struct {
	ID          int64   `json:"driver_id"`
	DisplayName string  `json:"display_name"`
	VehicleID   *string `json:"vehicle_id,omitempty"`
}

// JobEvent is one row of the job-history table for a driver-day.
// Extra holds any additional non-null columns joined onto the row.
type JobEvent struct {
	JobID       int64          `json:"job_id"`
	JobDatetime time.Time      `json:"job_datetime"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	Status      string         `json:"status"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// Job-history statuses the dashboard cares about.
const (
	JobStatusInTransit      = "in transit"
	JobStatusOrderDelivered = "order delivered"
)

// DriverDay is the complete bundle for one driver on one calendar date.
// It is built in a single pass and never updated afterwards.
type DriverDay struct {
	DriverID   int64      `json:"driverId"`
	DriverName string     `json:"driverName"`
	Date       time.Time  `json:"date"`
	GPSTrack   []GPSPoint `json:"gpsTrack"`
	Stops      []Stop     `json:"stops"`
	Deliveries []Delivery `json:"deliveries"`
}
