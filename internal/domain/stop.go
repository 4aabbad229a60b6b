package domain

import "time"

// StopType classifies why a driver was stationary.
type StopType string

const (
	StopPickup    StopType = "pickup"
	StopDelivered StopType = "delivered"
	StopBreak     StopType = "break"
	StopDelivery  StopType = "delivery"
	StopUnknown   StopType = "unknown"
)

// Represents a time interval during which the driver was effectively stationary.
// ArrivalTime never follows DepartureTime. Duration is in whole minutes.
type Stop struct {
	ID            string    `json:"id"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
	ArrivalTime   time.Time `json:"arrivalTime"`
	DepartureTime time.Time `json:"departureTime"`
	Duration      int       `json:"duration"`
	Type          StopType  `json:"type"`
}
