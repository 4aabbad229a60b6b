package dto

import (
	"daylog-service/internal/domain"
	"daylog-service/internal/ports"
	"daylog-service/internal/services"
	"time"
)

type AvailableDatesResponse struct {
	AvailableDates []string `json:"availableDates"`
}

type FilterResponse struct {
	Start  time.Time                `json:"start"`
	End    time.Time                `json:"end"`
	Policy domain.ContainmentPolicy `json:"policy"`
}

type FilteredViewResponse struct {
	GPSTrack   []domain.GPSPoint `json:"gpsTrack"`
	Stops      []domain.Stop     `json:"stops"`
	Deliveries []domain.Delivery `json:"deliveries"`
}

type TrackStatsResponse struct {
	Full     services.TrackStatistics  `json:"full"`
	Filtered *services.TrackStatistics `json:"filtered,omitempty"`
}

// DriverDayResponse is the driver-day plus the optional filtered view.
type DriverDayResponse struct {
	*domain.DriverDay
	Filter         *FilterResponse       `json:"filter,omitempty"`
	Filtered       *FilteredViewResponse `json:"filtered,omitempty"`
	Stats          TrackStatsResponse    `json:"stats"`
	SelectedStopID string                `json:"selectedStopId,omitempty"`
}

func NewDriverDayResponse(dd *domain.DriverDay, view *services.FilteredView) DriverDayResponse {
	res := DriverDayResponse{
		DriverDay: dd,
		Stats:     TrackStatsResponse{Full: services.ComputeTrackStats(dd.GPSTrack)},
	}
	if view == nil {
		return res
	}

	if view.Range != nil {
		res.Filter = &FilterResponse{Start: view.Range.Start, End: view.Range.End, Policy: view.Policy}
	}
	res.Filtered = &FilteredViewResponse{
		GPSTrack:   view.GPSTrack,
		Stops:      view.Stops,
		Deliveries: view.Deliveries,
	}
	filtered := services.ComputeTrackStats(view.GPSTrack)
	res.Stats.Filtered = &filtered
	res.SelectedStopID = view.SelectedStopID
	return res
}

type SchemaResponse struct {
	Table   string             `json:"table"`
	Columns []ports.ColumnInfo `json:"columns"`
}

type DBHealthResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
