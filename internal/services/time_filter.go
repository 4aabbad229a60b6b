package services

import (
	"daylog-service/internal/domain"
)

// FilterTrack keeps points whose timestamp lies in r (inclusive). A nil range is the
// identity. Order is preserved.
func FilterTrack(track []domain.GPSPoint, r *domain.TimeRange) []domain.GPSPoint {
	if r == nil {
		return track
	}

	out := make([]domain.GPSPoint, 0, len(track))
	for _, p := range track {
		if r.Contains(p.Timestamp) {
			out = append(out, p)
		}
	}
	return out
}

// FilterStops keeps stops that pass r under policy. A nil range is the identity.
func FilterStops(stops []domain.Stop, r *domain.TimeRange, policy domain.ContainmentPolicy) []domain.Stop {
	if r == nil {
		return stops
	}

	out := make([]domain.Stop, 0, len(stops))
	for _, s := range stops {
		if policy.Keeps(*r, s) {
			out = append(out, s)
		}
	}
	return out
}

// FilterDeliveries keeps deliveries whose stop survived filtering.
func FilterDeliveries(deliveries []domain.Delivery, stops []domain.Stop) []domain.Delivery {
	ids := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		ids[s.ID] = struct{}{}
	}

	out := make([]domain.Delivery, 0, len(deliveries))
	for _, d := range deliveries {
		if _, ok := ids[d.StopID]; ok {
			out = append(out, d)
		}
	}
	return out
}

// FilteredView is what a client sees of a driver-day after a time filter.
type FilteredView struct {
	Range          *domain.TimeRange
	Policy         domain.ContainmentPolicy
	GPSTrack       []domain.GPSPoint
	Stops          []domain.Stop
	Deliveries     []domain.Delivery
	SelectedStopID string
}

// ApplyTimeFilter narrows a driver-day to r. A selected stop that does not survive
// the filter is cleared so no selection dangles across a filter change.
func ApplyTimeFilter(
	dd *domain.DriverDay,
	r *domain.TimeRange,
	policy domain.ContainmentPolicy,
	selectedStopID string,
) FilteredView {
	stops := FilterStops(dd.Stops, r, policy)

	view := FilteredView{
		Range:      r,
		Policy:     policy,
		GPSTrack:   FilterTrack(dd.GPSTrack, r),
		Stops:      stops,
		Deliveries: FilterDeliveries(dd.Deliveries, stops),
	}

	for _, s := range stops {
		if s.ID == selectedStopID {
			view.SelectedStopID = selectedStopID
			break
		}
	}

	return view
}
