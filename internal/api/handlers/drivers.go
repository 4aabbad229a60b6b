package handlers

import (
	"daylog-service/internal/api/dto"
	"daylog-service/internal/domain"
	"daylog-service/internal/ports"
	"daylog-service/internal/services"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DriverHandler exposes the driver history endpoints.
type DriverHandler struct {
	Repo       ports.DriverRepository
	Days       *services.DriverDayService
	Policy     domain.ContainmentPolicy
	Production bool
	Now        func() time.Time
}

func (h *DriverHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *DriverHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.Repo.ListDrivers(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to fetch drivers")
		return
	}
	writeJSON(w, r, http.StatusOK, drivers)
}

// pathDriverDay reads {driverId} and the required date query parameter.
func (h *DriverHandler) pathDriverDay(w http.ResponseWriter, r *http.Request) (int64, time.Time, bool) {
	driverID, err := parseID(r.PathValue("driverId"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid driverId")
		return 0, time.Time{}, false
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		writeError(w, r, http.StatusBadRequest, "date query parameter is required (YYYY-MM-DD)")
		return 0, time.Time{}, false
	}
	day, err := parseDate(dateStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid date format")
		return 0, time.Time{}, false
	}
	return driverID, day, true
}

// GPS returns the raw GPS rows of a driver-day.
func (h *DriverHandler) GPS(w http.ResponseWriter, r *http.Request) {
	driverID, day, ok := h.pathDriverDay(w, r)
	if !ok {
		return
	}

	track, err := h.Repo.GPSTrack(r.Context(), driverID, day)
	if err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to fetch GPS data")
		return
	}
	writeJSON(w, r, http.StatusOK, track)
}

// Deliveries returns the raw job-history rows of a driver-day.
func (h *DriverHandler) Deliveries(w http.ResponseWriter, r *http.Request) {
	driverID, day, ok := h.pathDriverDay(w, r)
	if !ok {
		return
	}

	jobs, err := h.Repo.JobHistory(r.Context(), driverID, day)
	if err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to fetch deliveries")
		return
	}
	writeJSON(w, r, http.StatusOK, jobs)
}

// GeoJSON returns the driver-day as a FeatureCollection: the track as a
// LineString and one Point per stop.
func (h *DriverHandler) GeoJSON(w http.ResponseWriter, r *http.Request) {
	driverID, day, ok := h.pathDriverDay(w, r)
	if !ok {
		return
	}

	dd, err := h.Days.Get(r.Context(), driverID, day)
	if err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to fetch driver data")
		return
	}

	body, err := DriverDayFeatureCollection(dd).MarshalJSON()
	if err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to encode GeoJSON")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func DriverDayFeatureCollection(dd *domain.DriverDay) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if len(dd.GPSTrack) > 0 {
		line := make(orb.LineString, 0, len(dd.GPSTrack))
		for _, p := range dd.GPSTrack {
			line = append(line, p.Coordinates().Point())
		}
		var g orb.Geometry = line
		if len(line) == 1 {
			g = line[0]
		}
		f := geojson.NewFeature(g)
		f.Properties["kind"] = "track"
		f.Properties["driverId"] = dd.DriverID
		f.Properties["date"] = dd.Date.Format(dateLayout)
		f.Properties["start"] = dd.GPSTrack[0].Timestamp
		f.Properties["end"] = dd.GPSTrack[len(dd.GPSTrack)-1].Timestamp
		fc.Append(f)
	}

	status := make(map[string]domain.DeliveryStatus, len(dd.Deliveries))
	for _, d := range dd.Deliveries {
		status[d.StopID] = d.Status
	}

	for _, s := range dd.Stops {
		f := geojson.NewFeature(orb.Point{s.Lng, s.Lat})
		f.ID = s.ID
		f.Properties["kind"] = "stop"
		f.Properties["type"] = s.Type
		f.Properties["arrivalTime"] = s.ArrivalTime
		f.Properties["departureTime"] = s.DepartureTime
		f.Properties["duration"] = s.Duration
		if st, ok := status[s.ID]; ok {
			f.Properties["deliveryStatus"] = st
		}
		fc.Append(f)
	}

	return fc
}

// DriverDay returns the available dates of a driver, or with ?date= the full
// driver-day with an optional time-range view.
func (h *DriverHandler) DriverDay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	idStr := q.Get("driverId")
	if idStr == "" {
		writeError(w, r, http.StatusBadRequest, "driverId is required")
		return
	}
	driverID, err := parseID(idStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid driverId")
		return
	}

	dateStr := q.Get("date")
	if dateStr == "" {
		dates, err := h.Repo.AvailableDates(r.Context(), driverID)
		if err != nil {
			writeServiceError(w, r, err, h.Production, "Failed to fetch driver data")
			return
		}
		res := dto.AvailableDatesResponse{AvailableDates: make([]string, 0, len(dates))}
		for _, d := range dates {
			res.AvailableDates = append(res.AvailableDates, d.Format(dateLayout))
		}
		writeJSON(w, r, http.StatusOK, res)
		return
	}

	day, err := parseDate(dateStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid date format")
		return
	}

	view, ok := h.viewParams(w, r, day)
	if !ok {
		return
	}

	dd, err := h.Days.Get(r.Context(), driverID, day)
	if err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to fetch driver data")
		return
	}

	writeJSON(w, r, http.StatusOK, view.response(dd))
}

// SampleDay serves the bundled demo driver-day.
func (h *DriverHandler) SampleDay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	day := h.now().UTC()
	if s := q.Get("date"); s != "" {
		d, err := parseDate(s)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "Invalid date format")
			return
		}
		day = d
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	seed := int64(1)
	if s := q.Get("seed"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid seed")
			return
		}
		seed = v
	}

	view, ok := h.viewParams(w, r, day)
	if !ok {
		return
	}

	writeJSON(w, r, http.StatusOK, view.response(services.SampleDriverDay(day, seed)))
}

type viewRequest struct {
	rng      *domain.TimeRange
	policy   domain.ContainmentPolicy
	selected string
}

// viewParams reads start, end, policy and selectedStopId.
// A zero-width or inverted range is accepted and selects nothing.
func (h *DriverHandler) viewParams(w http.ResponseWriter, r *http.Request, day time.Time) (viewRequest, bool) {
	q := r.URL.Query()
	v := viewRequest{policy: h.Policy, selected: strings.TrimSpace(q.Get("selectedStopId"))}
	if v.policy == "" {
		v.policy = domain.DefaultContainmentPolicy
	}

	if p := q.Get("policy"); p != "" {
		policy, err := domain.ParseContainmentPolicy(p)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return viewRequest{}, false
		}
		v.policy = policy
	}

	startStr, endStr := q.Get("start"), q.Get("end")
	if startStr == "" && endStr == "" {
		return v, true
	}
	if startStr == "" || endStr == "" {
		writeError(w, r, http.StatusBadRequest, "start and end must be given together")
		return viewRequest{}, false
	}

	start, err := parseClock(day, startStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return viewRequest{}, false
	}
	end, err := parseClock(day, endStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return viewRequest{}, false
	}
	v.rng = &domain.TimeRange{Start: start, End: end}
	return v, true
}

func (v viewRequest) response(dd *domain.DriverDay) dto.DriverDayResponse {
	if v.rng == nil && v.selected == "" {
		return dto.NewDriverDayResponse(dd, nil)
	}
	view := services.ApplyTimeFilter(dd, v.rng, v.policy, v.selected)
	return dto.NewDriverDayResponse(dd, &view)
}
