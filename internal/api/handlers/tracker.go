package handlers

import (
	"daylog-service/internal/api/dto"
	"daylog-service/internal/domain"
	"daylog-service/internal/ports"
	"daylog-service/internal/services"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// TrackerHandler exposes the activity tracker endpoints.
type TrackerHandler struct {
	Repo       ports.ActivityRepository
	Stats      *services.StatsService
	Location   *time.Location
	Production bool
	Now        func() time.Time
}

func (h *TrackerHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *TrackerHandler) location() *time.Location {
	if h.Location != nil {
		return h.Location
	}
	return time.Local
}

func (h *TrackerHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := h.Repo.GetSettings(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to fetch settings")
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

func (h *TrackerHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req dto.SettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Repo.UpdateSettings(r.Context(), domain.Settings{BabyName: req.BabyName, BabyDOB: req.BabyDOB}); err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to update settings")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.SuccessResponse{Success: true})
}

// ListActivities supports ?type=, ?date=YYYY-MM-DD (a local calendar day), ?limit= and ?offset=.
func (h *TrackerHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f domain.ActivityFilter

	if t := q.Get("type"); t != "" && t != "all" {
		f.Type = domain.ActivityType(t)
		if !f.Type.Valid() {
			writeError(w, r, http.StatusBadRequest, "unknown activity type")
			return
		}
	}

	if d := q.Get("date"); d != "" {
		day, err := time.ParseInLocation(dateLayout, d, h.location())
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "Invalid date format")
			return
		}
		bounds := domain.LocalDay(day, h.location())
		f.Day = &bounds
	}

	var err error
	if f.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid limit")
		return
	}
	if f.Offset, err = intParam(q.Get("offset")); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid offset")
		return
	}

	activities, err := h.Repo.ListActivities(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to fetch activities")
		return
	}
	writeJSON(w, r, http.StatusOK, activities)
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, errors.New("invalid integer")
	}
	return v, nil
}

func (h *TrackerHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	a, err := h.Repo.GetActivity(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to fetch activity")
		return
	}
	writeJSON(w, r, http.StatusOK, a)
}

// CreateActivity stamps feeds and diapers with the current time when none is given.
func (h *TrackerHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req dto.ActivityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	a := req.Activity()
	if a.Type != domain.ActivitySleep && a.Time == nil {
		now := h.now().UTC()
		a.Time = &now
	}

	created, err := h.Repo.CreateActivity(r.Context(), a)
	if err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to create activity")
		return
	}
	writeJSON(w, r, http.StatusCreated, created)
}

func (h *TrackerHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	var req dto.ActivityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	a := req.Activity()
	a.ID = id
	updated, err := h.Repo.UpdateActivity(r.Context(), a)
	if err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to update activity")
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}

func (h *TrackerHandler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.Repo.DeleteActivity(r.Context(), id); err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to delete activity")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *TrackerHandler) CurrentSleep(w http.ResponseWriter, r *http.Request) {
	session, err := h.Repo.GetSleepSession(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to fetch sleep session")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewSleepStatusResponse(session))
}

// StartSleep answers 409 when a session is already running.
func (h *TrackerHandler) StartSleep(w http.ResponseWriter, r *http.Request) {
	session, err := h.Repo.StartSleep(r.Context(), h.now().UTC())
	if err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to start sleep")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewSleepStatusResponse(session))
}

// EndSleep answers 409 when no session is running.
func (h *TrackerHandler) EndSleep(w http.ResponseWriter, r *http.Request) {
	sleep, err := h.Repo.EndSleep(r.Context(), h.now().UTC())
	if err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to end sleep")
		return
	}
	writeJSON(w, r, http.StatusOK, sleep)
}

func (h *TrackerHandler) TodayStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.Today(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to compute statistics")
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

func (h *TrackerHandler) Export(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Repo.Export(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to export data")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewExportResponse(snap, h.now()))
}

// Import applies the settings and appends the activities all-or-nothing.
func (h *TrackerHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req dto.ImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var settings *domain.Settings
	if req.Settings != nil {
		settings = &domain.Settings{BabyName: req.Settings.BabyName, BabyDOB: req.Settings.BabyDOB}
	}
	activities := make([]domain.Activity, 0, len(req.Activities))
	for _, a := range req.Activities {
		activities = append(activities, a.Activity())
	}

	if err := h.Repo.Import(r.Context(), settings, activities); err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to import data")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.SuccessResponse{Success: true, Message: "Data imported successfully"})
}

func (h *TrackerHandler) ClearData(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.ClearAll(r.Context()); err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to clear data")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.SuccessResponse{Success: true})
}
