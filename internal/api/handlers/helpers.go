package handlers

import (
	"daylog-service/internal/domain"
	"daylog-service/internal/platform/db"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout   = "2006-01-02"
	maxBodyBytes = 10 << 20
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "encode failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeServiceError maps domain and storage errors to a status.
// fallback is shown when the real message must stay hidden.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, production bool, fallback string) {
	switch {
	case errors.Is(err, domain.ErrDriverNotFound):
		writeError(w, r, http.StatusNotFound, "Driver not found")
		return
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
		return
	case errors.Is(err, domain.ErrInvalidActivity), errors.Is(err, domain.ErrInvalidTimeRange):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, domain.ErrSleepAlreadyActive), errors.Is(err, domain.ErrNoActiveSleep):
		writeError(w, r, http.StatusConflict, err.Error())
		return
	}

	c := db.Classify(err, production)
	if c.Status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), fallback, "method", r.Method, "path", r.URL.Path, "status", c.Status, "error", err)
	}
	msg := c.Message
	if msg == "" {
		msg = fallback
	}
	writeError(w, r, c.Status, msg)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// parseDate reads a YYYY-MM-DD calendar date as UTC midnight.
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// parseClock reads either an RFC 3339 instant or a clock time (15:04 or 15:04:05) on day.
func parseClock(day time.Time, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if c, err := time.Parse(layout, s); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), c.Second(), 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}
