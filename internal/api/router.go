package api

import (
	"daylog-service/internal/api/handlers"
	"log/slog"
	"net/http"
)

func withDefaults(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// NewDriverRouter wires the driver history endpoints and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewDriverRouter(drivers *handlers.DriverHandler, health *handlers.HealthHandler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("GET /api/health", health.APIHealth)
	mux.HandleFunc("GET /api/db/health", health.DBHealth)
	mux.HandleFunc("GET /api/db/schema", health.Schema)

	mux.HandleFunc("GET /api/drivers", drivers.ListDrivers)
	mux.HandleFunc("GET /api/drivers/{driverId}/gps", drivers.GPS)
	mux.HandleFunc("GET /api/drivers/{driverId}/deliveries", drivers.Deliveries)
	mux.HandleFunc("GET /api/drivers/{driverId}/geojson", drivers.GeoJSON)
	mux.HandleFunc("GET /api/driver-day", drivers.DriverDay)
	mux.HandleFunc("GET /api/sample-day", drivers.SampleDay)

	return chain(mux,
		requestIDMiddleware,
		loggingMiddleware(withDefaults(logger).With("component", "http")),
		corsMiddleware("GET, OPTIONS"),
		gzipMiddleware,
	)
}

// NewTrackerRouter wires the activity tracker endpoints and returns an http.Handler.
func NewTrackerRouter(tracker *handlers.TrackerHandler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handlers.Health)

	mux.HandleFunc("GET /api/settings", tracker.GetSettings)
	mux.HandleFunc("PUT /api/settings", tracker.UpdateSettings)

	mux.HandleFunc("GET /api/activities", tracker.ListActivities)
	mux.HandleFunc("POST /api/activities", tracker.CreateActivity)
	mux.HandleFunc("GET /api/activities/{id}", tracker.GetActivity)
	mux.HandleFunc("PUT /api/activities/{id}", tracker.UpdateActivity)
	mux.HandleFunc("DELETE /api/activities/{id}", tracker.DeleteActivity)

	mux.HandleFunc("GET /api/sleep/current", tracker.CurrentSleep)
	mux.HandleFunc("POST /api/sleep/start", tracker.StartSleep)
	mux.HandleFunc("POST /api/sleep/end", tracker.EndSleep)

	mux.HandleFunc("GET /api/stats/today", tracker.TodayStats)

	mux.HandleFunc("GET /api/export", tracker.Export)
	mux.HandleFunc("POST /api/import", tracker.Import)
	mux.HandleFunc("DELETE /api/data", tracker.ClearData)

	return chain(mux,
		requestIDMiddleware,
		loggingMiddleware(withDefaults(logger).With("component", "http")),
		corsMiddleware("GET, POST, PUT, DELETE, OPTIONS"),
		gzipMiddleware,
	)
}
