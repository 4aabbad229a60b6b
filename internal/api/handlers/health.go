package handlers

import (
	"context"
	"daylog-service/internal/api/dto"
	"daylog-service/internal/platform/db"
	"daylog-service/internal/ports"
	"net/http"
	"time"
)

const pingTimeout = 5 * time.Second

// Health provides a minimal liveness check endpoint.
func Health(w http.ResponseWriter, r *http.Request) {
	res := map[string]string{"status": "ok"}
	writeJSON(w, r, http.StatusOK, res)
}

// HealthHandler reports the driver database's reachability.
type HealthHandler struct {
	Repo       ports.DriverRepository
	Token      string
	Production bool
}

// APIHealth always answers 200; the body says whether the database is connected.
func (h *HealthHandler) APIHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	res := dto.HealthResponse{Status: "healthy", Database: "connected", Timestamp: time.Now().UTC()}
	if err := h.Repo.Ping(ctx); err != nil {
		res.Status = "degraded"
		res.Database = "disconnected"
		if !h.Production {
			res.Error = err.Error()
		}
	}
	writeJSON(w, r, http.StatusOK, res)
}

// DBHealth is the deploy probe: 200 when Postgres answers, 503 otherwise.
// When a token is configured the caller must send it in x-healthcheck-token.
func (h *HealthHandler) DBHealth(w http.ResponseWriter, r *http.Request) {
	if h.Token != "" && r.Header.Get("x-healthcheck-token") != h.Token {
		writeJSON(w, r, http.StatusUnauthorized, dto.DBHealthResponse{OK: false, Error: "Unauthorized"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.Repo.Ping(ctx); err != nil {
		c := db.Classify(err, h.Production)
		msg := c.Message
		if msg == "" {
			msg = "Database not reachable"
		}
		writeJSON(w, r, c.Status, dto.DBHealthResponse{OK: false, Error: msg})
		return
	}
	writeJSON(w, r, http.StatusOK, dto.DBHealthResponse{OK: true})
}

// Schema describes one table of the driver database.
func (h *HealthHandler) Schema(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	if table == "" {
		writeError(w, r, http.StatusBadRequest, "table query parameter is required")
		return
	}

	columns, err := h.Repo.DescribeTable(r.Context(), table)
	if err != nil {
		writeServiceError(w, r, err, h.Production, "Failed to describe table")
		return
	}
	if len(columns) == 0 {
		writeError(w, r, http.StatusNotFound, "table not found")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.SchemaResponse{Table: table, Columns: columns})
}
