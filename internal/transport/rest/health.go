package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

const healthTimeout = 2 * time.Second

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	DurationMs int64          `json:"duration_ms"`
}

// SchemaVersions reports the applied and the newest known migration version.
// *goose.Provider satisfies it.
type SchemaVersions interface {
	GetVersions(ctx context.Context) (current, target int64, err error)
}

type HealthHandler struct {
	db     *sql.DB
	schema SchemaVersions
}

func NewHealthHandler(db *sql.DB, schema SchemaVersions) *HealthHandler {
	return &HealthHandler{db: db, schema: schema}
}

// pingHandler reports liveness only.
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	writeHealthJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// healthCheckHandler reports readiness. An unreachable database is unhealthy
// (503); a reachable one with pending migrations is degraded (200).
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:     HealthHealthy,
		Components: map[string]CheckEntry{"database": h.checkDatabase(ctx)},
	}
	if h.schema != nil && resp.Components["database"].Status == HealthHealthy {
		resp.Components["schema"] = h.checkSchema(ctx)
	}
	for _, c := range resp.Components {
		if c.Status == HealthUnhealthy {
			resp.Status = HealthUnhealthy
			break
		}
		if c.Status == HealthDegraded {
			resp.Status = HealthDegraded
		}
	}
	resp.CheckedAt = time.Now()

	status := http.StatusOK
	if resp.Status == HealthUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeHealthJSON(w, status, resp)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckEntry {
	start := time.Now()
	entry := CheckEntry{Status: HealthHealthy}
	if err := h.db.PingContext(ctx); err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}
	entry.DurationMs = time.Since(start).Milliseconds()
	return entry
}

func (h *HealthHandler) checkSchema(ctx context.Context) CheckEntry {
	start := time.Now()
	current, target, err := h.schema.GetVersions(ctx)
	entry := CheckEntry{
		Status:     HealthHealthy,
		Details:    map[string]any{"current_version": current, "latest_version": target},
		DurationMs: time.Since(start).Milliseconds(),
	}
	switch {
	case err != nil:
		entry.Status = HealthDegraded
		entry.Message = err.Error()
	case current < target:
		entry.Status = HealthDegraded
		entry.Message = fmt.Sprintf("schema at version %d, latest is %d", current, target)
	}
	return entry
}

func writeHealthJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
