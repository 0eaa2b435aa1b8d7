package handlers

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
)

type HealthHandler struct {
	db *sqlx.DB
}

func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "healthy"}
	status, code := "healthy", http.StatusOK

	if err := h.db.PingContext(r.Context()); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		status, code = "degraded", http.StatusServiceUnavailable
	}

	writeJSON(w, code, struct {
		Status    string            `json:"status"`
		Timestamp int64             `json:"timestamp"`
		Checks    map[string]string `json:"checks"`
	}{
		Status:    status,
		Timestamp: time.Now().Unix(),
		Checks:    checks,
	})
}
