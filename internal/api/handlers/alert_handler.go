package handlers

import (
	"net/http"

	"complyhr/internal/engine/alerts"
	"complyhr/internal/engine/dashboard"
	"complyhr/internal/platform/audit"
)

type AlertHandler struct {
	alerts *alerts.Service
}

func NewAlertHandler(alertSvc *alerts.Service) *AlertHandler {
	return &AlertHandler{alerts: alertSvc}
}

func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.alerts.List(r.Context(), tenantOf(r))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type AcknowledgeAlertRequest struct {
	ActionTaken string `json:"action_taken"`
}

func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	var req AcknowledgeAlertRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.alerts.Acknowledge(r.Context(), tenantOf(r), param(r, "id"), req.ActionTaken); err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type AuditHandler struct {
	audit *audit.Logger
}

func NewAuditHandler(auditLog *audit.Logger) *AuditHandler {
	return &AuditHandler{audit: auditLog}
}

// List returns the tenant's audit trail, newest first. limit is capped at 200.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	logs, err := h.audit.List(r.Context(), tenantOf(r).CompanyID, audit.Filter{
		EntityType: r.URL.Query().Get("entityType"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

type DashboardHandler struct {
	dashboard *dashboard.Service
}

func NewDashboardHandler(dashboardSvc *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboardSvc}
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.Summary(r.Context(), tenantOf(r))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
