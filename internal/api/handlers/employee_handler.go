package handlers

import (
	"net/http"
	"time"

	"complyhr/internal/engine/compliance"
	"complyhr/internal/engine/employees"
	"complyhr/internal/engine/rtw"
	"complyhr/internal/pkg/errors"
	"complyhr/internal/platform/models"
)

type EmployeeHandler struct {
	employees *employees.Service
	rtw       *rtw.Service
}

func NewEmployeeHandler(employeeSvc *employees.Service, rtwSvc *rtw.Service) *EmployeeHandler {
	return &EmployeeHandler{employees: employeeSvc, rtw: rtwSvc}
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in employees.Input
	if !decode(w, r, &in) {
		return
	}
	emp, err := h.employees.Create(r.Context(), tenantOf(r), in)
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, emp)
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.employees.List(r.Context(), tenantOf(r), queryBool(r, "active"))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	emp, err := h.employees.Get(r.Context(), tenantOf(r), param(r, "id"))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in employees.Input
	if !decode(w, r, &in) {
		return
	}
	emp, err := h.employees.Update(r.Context(), tenantOf(r), param(r, "id"), in)
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

func (h *EmployeeHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.employees.Deactivate(r.Context(), tenantOf(r), param(r, "id")); err != nil {
		respond(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EmployeeHandler) CreateRTWCheck(w http.ResponseWriter, r *http.Request) {
	var in rtw.CreateInput
	if !decode(w, r, &in) {
		return
	}
	check, err := h.rtw.Create(r.Context(), tenantOf(r), in)
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, check)
}

func (h *EmployeeHandler) ListRTWChecks(w http.ResponseWriter, r *http.Request) {
	checks, err := h.rtw.List(r.Context(), tenantOf(r), r.URL.Query().Get("employee_id"))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, checks)
}

type HolidayRequest struct {
	StartDate     string   `json:"start_date"`
	WeeklyHours   float64  `json:"weekly_hours"`
	FullTimeHours float64  `json:"full_time_hours"`
	DaysPerWeek   *float64 `json:"days_per_week"`
}

// CalculateHoliday exposes the statutory entitlement calculator without
// touching any employee record.
func (h *EmployeeHandler) CalculateHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayRequest
	if !decode(w, r, &req) {
		return
	}
	start, err := models.ParseOptionalDate(req.StartDate)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}
	var days float64
	switch {
	case req.DaysPerWeek != nil:
		if *req.DaysPerWeek < 1 || *req.DaysPerWeek > 7 {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "days_per_week must be between 1 and 7", nil)
			return
		}
		days = *req.DaysPerWeek
	case req.WeeklyHours > 0:
		days = compliance.DaysPerWeek(req.WeeklyHours, req.FullTimeHours)
	default:
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "weekly_hours must be positive", nil)
		return
	}
	writeJSON(w, http.StatusOK, compliance.HolidayEntitlement(start, days, time.Now()))
}
