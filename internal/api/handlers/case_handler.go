package handlers

import (
	"net/http"

	"complyhr/internal/engine/cases"
)

type CaseHandler struct {
	cases *cases.Service
}

func NewCaseHandler(caseSvc *cases.Service) *CaseHandler {
	return &CaseHandler{cases: caseSvc}
}

func (h *CaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in cases.CreateInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.cases.CreateCase(r.Context(), tenantOf(r), in)
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.cases.List(r.Context(), tenantOf(r), r.URL.Query().Get("status"))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.cases.Get(r.Context(), tenantOf(r), param(r, "id"))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type CompleteStepRequest struct {
	Notes string `json:"notes"`
}

func (h *CaseHandler) CompleteStep(w http.ResponseWriter, r *http.Request) {
	var req CompleteStepRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.cases.CompleteStep(r.Context(), tenantOf(r), param(r, "id"), param(r, "stepId"), req.Notes)
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type CloseCaseRequest struct {
	Outcome string `json:"outcome"`
}

func (h *CaseHandler) Close(w http.ResponseWriter, r *http.Request) {
	var req CloseCaseRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.cases.CloseCase(r.Context(), tenantOf(r), param(r, "id"), req.Outcome)
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type UpdateCaseStatusRequest struct {
	Status string `json:"status"`
}

func (h *CaseHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateCaseStatusRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.cases.UpdateStatus(r.Context(), tenantOf(r), param(r, "id"), req.Status)
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
