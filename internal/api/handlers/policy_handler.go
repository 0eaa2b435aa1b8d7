package handlers

import (
	"bytes"
	"context"
	"net/http"

	"complyhr/internal/engine/policies"
	"complyhr/internal/pkg/errors"
	"complyhr/internal/platform/tenant"
)

type policyTransition func(ctx context.Context, tc tenant.Context, id string) (*policies.View, error)

type PolicyHandler struct {
	policies       *policies.Service
	maxUploadBytes int64
}

func NewPolicyHandler(policySvc *policies.Service, maxUploadBytes int64) *PolicyHandler {
	return &PolicyHandler{policies: policySvc, maxUploadBytes: maxUploadBytes}
}

func (h *PolicyHandler) Templates(w http.ResponseWriter, r *http.Request) {
	list, err := h.policies.Templates(r.Context(), tenantOf(r))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *PolicyHandler) Adopt(w http.ResponseWriter, r *http.Request) {
	p, err := h.policies.Adopt(r.Context(), tenantOf(r), param(r, "id"))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PolicyHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "File too large or malformed upload", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "No file uploaded", nil)
		return
	}
	defer file.Close()

	in := policies.UploadInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		FileName:    header.Filename,
		Size:        header.Size,
	}
	p, err := h.policies.Upload(r.Context(), tenantOf(r), in, file)
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PolicyHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.policies.List(r.Context(), tenantOf(r), r.URL.Query().Get("status"))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.policies.Get(r.Context(), tenantOf(r), param(r, "id"))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PolicyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in policies.UpdateInput
	if !decode(w, r, &in) {
		return
	}
	p, err := h.policies.Update(r.Context(), tenantOf(r), param(r, "id"), in)
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PolicyHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.policies.Activate)
}

func (h *PolicyHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.policies.Archive)
}

func (h *PolicyHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.policies.Reactivate)
}

func (h *PolicyHandler) transition(w http.ResponseWriter, r *http.Request, fn policyTransition) {
	p, err := fn(r.Context(), tenantOf(r), param(r, "id"))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PolicyHandler) RegenerateToken(w http.ResponseWriter, r *http.Request) {
	link, err := h.policies.RegenerateToken(r.Context(), tenantOf(r), param(r, "id"))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *PolicyHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.policies.AccessQRCode(r.Context(), tenantOf(r), param(r, "id"), queryInt(r, "size", 256))
	if err != nil {
		respond(w, r, err)
		return
	}
	writePNG(w, png)
}

func (h *PolicyHandler) Acknowledgements(w http.ResponseWriter, r *http.Request) {
	list, err := h.policies.ListAcknowledgements(r.Context(), tenantOf(r), param(r, "id"))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ExportAcknowledgements buffers the CSV so a failure can still be reported as JSON.
func (h *PolicyHandler) ExportAcknowledgements(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.policies.ExportAcknowledgements(r.Context(), tenantOf(r), param(r, "id"), &buf); err != nil {
		respond(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="acknowledgements.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
