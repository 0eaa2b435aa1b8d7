package handlers

import (
	"net/http"

	"complyhr/internal/engine/contracts"
	"complyhr/internal/pkg/errors"
)

type ContractHandler struct {
	contracts      *contracts.Service
	maxUploadBytes int64
}

func NewContractHandler(contractSvc *contracts.Service, maxUploadBytes int64) *ContractHandler {
	return &ContractHandler{contracts: contractSvc, maxUploadBytes: maxUploadBytes}
}

func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in contracts.CreateInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.contracts.Create(r.Context(), tenantOf(r), in)
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.contracts.List(r.Context(), tenantOf(r), q.Get("employee_id"), queryBool(r, "current"))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.contracts.Get(r.Context(), tenantOf(r), param(r, "id"))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContractHandler) SigningLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.contracts.GenerateSigningLink(r.Context(), tenantOf(r), param(r, "id"))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *ContractHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.contracts.SigningQRCode(r.Context(), tenantOf(r), param(r, "id"), queryInt(r, "size", 256))
	if err != nil {
		respond(w, r, err)
		return
	}
	writePNG(w, png)
}

func (h *ContractHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
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

	c, err := h.contracts.AttachDocument(r.Context(), tenantOf(r), param(r, "id"), header.Filename, header.Size, file)
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
