package handlers

import (
	"net/http"

	"complyhr/internal/engine/contracts"
	"complyhr/internal/engine/policies"
	"complyhr/internal/pkg/clientinfo"
)

// PublicHandler serves the token-gated pages employees reach without an account.
type PublicHandler struct {
	policies  *policies.Service
	contracts *contracts.Service
}

func NewPublicHandler(policySvc *policies.Service, contractSvc *contracts.Service) *PublicHandler {
	return &PublicHandler{policies: policySvc, contracts: contractSvc}
}

func (h *PublicHandler) decodePublic(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := decodeBody(r, v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return false
	}
	return true
}

func (h *PublicHandler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	p, err := h.policies.Fetch(r.Context(), param(r, "token"))
	if err != nil {
		publicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PublicHandler) AcknowledgePolicy(w http.ResponseWriter, r *http.Request) {
	var in policies.AcknowledgeInput
	if !h.decodePublic(w, r, &in) {
		return
	}
	err := h.policies.Acknowledge(r.Context(), param(r, "token"), in, clientinfo.ForwardedIP(r), r.UserAgent())
	if err != nil {
		publicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *PublicHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	c, err := h.contracts.GetForSigning(r.Context(), param(r, "token"))
	if err != nil {
		publicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *PublicHandler) SignContract(w http.ResponseWriter, r *http.Request) {
	var in contracts.SignInput
	if !h.decodePublic(w, r, &in) {
		return
	}
	if err := h.contracts.Sign(r.Context(), param(r, "token"), in, clientinfo.SignerIP(r)); err != nil {
		publicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
