package handlers

import (
	"io"
	"net/http"

	"complyhr/internal/engine/billing"
)

const maxWebhookBody = 65536

type BillingHandler struct {
	billing *billing.Service
}

func NewBillingHandler(billingSvc *billing.Service) *BillingHandler {
	return &BillingHandler{billing: billingSvc}
}

func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var in billing.CheckoutInput
	if !decode(w, r, &in) {
		return
	}
	url, err := h.billing.Checkout(r.Context(), tenantOf(r), in)
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *BillingHandler) Portal(w http.ResponseWriter, r *http.Request) {
	url, err := h.billing.Portal(r.Context(), tenantOf(r))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Webhook receives subscription lifecycle events from the payment provider.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
		return
	}
	if err := h.billing.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		publicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
