package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespond(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not found", NotFound("Contract not found"), http.StatusNotFound, ErrCodeNotFound, "Contract not found"},
		{"wrapped conflict", fmt.Errorf("ack: %w", Conflict("Already acknowledged")), http.StatusConflict, ErrCodeConflict, "Already acknowledged"},
		{"quota", QuotaExceeded("limit reached"), http.StatusForbidden, ErrCodeQuotaExceeded, "limit reached"},
		{"backend failure passes message", fmt.Errorf("disk I/O error"), http.StatusInternalServerError, ErrCodeInternal, "disk I/O error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Respond(rr, tt.err)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			var body ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tt.wantCode || body.Message != tt.wantMsg {
				t.Errorf("body = %+v", body)
			}
			if StatusOf(tt.err) != tt.wantStatus {
				t.Errorf("StatusOf = %d, want %d", StatusOf(tt.err), tt.wantStatus)
			}
		})
	}
}
