package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	apiContext "complyhr/internal/api/context"
)

func TestInstrument(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("/api/v1/things/:id", http.MethodGet, "404"))

	handler := Instrument("/api/v1/things/:id", func(w http.ResponseWriter, r *http.Request) {
		if id, _ := r.Context().Value(apiContext.RequestID).(string); id != "req-42" {
			t.Errorf("request id = %q", id)
		}
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/things/7", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Header().Get("X-Request-ID") != "req-42" {
		t.Errorf("X-Request-ID = %q", rr.Header().Get("X-Request-ID"))
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("/api/v1/things/:id", http.MethodGet, "404"))
	if after-before != 1 {
		t.Errorf("counter moved by %v", after-before)
	}
}
