package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	apiContext "complyhr/internal/api/context"
	"complyhr/internal/api/middleware"
	"complyhr/internal/pkg/errors"
	"complyhr/internal/platform/tenant"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := decodeBody(r, v); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return false
	}
	return true
}

// respond writes err in the authenticated API envelope and logs backend failures.
func respond(w http.ResponseWriter, r *http.Request, err error) {
	if errors.StatusOf(err) >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	errors.Respond(w, err)
}

// publicError writes the bare {error} shape used by token-gated endpoints.
func publicError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.StatusOf(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("public request failed")
		if _, ok := err.(*errors.Error); !ok {
			message = "Internal server error"
		}
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func tenantOf(r *http.Request) tenant.Context {
	tc, _ := middleware.TenantFrom(r.Context())
	return tc
}

func param(r *http.Request, name string) string {
	ps, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return ps.ByName(name)
}

func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

func writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(png)
}

const (
	multipartMemory   = 4 << 20
	multipartOverhead = 1 << 20
)
