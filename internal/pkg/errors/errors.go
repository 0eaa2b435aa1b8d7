package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeOnboardingRequired = "ONBOARDING_REQUIRED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeQuotaExceeded      = "QUOTA_EXCEEDED"
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// Error is a failure that already knows how it should be reported to the caller.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func InvalidInput(message string) *Error {
	return New(http.StatusBadRequest, ErrCodeInvalidInput, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, ErrCodeNotFound, message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, ErrCodeConflict, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, ErrCodeForbidden, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func QuotaExceeded(message string) *Error {
	return New(http.StatusForbidden, ErrCodeQuotaExceeded, message)
}

// StatusOf returns the HTTP status err maps to: 200 for nil, 500 for anything unclassified.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// Respond writes err using the standard envelope. Unclassified errors are backend
// failures and their message is passed through as-is.
func Respond(w http.ResponseWriter, err error) {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		WriteError(w, appErr.Status, appErr.Code, appErr.Message, nil)
		return
	}
	WriteError(w, http.StatusInternalServerError, ErrCodeInternal, err.Error(), nil)
}

func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Details: details,
	})
}
