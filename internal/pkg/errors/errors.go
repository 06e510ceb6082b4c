package errors

import (
	"encoding/json"
	"errors"
	"net/http"
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeDisabled          = "DISABLED"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// Error is the structured error surfaced by the webhook manager and
// dispatcher. Anything else reaching the API layer is reported as a
// generic internal error.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func Validation(message string) *Error {
	return &Error{Code: ErrCodeInvalidInput, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Code: ErrCodeUnauthorized, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Code: ErrCodeConflict, Message: message}
}

func Disabled(message string) *Error {
	return &Error{Code: ErrCodeDisabled, Message: message}
}

// CodeOf returns the stable code for err, or ErrCodeInternal for errors
// that carry no code.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

func statusFor(code string) int {
	switch code {
	case ErrCodeInvalidInput:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeDisabled:
		return http.StatusServiceUnavailable
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
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

// Write maps err to its HTTP status and writes the JSON error envelope.
// Storage faults and other uncoded errors become a 500 with a generic
// message; the caller is responsible for logging the original error.
func Write(w http.ResponseWriter, err error) {
	var e *Error
	if errors.As(err, &e) {
		WriteError(w, statusFor(e.Code), e.Code, e.Message, nil)
		return
	}
	WriteError(w, http.StatusInternalServerError, ErrCodeInternal, "internal error", nil)
}
