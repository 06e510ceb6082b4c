package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCodeOf(t *testing.T) {
	if got := CodeOf(NotFound("x")); got != ErrCodeNotFound {
		t.Errorf("CodeOf(NotFound) = %q", got)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != ErrCodeInternal {
		t.Errorf("CodeOf(plain error) = %q, want internal", got)
	}
	if got := CodeOf(fmt.Errorf("wrapped: %w", Validation("bad"))); got != ErrCodeInvalidInput {
		t.Errorf("CodeOf(wrapped) = %q, want invalid input", got)
	}
}

func TestWriteStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Unauthorized("no"), http.StatusUnauthorized},
		{NotFound("gone"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Disabled("off"), http.StatusServiceUnavailable},
		{fmt.Errorf("disk I/O error"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		Write(rec, tc.err)
		if rec.Code != tc.status {
			t.Errorf("Write(%v) status = %d, want %d", tc.err, rec.Code, tc.status)
		}
	}
}

func TestWriteHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, fmt.Errorf("disk I/O error at /var/lib/hookd.db"))

	var resp ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Message != "internal error" {
		t.Errorf("internal error message = %q, must not leak detail", resp.Message)
	}
	if resp.Code != ErrCodeInternal {
		t.Errorf("code = %q", resp.Code)
	}
}
