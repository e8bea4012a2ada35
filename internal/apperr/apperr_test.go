package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorsCarryStatus(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
		code   string
	}{
		{BadRequest("bad"), http.StatusBadRequest, "BAD_REQUEST"},
		{NotFound("missing"), http.StatusNotFound, "NOT_FOUND"},
		{Forbidden("nope"), http.StatusForbidden, "FORBIDDEN"},
		{Unauthorized("who"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{Conflict("clash"), http.StatusConflict, "CONFLICT"},
		{Internal("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		if tc.err.Status != tc.status {
			t.Errorf("%s: expected status %d, got %d", tc.code, tc.status, tc.err.Status)
		}
		if tc.err.Code != tc.code {
			t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
		}
	}
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	plain := errors.New("database exploded")
	app := From(plain)
	if app.Status != http.StatusInternalServerError {
		t.Errorf("unknown errors should map to 500, got %d", app.Status)
	}

	original := NotFound("booking not found")
	if got := From(original); got != original {
		t.Error("From should pass AppError through unchanged")
	}

	wrapped := fmt.Errorf("loading booking: %w", original)
	if got := From(wrapped); got.Status != http.StatusNotFound {
		t.Errorf("From should unwrap to the inner AppError, got status %d", got.Status)
	}
}

func TestIs(t *testing.T) {
	err := Conflict("already reviewed")
	if !Is(err, "CONFLICT") {
		t.Error("Is should match the error code")
	}
	if Is(err, "NOT_FOUND") {
		t.Error("Is should not match a different code")
	}
	if Is(errors.New("plain"), "CONFLICT") {
		t.Error("Is should not match plain errors")
	}
}

func TestWithDetails(t *testing.T) {
	err := BadRequest("invalid booking data").WithDetails("check_out must be after check_in")
	if err.Details == "" {
		t.Error("details not attached")
	}
	if err.Message != "invalid booking data" {
		t.Errorf("message changed by WithDetails: %q", err.Message)
	}
}
