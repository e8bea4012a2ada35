package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a business-rule or request error carrying the HTTP status and a
// machine-readable code for the response envelope.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

func New(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{Status: e.Status, Code: e.Code, Message: e.Message, Details: details}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, "BAD_REQUEST", message)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, "NOT_FOUND", message)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, "FORBIDDEN", message)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, "CONFLICT", message)
}

func Internal(message string) *AppError {
	return New(http.StatusInternalServerError, "INTERNAL", message)
}

// From returns err as an *AppError, wrapping unknown errors as a 500 so the
// error middleware always has a status to map.
func From(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return &AppError{Status: http.StatusInternalServerError, Code: "INTERNAL", Message: "internal server error", Details: err.Error()}
}

// Is reports whether err is an AppError with the given code.
func Is(err error, code string) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Code == code
}
