package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Stable error codes shared across endpoints.
const (
	ErrorCodeExistAccount  = "exist_account"
	ErrorCodeNotExistID    = "not_exist_id"
	ErrorCodeInvalidToken  = "invalid_token"
	ErrorCodeExpiredToken  = "expired_token"
	ErrorCodeInvalidCode   = "invalid_code"
	ErrorCodeNotSetUp      = "not_set_up"
	ErrorCodeBadRequest    = "bad_request"
	ErrorCodeForbidden     = "forbidden"
	ErrorCodeServerError   = "server_error"
	ErrorCodeOAuthFailed   = "oauth_failed"
	ErrorCodeOAuthNoCode   = "missing_code"
	ErrorCodeTokenRequired = "token_required"
)

// Error is an HTTP error with the service's uniform JSON shape. It implements
// the error interface so handlers and clients can share it.
type Error struct {
	// Status is the HTTP status code for this error
	Status int `json:"-"`

	// Detail is a human-readable description of the error
	Detail string `json:"detail"`

	// Code is the stable machine-readable error code
	Code string `json:"code"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// WriteError writes this error to an HTTP response writer with the service's
// uniform payload shape.
func (e *Error) WriteError(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Detail: e.Detail, Code: e.Code})
}

// NewError builds an Error with the given status, detail and code.
func NewError(status int, detail, code string) *Error {
	return &Error{Status: status, Detail: detail, Code: code}
}

// Predefined errors for common failure modes.
var (
	ErrInvalidToken = &Error{
		Status: http.StatusUnauthorized,
		Detail: "the provided token is invalid",
		Code:   ErrorCodeInvalidToken,
	}

	ErrExpiredToken = &Error{
		Status: http.StatusUnauthorized,
		Detail: "the provided token has expired",
		Code:   ErrorCodeExpiredToken,
	}

	ErrForbidden = &Error{
		Status: http.StatusForbidden,
		Detail: "you do not have permission to perform this action",
		Code:   ErrorCodeForbidden,
	}

	ErrServerError = &Error{
		Status: http.StatusInternalServerError,
		Detail: "an unexpected error occurred",
		Code:   ErrorCodeServerError,
	}
)
