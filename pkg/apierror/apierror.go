package apierror

import (
	"fmt"
	"net/http"
)

// Error codes used across the API surface. Security-relevant codes are
// deliberately coarse: INVALID_CREDENTIALS never says whether the email or
// the password was wrong, and INVALID_TOKEN never says why a token failed.
const (
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeConfiguration      = "CONFIGURATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeBadRequest         = "BAD_REQUEST"
	CodeInternal           = "INTERNAL_ERROR"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

func Unauthenticated(message string) *APIError {
	if message == "" {
		message = "authentication required"
	}
	return New(CodeUnauthenticated, message, "", http.StatusUnauthorized)
}

func Forbidden(message string) *APIError {
	if message == "" {
		message = "access denied"
	}
	return New(CodeForbidden, message, "", http.StatusForbidden)
}

// Conflict reports a uniqueness violation on the named field.
func Conflict(field string) *APIError {
	return New(CodeConflict, fmt.Sprintf("%s already in use", field), field, http.StatusConflict)
}

func InvalidCredentials() *APIError {
	return New(CodeInvalidCredentials, "invalid credentials", "", http.StatusUnauthorized)
}

func InvalidToken() *APIError {
	return New(CodeInvalidToken, "invalid or expired token", "", http.StatusUnauthorized)
}

// Configuration reports a policy that references a route parameter the
// route does not declare. Surfaced with a 403 so the caller learns nothing
// about the misconfigured resource.
func Configuration(param string) *APIError {
	return New(CodeConfiguration, fmt.Sprintf("missing route parameter %q", param), param, http.StatusForbidden)
}

func NotFound(what string, details string) *APIError {
	return New(CodeNotFound, what+" not found", details, http.StatusNotFound)
}

func BadRequest(message string, details string) *APIError {
	return New(CodeBadRequest, message, details, http.StatusBadRequest)
}
