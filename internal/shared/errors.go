package shared

import (
	"errors"
	"net/http"
)

// Kind classifies a business failure for the boundary layer.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindIntegrity      Kind = "integrity"
)

// Error carries a machine-readable kind plus an HTTP status hint. The
// status is a hint only; the handler owns the response.
type Error struct {
	Kind    Kind
	Message string
	Status  int
}

func (e *Error) Error() string { return e.Message }

// Validation builds a validation failure (empty or duplicate input).
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Status: http.StatusBadRequest}
}

// NotFound builds a missing-resource failure.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message, Status: http.StatusNotFound}
}

// Authentication builds a bad-credentials or no-session failure.
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message, Status: http.StatusUnauthorized}
}

// Authorization builds an insufficient-privilege failure.
func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message, Status: http.StatusForbidden}
}

// Integrity builds a storage-constraint failure surfaced to the caller.
func Integrity(message string) *Error {
	return &Error{Kind: KindIntegrity, Message: message, Status: http.StatusConflict}
}

// KindOf extracts the kind from err, or empty for untyped errors.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return ""
}

// StatusFor maps err to an HTTP status, defaulting to 500 for untyped errors.
func StatusFor(err error) int {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Status
	}
	return http.StatusInternalServerError
}

// UserSafeMessage returns a message suitable for the response body. Untyped
// errors are masked so storage details never leak to the caller.
func UserSafeMessage(err error) string {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Message
	}
	return "internal error"
}

var (
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = NotFound("not found")
	// ErrInvalidCredentials indicates login failure; it deliberately does
	// not distinguish an unknown username from a wrong password.
	ErrInvalidCredentials = Authentication("invalid username or password")
	// ErrNotAuthenticated indicates the request carries no valid session.
	ErrNotAuthenticated = Authentication("authentication required")
	// ErrPermissionDenied indicates the caller lacks superuser privilege.
	ErrPermissionDenied = Authorization("permission denied")
	// ErrCSRFTokenMissing occurs when the CSRF token is absent.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
