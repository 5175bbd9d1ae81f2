// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/courseboard/courseboard/internal/shared"
)

// ProblemDetail represents RFC7807 problem details. Kind carries the
// machine-readable failure taxonomy for API clients.
type ProblemDetail struct {
	Kind   shared.Kind `json:"kind,omitempty"`
	Title  string      `json:"title"`
	Status int         `json:"status"`
	Detail string      `json:"detail,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error maps a typed business failure to a problem-details response using
// its status hint. Untyped errors render as an opaque 500.
func Error(w http.ResponseWriter, err error) {
	status := shared.StatusFor(err)
	JSON(w, status, ProblemDetail{
		Kind:   shared.KindOf(err),
		Title:  http.StatusText(status),
		Status: status,
		Detail: shared.UserSafeMessage(err),
	})
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
