package authz

import (
	"log/slog"
	"net/http"

	"github.com/courseboard/courseboard/internal/platform/httpx"
	"github.com/courseboard/courseboard/internal/shared"
)

// Middleware wires the authorization policy into HTTP handlers.
type Middleware struct {
	Policy *Policy
	Logger *slog.Logger
}

// RequireAuth admits only requests carrying an authenticated session.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if _, err := RequireAuthenticated(sess); err != nil {
			httpx.Error(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSuperuser admits only requests from a superuser account.
func (m Middleware) RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if _, err := m.Policy.RequireSuperuser(r.Context(), sess); err != nil {
			if m.Logger != nil && shared.KindOf(err) == "" {
				m.Logger.Error("authz superuser check", slog.Any("error", err))
			}
			httpx.Error(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
