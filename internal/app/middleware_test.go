package app_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseboard/courseboard/internal/app"
	"github.com/courseboard/courseboard/internal/shared"
)

func newStackRouter(t *testing.T, cfg app.MiddlewareConfig) *chi.Mux {
	t.Helper()
	r := chi.NewRouter()
	for _, mw := range app.MiddlewareStack(cfg) {
		r.Use(mw)
	}
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		require.NotNil(t, sess)
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestSessionCommitSetsCookie(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	router := newStackRouter(t, app.MiddlewareConfig{
		Logger:         slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		SessionManager: manager,
		CSRFManager:    shared.NewCSRFManager("csrfsecret"),
	})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, res.Code)
	require.NotEmpty(t, res.Result().Cookies())
	assert.Equal(t, "test_session", res.Result().Cookies()[0].Name)
}

func TestSessionCommitFailureIsLogged(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	var logs bytes.Buffer
	router := newStackRouter(t, app.MiddlewareConfig{
		Logger:         slog.New(slog.NewTextHandler(&logs, nil)),
		SessionManager: manager,
		CSRFManager:    shared.NewCSRFManager("csrfsecret"),
	})

	// Take the store down after startup so the commit at write time fails.
	mr.Close()

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/ping", nil))

	// The response still goes out, but the failure must leave a trace.
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, logs.String(), "failed to commit session")
}
