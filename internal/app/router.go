package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/courseboard/courseboard/internal/courses"
	"github.com/courseboard/courseboard/internal/enrollment"
	identityhttp "github.com/courseboard/courseboard/internal/identity/http"
	"github.com/courseboard/courseboard/internal/observability"
	roleshttp "github.com/courseboard/courseboard/internal/roles/http"
	"github.com/courseboard/courseboard/internal/shared"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	SessionManager    *shared.SessionManager
	CSRFManager       *shared.CSRFManager
	IdentityHandler   *identityhttp.Handler
	RolesHandler      *roleshttp.Handler
	CoursesHandler    *courses.Handler
	EnrollmentHandler *enrollment.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Courseboard defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// The CSRF token rides the session; clients fetch it here before any
	// mutating request.
	r.Get("/csrf", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		token, err := params.CSRFManager.EnsureToken(r.Context(), sess)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"csrf_token":"` + token + `"}`))
	})

	r.Route("/auth", params.IdentityHandler.MountAuthRoutes)
	r.Route("/users", func(r chi.Router) {
		params.IdentityHandler.MountUserRoutes(r)
		params.EnrollmentHandler.MountUserRoutes(r)
	})
	r.Route("/courses", func(r chi.Router) {
		params.CoursesHandler.MountRoutes(r)
		params.EnrollmentHandler.MountCourseRoutes(r)
	})
	r.Route("/roles", params.RolesHandler.MountRoutes)

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
