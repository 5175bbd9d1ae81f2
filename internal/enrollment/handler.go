package enrollment

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/courseboard/courseboard/internal/authz"
	"github.com/courseboard/courseboard/internal/courses"
	"github.com/courseboard/courseboard/internal/platform/httpx"
	"github.com/courseboard/courseboard/internal/shared"
)

// CourseCatalog resolves course ids for roster rendering.
type CourseCatalog interface {
	Get(ctx context.Context, id int64) (*courses.Course, error)
}

// Handler manages assignment-ledger endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	catalog   CourseCatalog
	users     UserDirectory
	authz     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, catalog CourseCatalog, users UserDirectory, authz authz.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		catalog:   catalog,
		users:     users,
		authz:     authz,
		validator: validator.New(),
	}
}

// MountCourseRoutes registers the per-course ledger routes; the caller
// mounts them on the /courses subrouter.
func (h *Handler) MountCourseRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAuth)
		r.Get("/{courseID}/roster", h.roster)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireSuperuser)
		r.Put("/{courseID}/members", h.setRole)
		r.Delete("/{courseID}/members/{userID}", h.removeFromCourse)
	})
}

// MountUserRoutes registers the per-user ledger routes; the caller mounts
// them on the /users subrouter.
func (h *Handler) MountUserRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAuth)
		r.Get("/{username}/courses", h.listUserCourses)
	})
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, shared.Validation("invalid " + name)
	}
	return id, nil
}

type rosterResponse struct {
	CourseID   int64  `json:"course_id"`
	CourseName string `json:"course_name"`
	Roster
}

func (h *Handler) roster(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "courseID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	course, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	roster, err := h.service.Roster(r.Context(), id)
	if err != nil {
		h.logger.Error("build roster", slog.Any("error", err), slog.Int64("course_id", id))
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rosterResponse{
		CourseID:   course.ID,
		CourseName: course.Name,
		Roster:     *roster,
	})
}

type setRoleRequest struct {
	Username string `json:"username" validate:"required"`
	RoleID   int64  `json:"role_id" validate:"required,gt=0"`
}

type setRoleResponse struct {
	Outcome SetRoleOutcome `json:"outcome"`
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r, "courseID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req setRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.Validation("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, shared.Validation("username and role_id are required"))
		return
	}
	outcome, err := h.service.SetRole(r.Context(), req.Username, courseID, req.RoleID)
	if err != nil {
		if shared.KindOf(err) == "" {
			h.logger.Error("set role", slog.Any("error", err))
		}
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, setRoleResponse{Outcome: outcome})
}

func (h *Handler) removeFromCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r, "courseID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.service.RemoveFromCourse(r.Context(), userID, courseID); err != nil {
		h.logger.Error("remove from course", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listUserCourses(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Error(w, ErrUserNotFound)
			return
		}
		h.logger.Error("resolve username", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	list, err := h.service.ListByUser(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("list user courses", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}
