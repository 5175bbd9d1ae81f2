package courses

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/courseboard/courseboard/internal/authz"
	"github.com/courseboard/courseboard/internal/platform/httpx"
	"github.com/courseboard/courseboard/internal/shared"
)

// Handler manages course-catalog endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authz   authz.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authz authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: authz}
}

// MountRoutes registers course routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAuth)
		r.Get("/", h.listCourses)
		r.Get("/{courseID}", h.getCourse)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireSuperuser)
		r.Post("/", h.createCourse)
		r.Put("/{courseID}", h.renameCourse)
		r.Delete("/{courseID}", h.deleteCourse)
	})
}

type courseResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type courseForm struct {
	Name string `json:"name"`
}

func courseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
	if err != nil {
		return 0, shared.Validation("invalid course id")
	}
	return id, nil
}

func (h *Handler) listCourses(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list courses", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	out := make([]courseResponse, 0, len(list))
	for _, course := range list {
		out = append(out, courseResponse{ID: course.ID, Name: course.Name})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getCourse(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	course, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, courseResponse{ID: course.ID, Name: course.Name})
}

func (h *Handler) createCourse(w http.ResponseWriter, r *http.Request) {
	var form courseForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, shared.Validation("invalid request body"))
		return
	}
	course, err := h.service.Create(r.Context(), form.Name)
	if err != nil {
		if shared.KindOf(err) == "" {
			h.logger.Error("create course", slog.Any("error", err))
		}
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, courseResponse{ID: course.ID, Name: course.Name})
}

func (h *Handler) renameCourse(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var form courseForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, shared.Validation("invalid request body"))
		return
	}
	course, err := h.service.Rename(r.Context(), id, form.Name)
	if err != nil {
		if shared.KindOf(err) == "" {
			h.logger.Error("rename course", slog.Any("error", err))
		}
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, courseResponse{ID: course.ID, Name: course.Name})
}

func (h *Handler) deleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		if shared.KindOf(err) == "" {
			h.logger.Error("delete course", slog.Any("error", err))
		}
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
