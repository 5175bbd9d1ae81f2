// Package roleshttp serves the role-catalog endpoints, keeping the roles
// domain package free of any dependency on the authorization layer.
package roleshttp

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/courseboard/courseboard/internal/authz"
	"github.com/courseboard/courseboard/internal/platform/httpx"
	"github.com/courseboard/courseboard/internal/roles"
	"github.com/courseboard/courseboard/internal/shared"
)

// Handler manages role-catalog endpoints.
type Handler struct {
	logger  *slog.Logger
	service *roles.Service
	authz   authz.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *roles.Service, authz authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: authz}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAuth)
		r.Get("/", h.listRoles)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireSuperuser)
		r.Post("/", h.createRole)
		r.Delete("/{roleID}", h.deleteRole)
	})
}

type roleResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	out := make([]roleResponse, 0, len(list))
	for _, role := range list {
		out = append(out, roleResponse{ID: role.ID, Name: role.Name})
	}
	httpx.JSON(w, http.StatusOK, out)
}

type createRoleRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.Validation("invalid request body"))
		return
	}
	role, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		if shared.KindOf(err) == "" {
			h.logger.Error("create role", slog.Any("error", err))
		}
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, roleResponse{ID: role.ID, Name: role.Name})
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		httpx.Error(w, shared.Validation("invalid role id"))
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		if shared.KindOf(err) == "" {
			h.logger.Error("delete role", slog.Any("error", err))
		}
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
