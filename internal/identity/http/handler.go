// Package identityhttp wires HTTP endpoints for authentication and user
// administration. It sits above both the identity store and the
// authorization policy, so neither of those packages depends on the other
// through the handlers.
package identityhttp

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/courseboard/courseboard/internal/authz"
	"github.com/courseboard/courseboard/internal/identity"
	"github.com/courseboard/courseboard/internal/platform/httpx"
	"github.com/courseboard/courseboard/internal/shared"
)

// Handler serves authentication and user administration endpoints.
type Handler struct {
	logger         *slog.Logger
	service        *identity.Service
	sessionManager *shared.SessionManager
	policy         *authz.Policy
	authz          authz.Middleware
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *identity.Service, sessions *shared.SessionManager, policy *authz.Policy, mw authz.Middleware) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		policy:         policy,
		authz:          mw,
		validator:      validator.New(),
	}
}

// MountAuthRoutes registers login/logout/register on the /auth subrouter.
func (h *Handler) MountAuthRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Post("/register", h.handleRegister)
}

// MountUserRoutes registers user administration on the /users subrouter.
func (h *Handler) MountUserRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireSuperuser)
		r.Get("/", h.listUsers)
		r.Post("/", h.createUser)
		r.Delete("/{userID}", h.deleteUser)
		r.Put("/{userID}/privilege", h.setPrivilege)
	})
}

type credentialsForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	IsSuperuser bool   `json:"is_superuser"`
}

func toUserResponse(u *identity.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, IsSuperuser: u.IsSuperuser}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form credentialsForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, shared.Validation("invalid request body"))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Error(w, shared.ErrInvalidCredentials)
		return
	}
	user, err := h.service.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Error(w, shared.ErrNotAuthenticated)
		return
	}
	// Rotate the session ID so a token chosen before authentication can
	// never name an authenticated session.
	if err := h.sessionManager.Renew(r.Context(), sess); err != nil {
		h.logger.Error("renew session", slog.Any("error", err))
		httpx.Error(w, shared.ErrNotAuthenticated)
		return
	}
	sess.SetUser(user.Username)

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("record session", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session record", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var form credentialsForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, shared.Validation("invalid request body"))
		return
	}
	if form.Username == "" {
		httpx.Error(w, identity.ErrEmptyUsername)
		return
	}
	user, err := h.service.Register(r.Context(), form.Username, form.Password)
	if err != nil {
		if shared.KindOf(err) == "" {
			h.logger.Error("register user", slog.Any("error", err))
		}
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	httpx.JSON(w, http.StatusOK, out)
}

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.Validation("invalid request body"))
		return
	}
	user, err := h.service.AdminCreate(r.Context(), req.Username)
	if err != nil {
		if shared.KindOf(err) == "" {
			h.logger.Error("admin create user", slog.Any("error", err))
		}
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toUserResponse(user))
}

// actingAndTarget resolves the superuser caller and the target user id,
// applying the bootstrap-admin and self-action guards.
func (h *Handler) actingAndTarget(w http.ResponseWriter, r *http.Request) (int64, bool) {
	targetID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httpx.Error(w, shared.Validation("invalid user id"))
		return 0, false
	}
	if err := authz.GuardBootstrapAdmin(targetID); err != nil {
		httpx.Error(w, err)
		return 0, false
	}
	acting, err := h.policy.RequireSuperuser(r.Context(), shared.SessionFromContext(r.Context()))
	if err != nil {
		httpx.Error(w, err)
		return 0, false
	}
	if err := authz.GuardSelfAction(acting.ID, targetID); err != nil {
		httpx.Error(w, err)
		return 0, false
	}
	return targetID, true
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	targetID, ok := h.actingAndTarget(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), targetID); err != nil {
		if shared.KindOf(err) == "" {
			h.logger.Error("delete user", slog.Any("error", err))
		}
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setPrivilegeRequest struct {
	Privilege string `json:"privilege"`
}

func (h *Handler) setPrivilege(w http.ResponseWriter, r *http.Request) {
	targetID, ok := h.actingAndTarget(w, r)
	if !ok {
		return
	}
	var req setPrivilegeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.Validation("invalid request body"))
		return
	}
	if err := h.service.SetPrivilege(r.Context(), targetID, identity.ParsePrivilege(req.Privilege)); err != nil {
		if shared.KindOf(err) == "" {
			h.logger.Error("set privilege", slog.Any("error", err))
		}
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
