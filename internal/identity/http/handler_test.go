package identityhttp_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/courseboard/courseboard/internal/authz"
	"github.com/courseboard/courseboard/internal/identity"
	identityhttp "github.com/courseboard/courseboard/internal/identity/http"
	"github.com/courseboard/courseboard/internal/shared"
	_ "github.com/courseboard/courseboard/testing"
)

type stubRepo struct {
	users    map[string]*identity.User
	sessions map[string]int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: make(map[string]*identity.User), sessions: make(map[string]int64)}
}

func (s *stubRepo) Create(ctx context.Context, username, passwordHash string) (*identity.User, error) {
	if _, ok := s.users[username]; ok {
		return nil, identity.ErrUsernameTaken
	}
	u := &identity.User{ID: int64(len(s.users) + 1), Username: username, PasswordHash: passwordHash}
	s.users[username] = u
	return u, nil
}

func (s *stubRepo) GetByUsername(ctx context.Context, username string) (*identity.User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (s *stubRepo) GetByID(ctx context.Context, id int64) (*identity.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) List(ctx context.Context) ([]identity.User, error) {
	var list []identity.User
	for _, u := range s.users {
		list = append(list, *u)
	}
	return list, nil
}

func (s *stubRepo) SetSuperuser(ctx context.Context, id int64, superuser bool) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.IsSuperuser = superuser
	return nil
}

func (s *stubRepo) DeleteCascade(ctx context.Context, id int64) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	delete(s.users, u.Username)
	return nil
}

func (s *stubRepo) RecordSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSessionRecord(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

// commitWriter persists the session right before the first response
// write, the same ordering the application middleware uses.
type commitWriter struct {
	http.ResponseWriter
	commit    func()
	committed bool
}

func (w *commitWriter) ensureCommitted() {
	if !w.committed {
		w.committed = true
		w.commit()
	}
}

func (w *commitWriter) WriteHeader(code int) {
	w.ensureCommitted()
	w.ResponseWriter.WriteHeader(code)
}

func (w *commitWriter) Write(b []byte) (int, error) {
	w.ensureCommitted()
	return w.ResponseWriter.Write(b)
}

type fixture struct {
	repo     *stubRepo
	sessions *shared.SessionManager
	router   chi.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)

	repo := newStubRepo()
	service := identity.NewService(repo)
	policy := authz.NewPolicy(service)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := identityhttp.NewHandler(logger, service, sessionManager, policy, authz.Middleware{Policy: policy, Logger: logger})

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessionManager.Load(r.Context(), r)
			require.NoError(t, err)
			ctx := shared.ContextWithSession(r.Context(), sess)
			cw := &commitWriter{ResponseWriter: w, commit: func() {
				require.NoError(t, sessionManager.Commit(ctx, w, r, sess))
			}}
			next.ServeHTTP(cw, r.WithContext(ctx))
			cw.ensureCommitted()
		})
	})
	router.Route("/auth", handler.MountAuthRoutes)
	router.Route("/users", handler.MountUserRoutes)

	return &fixture{repo: repo, sessions: sessionManager, router: router}
}

func (f *fixture) seedUser(t *testing.T, username, password string, superuser bool) *identity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u, err := f.repo.Create(context.Background(), username, string(hash))
	require.NoError(t, err)
	u.IsSuperuser = superuser
	return u
}

// login performs the login request and returns the session cookie.
func (f *fixture) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	res := f.do(t, http.MethodPost, "/auth/login",
		`{"username":"`+username+`","password":"`+password+`"}`, nil)
	require.Equal(t, http.StatusOK, res.Code)
	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func (f *fixture) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	return res
}

func TestLoginSuccess(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "alice", "correcthorse", false)

	res := f.do(t, http.MethodPost, "/auth/login", `{"username":"alice","password":"correcthorse"}`, nil)
	require.Equal(t, http.StatusOK, res.Code)

	var body struct {
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.Username)
	assert.Len(t, f.repo.sessions, 1, "login must record a session")
}

func TestLoginBadPassword(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "alice", "correcthorse", false)

	res := f.do(t, http.MethodPost, "/auth/login", `{"username":"alice","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginUnknownUserSameStatus(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodPost, "/auth/login", `{"username":"nobody","password":"x"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginRotatesSessionID(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "alice", "correcthorse", false)

	// An attacker plants a known token before the victim authenticates.
	planted := &http.Cookie{Name: "test_session", Value: "attacker-chosen-token"}
	res := f.do(t, http.MethodPost, "/auth/login", `{"username":"alice","password":"correcthorse"}`, planted)
	require.Equal(t, http.StatusOK, res.Code)

	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.NotEqual(t, planted.Value, cookies[0].Value, "authenticated session must not keep a pre-login token")

	// The planted token must not resolve to the authenticated session.
	stale := f.do(t, http.MethodPost, "/auth/logout", "", planted)
	assert.Equal(t, http.StatusNoContent, stale.Code)
	assert.Len(t, f.repo.sessions, 1, "planted token must not reach the recorded session")
}

func TestLogoutClearsSession(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "alice", "correcthorse", false)
	cookie := f.login(t, "alice", "correcthorse")

	res := f.do(t, http.MethodPost, "/auth/logout", "", cookie)
	assert.Equal(t, http.StatusNoContent, res.Code)
	assert.Empty(t, f.repo.sessions, "logout must drop the session record")
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodPost, "/auth/register", `{"username":"bob","password":"hunter2"}`, nil)
	require.Equal(t, http.StatusCreated, res.Code)
	assert.Contains(t, f.repo.users, "bob")
}

func TestRegisterDuplicate(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "bob", "x", false)

	res := f.do(t, http.MethodPost, "/auth/register", `{"username":"bob","password":"hunter2"}`, nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestUserAdminRequiresSuperuser(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "alice", "correcthorse", false)

	// Anonymous.
	res := f.do(t, http.MethodGet, "/users/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	// Authenticated but not superuser.
	cookie := f.login(t, "alice", "correcthorse")
	res = f.do(t, http.MethodGet, "/users/", "", cookie)
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "root", "rootpass", true)
	f.seedUser(t, "bob", "x", false)
	cookie := f.login(t, "root", "rootpass")

	res := f.do(t, http.MethodDelete, "/users/2", "", cookie)
	assert.Equal(t, http.StatusNoContent, res.Code)
	assert.NotContains(t, f.repo.users, "bob")
}

func TestDeleteSelfRejected(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "bootstrap", "x", true) // occupies id 1
	f.seedUser(t, "root", "rootpass", true)
	cookie := f.login(t, "root", "rootpass")

	res := f.do(t, http.MethodDelete, "/users/2", "", cookie)
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Contains(t, f.repo.users, "root")
}

func TestDeleteBootstrapAdminRejected(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "bootstrap", "x", true)
	f.seedUser(t, "root", "rootpass", true)
	cookie := f.login(t, "root", "rootpass")

	res := f.do(t, http.MethodDelete, "/users/1", "", cookie)
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Contains(t, f.repo.users, "bootstrap")
}

func TestSetPrivilege(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "bootstrap", "x", true)
	f.seedUser(t, "root", "rootpass", true)
	f.seedUser(t, "bob", "x", false)
	cookie := f.login(t, "root", "rootpass")

	res := f.do(t, http.MethodPut, "/users/3/privilege", `{"privilege":"Administrator"}`, cookie)
	assert.Equal(t, http.StatusNoContent, res.Code)
	assert.True(t, f.repo.users["bob"].IsSuperuser)

	res = f.do(t, http.MethodPut, "/users/3/privilege", `{"privilege":"Member"}`, cookie)
	assert.Equal(t, http.StatusNoContent, res.Code)
	assert.False(t, f.repo.users["bob"].IsSuperuser)
}
