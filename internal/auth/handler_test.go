// AngelaMos | 2026
// handler_test.go

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/blog-api/internal/middleware"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

func newTestRouter(svc *Service) *chi.Mux {
	passthrough := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		NewHandler(svc).RegisterRoutes(r, middleware.Authenticator(svc), passthrough)
	})
	return r
}

func call(t *testing.T, r http.Handler, path, token, body string) (int, envelope, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env, rec.Body.String()
}

func TestHandlerRegisterAndLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	router := newTestRouter(svc)

	code, env, raw := call(t, router, "/auth/register", "",
		`{"username":"alice","email":"alice@example.com","password":"Secret123"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "user registered successfully", env.Message)
	assert.NotContains(t, strings.ToLower(raw), "password")
	assert.NotContains(t, raw, "Secret123")

	var auth AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	assert.Equal(t, "alice", auth.User.Username)
	assert.NotEmpty(t, auth.Token)

	code, env, _ = call(t, router, "/auth/login", "",
		`{"email":"alice@example.com","password":"Secret123"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "login successful", env.Message)
}

func TestHandlerLoginGenericFailure(t *testing.T) {
	svc, _, _ := newTestService(t)
	router := newTestRouter(svc)
	register(t, svc, "bob")

	_, wrongPassword, _ := call(t, router, "/auth/login", "",
		`{"email":"bob@example.com","password":"Wrong1234"}`)
	code, unknownEmail, _ := call(t, router, "/auth/login", "",
		`{"email":"ghost@example.com","password":"Wrong1234"}`)

	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid email or password", unknownEmail.Message)
	assert.Equal(t, unknownEmail, wrongPassword)
}

func TestHandlerRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	router := newTestRouter(svc)

	code, env, _ := call(t, router, "/auth/register", "",
		`{"username":"x","email":"bad","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Len(t, env.Errors, 3)

	register(t, svc, "carol")
	code, env, _ = call(t, router, "/auth/register", "",
		`{"username":"carol2","email":"carol@example.com","password":"Secret123"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "email already exists", env.Message)
}

func TestHandlerLogout(t *testing.T) {
	svc, _, _ := newTestService(t)
	router := newTestRouter(svc)
	resp := register(t, svc, "dave")

	code, _, _ := call(t, router, "/auth/logout", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env, _ := call(t, router, "/auth/logout", resp.Token, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "logged out successfully", env.Message)

	code, env, _ = call(t, router, "/auth/logout", resp.Token, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "token has been revoked", env.Message)
}

func TestHandlerDeactivatedAccountToken(t *testing.T) {
	svc, users, _ := newTestService(t)
	router := newTestRouter(svc)
	resp := register(t, svc, "hank")

	users.deactivate(resp.User.ID)

	code, env, _ := call(t, router, "/auth/change-password", resp.Token,
		`{"currentPassword":"Secret123","newPassword":"Another123"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid token", env.Message)
}

func TestHandlerChangePassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	router := newTestRouter(svc)
	resp := register(t, svc, "erin")

	code, env, _ := call(t, router, "/auth/change-password", resp.Token,
		`{"currentPassword":"Wrong1234","newPassword":"Another123"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "current password is incorrect", env.Message)

	code, env, _ = call(t, router, "/auth/change-password", resp.Token,
		`{"currentPassword":"Secret123","newPassword":"Another123"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "password changed successfully", env.Message)
}
