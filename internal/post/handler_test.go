// AngelaMos | 2026
// handler_test.go

package post

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/middleware"
)

// tokenTable resolves a bearer token to a user id.
type tokenTable map[string]int64

func (tt tokenTable) VerifyAccessToken(
	_ context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	id, ok := tt[token]
	if !ok {
		return nil, core.ErrTokenInvalid
	}
	return &middleware.AccessTokenClaims{UserID: id, TokenID: token}, nil
}

var testTokens = tokenTable{"alice-token": alice, "bob-token": bob}

func newTestRouter(svc *Service) *chi.Mux {
	h := NewHandler(svc)
	authn := middleware.Authenticator(testTokens)
	optional := middleware.OptionalAuth(testTokens)

	r := chi.NewRouter()
	r.Route("/posts", func(r chi.Router) {
		h.RegisterRoutes(r, authn, optional)
	})
	r.With(authn).Get("/users/{userID}/posts", h.ListByAuthor)
	return r
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Errors     []string        `json:"errors"`
	Pagination *struct {
		CurrentPage int  `json:"currentPage"`
		TotalPages  int  `json:"totalPages"`
		TotalCount  int  `json:"totalCount"`
		Limit       int  `json:"limit"`
		HasNext     bool `json:"hasNext"`
		HasPrev     bool `json:"hasPrev"`
	} `json:"pagination"`
}

func do(t *testing.T, r http.Handler, method, path, token, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func postPath(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10)
}

func TestHandlerListPublishedPaginated(t *testing.T) {
	svc, _ := newTestService()
	router := newTestRouter(svc)

	for _, title := range []string{"One", "Two", "Three"} {
		mustCreate(t, svc, alice, title, StatusPublished)
	}
	mustCreate(t, svc, alice, "Hidden", StatusDraft)

	code, env := do(t, router, http.MethodGet, "/posts?status=published&limit=2", "", "")
	require.Equal(t, http.StatusOK, code)

	var items []PostResponse
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 2)
	assert.Equal(t, "Three", items[0].Title)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 3, env.Pagination.TotalCount)
	assert.Equal(t, 2, env.Pagination.TotalPages)
	assert.True(t, env.Pagination.HasNext)
	assert.False(t, env.Pagination.HasPrev)

	code, env = do(t, router, http.MethodGet, "/posts?status=published&limit=2&page=5", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.Equal(t, 3, env.Pagination.TotalCount)
}

func TestHandlerListVisibility(t *testing.T) {
	svc, _ := newTestService()
	router := newTestRouter(svc)

	mustCreate(t, svc, alice, "Public", StatusPublished)
	mustCreate(t, svc, alice, "Alice draft", StatusDraft)
	mustCreate(t, svc, bob, "Bob draft", StatusDraft)

	_, env := do(t, router, http.MethodGet, "/posts", "", "")
	assert.Equal(t, 1, env.Pagination.TotalCount)

	_, env = do(t, router, http.MethodGet, "/posts", "alice-token", "")
	assert.Equal(t, 2, env.Pagination.TotalCount)

	_, env = do(t, router, http.MethodGet, "/posts", "garbage", "")
	assert.Equal(t, 1, env.Pagination.TotalCount, "invalid token on a read is treated as anonymous")
}

func TestHandlerListRejectsBadQuery(t *testing.T) {
	svc, _ := newTestService()
	router := newTestRouter(svc)

	code, env := do(t, router, http.MethodGet, "/posts?status=gone", "", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []string{"status must be one of: draft, published, archived"}, env.Errors)

	code, _ = do(t, router, http.MethodGet, "/posts?page=0", "", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHandlerCreate(t *testing.T) {
	svc, _ := newTestService()
	router := newTestRouter(svc)

	body := `{"title":"Hello","content":"World","tags":["Go"],"status":"published"}`

	code, _ := do(t, router, http.MethodPost, "/posts", "", body)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := do(t, router, http.MethodPost, "/posts", "alice-token", body)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "post created successfully", env.Message)

	var created PostResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, alice, created.AuthorID)
	assert.Equal(t, "alice", created.AuthorUsername)
	assert.Equal(t, []string{"go"}, created.Tags)
	assert.Equal(t, StatusPublished, created.Status)

	code, env = do(t, router, http.MethodPost, "/posts", "alice-token", `{"title":"","content":"x","status":"live"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Len(t, env.Errors, 2)
}

func TestHandlerUpdateAndDelete(t *testing.T) {
	svc, _ := newTestService()
	router := newTestRouter(svc)
	p := mustCreate(t, svc, alice, "Mine", StatusPublished)

	code, _ := do(t, router, http.MethodPut, postPath(p.ID), "bob-token", `{"title":"Theirs"}`)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := do(t, router, http.MethodPut, postPath(p.ID), "alice-token", `{"title":"Still mine"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"title":"Still mine"`)

	code, _ = do(t, router, http.MethodPut, postPath(9999), "bob-token", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = do(t, router, http.MethodDelete, "/posts/abc", "alice-token", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid post id", env.Message)

	code, _ = do(t, router, http.MethodDelete, postPath(p.ID), "bob-token", "")
	assert.Equal(t, http.StatusForbidden, code)

	code, env = do(t, router, http.MethodDelete, postPath(p.ID), "alice-token", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "post deleted successfully", env.Message)

	code, _ = do(t, router, http.MethodGet, postPath(p.ID), "", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHandlerListByAuthor(t *testing.T) {
	svc, _ := newTestService()
	router := newTestRouter(svc)
	mustCreate(t, svc, bob, "B1", StatusPublished)
	mustCreate(t, svc, bob, "B2", StatusDraft)
	mustCreate(t, svc, alice, "A1", StatusPublished)

	code, env := do(t, router, http.MethodGet, "/users/2/posts", "alice-token", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.Pagination.TotalCount)

	code, env = do(t, router, http.MethodGet, "/users/2/posts", "bob-token", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, env.Pagination.TotalCount)

	code, _ = do(t, router, http.MethodGet, "/users/404/posts", "alice-token", "")
	assert.Equal(t, http.StatusNotFound, code)
}
