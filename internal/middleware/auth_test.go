// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

type fakeVerifier struct{}

func (fakeVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*AccessTokenClaims, error) {
	switch token {
	case "valid":
		return &AccessTokenClaims{UserID: 7, TokenID: "jti-7"}, nil
	case "expired":
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
	case "revoked":
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}
	return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strconv.FormatInt(GetUserID(r.Context()), 10)))
	})
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer   abc ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, ExtractToken(req))
		})
	}
}

func TestAuthenticator(t *testing.T) {
	handler := Authenticator(fakeVerifier{})(echoUser())

	tests := []struct {
		name    string
		token   string
		status  int
		message string
	}{
		{"missing", "", http.StatusUnauthorized, "missing authorization token"},
		{"invalid", "nope", http.StatusUnauthorized, "invalid token"},
		{"expired", "expired", http.StatusUnauthorized, "token has expired"},
		{"revoked", "revoked", http.StatusUnauthorized, "token has been revoked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"message":"`+tt.message+`"`)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer valid")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", rec.Body.String())
}

func TestOptionalAuth(t *testing.T) {
	handler := OptionalAuth(fakeVerifier{})(echoUser())

	for token, want := range map[string]string{"": "0", "valid": "7", "expired": "0", "junk": "0"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, token)
		assert.Equal(t, want, rec.Body.String(), token)
	}
}

func TestGetClaims(t *testing.T) {
	assert.Nil(t, GetClaims(context.Background()))
	assert.Zero(t, GetUserID(context.Background()))

	claims := &AccessTokenClaims{UserID: 3, TokenID: "t"}
	ctx := withClaims(context.Background(), claims)
	assert.Same(t, claims, GetClaims(ctx))
	assert.Equal(t, int64(3), GetUserID(ctx))
}
