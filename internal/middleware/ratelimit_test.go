// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, rdb
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterRejectsOverLimit(t *testing.T) {
	_, rdb := newTestRedis(t)

	limiter := NewRateLimiter(rdb, RateLimitConfig{Policy: "global", Limit: PerMinute(2, 2)})
	handler := limiter.Handler(okHandler())

	first := hit(handler, "/api/posts", "10.0.0.1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "2;w=60", first.Header().Get("RateLimit-Policy"))

	assert.Equal(t, http.StatusOK, hit(handler, "/api/posts", "10.0.0.1").Code)

	blocked := hit(handler, "/api/posts", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
	assert.Contains(t, blocked.Body.String(), "rate limit exceeded")

	other := hit(handler, "/api/posts", "10.0.0.2")
	assert.Equal(t, http.StatusOK, other.Code, "buckets are per client")
}

func TestRateLimiterBypass(t *testing.T) {
	_, rdb := newTestRedis(t)

	limiter := NewRateLimiter(rdb, RateLimitConfig{
		Limit: PerMinute(1, 1),
		Skip:  SkipPaths("/healthz", "/metrics"),
	})
	handler := limiter.Handler(okHandler())

	for range 3 {
		rec := hit(handler, "/healthz", "10.0.0.1")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimiterPoliciesDoNotShareBuckets(t *testing.T) {
	mr, rdb := newTestRedis(t)

	global := NewRateLimiter(rdb, RateLimitConfig{Policy: "global", Limit: PerMinute(1, 1)})
	auth := NewRateLimiter(rdb, RateLimitConfig{Policy: "auth", Limit: PerMinute(1, 1)})

	assert.Equal(t, http.StatusOK, hit(global.Handler(okHandler()), "/a", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, hit(auth.Handler(okHandler()), "/a", "10.0.0.1").Code)

	keys := mr.Keys()
	require.Len(t, keys, 2)
	assert.Contains(t, keys[0]+" "+keys[1], "ratelimit:auth:ip:10.0.0.1")
	assert.Contains(t, keys[0]+" "+keys[1], "ratelimit:global:ip:10.0.0.1")
}

func TestRateLimiterRedisDown(t *testing.T) {
	t.Run("fail open uses local buckets", func(t *testing.T) {
		mr, rdb := newTestRedis(t)
		mr.Close()

		limiter := NewRateLimiter(rdb, RateLimitConfig{Limit: PerMinute(1, 1), FailOpen: true})
		handler := limiter.Handler(okHandler())

		assert.Equal(t, http.StatusOK, hit(handler, "/api/posts", "10.0.0.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(handler, "/api/posts", "10.0.0.1").Code)
	})

	t.Run("fail closed", func(t *testing.T) {
		mr, rdb := newTestRedis(t)
		mr.Close()

		limiter := NewRateLimiter(rdb, RateLimitConfig{Limit: PerMinute(10, 10)})
		rec := hit(limiter.Handler(okHandler()), "/api/posts", "10.0.0.1")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestLocalBuckets(t *testing.T) {
	l := newLocalBuckets(PerMinute(60, 2))

	assert.Equal(t, 1, l.allow("k").Allowed)
	assert.Equal(t, 1, l.allow("k").Allowed)

	res := l.allow("k")
	assert.Equal(t, 0, res.Allowed)
	assert.Equal(t, time.Second, res.RetryAfter)

	assert.Equal(t, 1, l.allow("other").Allowed)
}

func TestKeyFuncs(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/posts/42/", nil)
	req.RemoteAddr = "192.0.2.7:1234"

	assert.Equal(t, "ip:192.0.2.7", KeyByIP(req))
	assert.Equal(t, "ip:192.0.2.7:/api/posts/{id}", KeyByUserAndEndpoint(req))

	authed := req.WithContext(withClaims(req.Context(), &AccessTokenClaims{UserID: 9}))
	assert.Equal(t, "user:9", KeyByUser(authed))
	assert.Equal(t, "user:9:/api/posts/{id}", KeyByUserAndEndpoint(authed))

	req.Header.Set("X-Forwarded-For", "203.0.113.1, 198.51.100.2")
	assert.Equal(t, "ip:198.51.100.2", KeyByIP(req))
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := map[string]string{
		"/":                     "/",
		"/api/auth/login":       "/api/auth/login",
		"/api/posts/12":         "/api/posts/{id}",
		"/api/users/3/posts":    "/api/users/{id}/posts",
		"/api/posts/12a":        "/api/posts/12a",
		"/api/users/3/posts/4/": "/api/users/{id}/posts/{id}",
	}

	for in, want := range tests {
		assert.Equal(t, want, normalizeEndpoint(in), in)
	}
}

func TestPerMinute(t *testing.T) {
	assert.Equal(t, redis_rate.Limit{Rate: 5, Burst: 10, Period: time.Minute}, PerMinute(5, 10))
}
