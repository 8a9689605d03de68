// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

// KeyFunc names the bucket a request is charged to.
type KeyFunc func(*http.Request) string

type RateLimitConfig struct {
	// Policy namespaces the redis keys so limiters never share buckets.
	Policy string
	Limit  redis_rate.Limit
	Key    KeyFunc
	// FailOpen keeps serving from an in-process bucket while redis is
	// unreachable. Without it such requests get 503.
	FailOpen bool
	Skip     func(*http.Request) bool
}

type RateLimiter struct {
	redis *redis_rate.Limiter
	local *localBuckets
	cfg   RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.Key == nil {
		cfg.Key = KeyByIP
	}
	if cfg.Policy == "" {
		cfg.Policy = "default"
	}

	return &RateLimiter{
		redis: redis_rate.NewLimiter(rdb),
		local: newLocalBuckets(cfg.Limit),
		cfg:   cfg,
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.cfg.Skip != nil && rl.cfg.Skip(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := "ratelimit:" + rl.cfg.Policy + ":" + rl.cfg.Key(r)

		res, err := rl.redis.Allow(r.Context(), key, rl.cfg.Limit)
		if err != nil {
			if !rl.cfg.FailOpen {
				slog.ErrorContext(r.Context(), "rate limiter unavailable",
					"policy", rl.cfg.Policy,
					"error", err,
				)
				core.JSONError(w, core.ServiceUnavailableError())
				return
			}
			slog.WarnContext(r.Context(), "rate limiter using local buckets",
				"policy", rl.cfg.Policy,
				"error", err,
			)
			res = rl.local.allow(key)
		}

		writeLimitHeaders(w.Header(), rl.cfg.Limit, res)

		if res.Allowed == 0 {
			tooManyRequests(w, res.RetryAfter)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func PerMinute(requests, burst int) redis_rate.Limit {
	return redis_rate.Limit{Rate: requests, Burst: burst, Period: time.Minute}
}

// SkipPaths exempts exact request paths, such as health probes.
func SkipPaths(paths ...string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := set[r.URL.Path]
		return ok
	}
}

// clientIP trusts the last X-Forwarded-For hop, which is the one appended
// by the proxy in front of us.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func KeyByIP(r *http.Request) string {
	return "ip:" + clientIP(r)
}

// KeyByUser charges authenticated callers by account and everyone else
// by address.
func KeyByUser(r *http.Request) string {
	if id := GetUserID(r.Context()); id != 0 {
		return "user:" + strconv.FormatInt(id, 10)
	}
	return KeyByIP(r)
}

// KeyByUserAndEndpoint gives every caller one bucket per route. Numeric
// path segments are collapsed so /posts/1 and /posts/2 share a bucket.
func KeyByUserAndEndpoint(r *http.Request) string {
	return KeyByUser(r) + ":" + normalizeEndpoint(r.URL.Path)
}

func normalizeEndpoint(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if _, err := strconv.ParseUint(seg, 10, 64); err == nil {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}

func writeLimitHeaders(h http.Header, limit redis_rate.Limit, res *redis_rate.Result) {
	reset := time.Now().Add(res.ResetAfter)

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
	h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit", fmt.Sprintf("%d;t=%d", res.Remaining, int(res.ResetAfter.Seconds())))
}

func tooManyRequests(w http.ResponseWriter, retryAfter time.Duration) {
	secs := max(int(retryAfter.Seconds()), 1)
	w.Header().Set("Retry-After", strconv.Itoa(secs))

	msg := fmt.Sprintf("rate limit exceeded, retry after %d seconds", secs)
	core.JSON(w, http.StatusTooManyRequests, core.Response{
		Success: false,
		Message: msg,
		Errors:  []string{msg},
	})
}

const localBucketIdle = 10 * time.Minute

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localBuckets is the in-process stand-in for redis. Idle buckets are
// swept on access rather than by a background goroutine.
type localBuckets struct {
	mu        sync.Mutex
	limit     redis_rate.Limit
	buckets   map[string]*localBucket
	lastSweep time.Time
}

func newLocalBuckets(limit redis_rate.Limit) *localBuckets {
	return &localBuckets{
		limit:     limit,
		buckets:   make(map[string]*localBucket),
		lastSweep: time.Now(),
	}
}

func (l *localBuckets) allow(key string) *redis_rate.Result {
	now := time.Now()
	perToken := l.limit.Period / time.Duration(max(l.limit.Rate, 1))

	l.mu.Lock()
	if now.Sub(l.lastSweep) > localBucketIdle {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > localBucketIdle {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(rate.Every(perToken), l.limit.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)
	remaining := max(int(b.limiter.TokensAt(now)), 0)
	l.mu.Unlock()

	res := &redis_rate.Result{
		Limit:      l.limit,
		Remaining:  remaining,
		RetryAfter: -1,
		ResetAfter: perToken,
	}
	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = perToken
	}
	return res
}
