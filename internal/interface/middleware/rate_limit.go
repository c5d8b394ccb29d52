package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/oksasatya/flyobo-travel-api/pkg/response"
)

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request
// Example: combine client IP and route path for more granular limiting
type KeyFunc func(c *gin.Context) string

// KeyByIP returns a key function that limits by client IP only
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath returns a key function that limits by client IP and request path
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserID limits signed-in callers per account; it must run after the session gate.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		uid := UserID(c)
		if uid == "" {
			return "rl:user:anon:ip:" + ipFromCtx(c)
		}
		return "rl:user:" + uid
	}
}

// Lua script: atomic INCR, set PEXPIRE on the first hit of a window
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

type AllowFunc func(*gin.Context) bool // return true for bypass limit

// RateLimit allows max requests per window for each key.
// - atomic redis (lua) fixed window when rdb is set
// - in-process token bucket (x/time/rate) when it is not
// - standard headers (limit/remaining/reset)
// - optional allowlist bypass; OPTIONS is never limited
func RateLimit(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	var take func(c *gin.Context, key string) (count int, reset time.Duration, ok bool)
	if rdb != nil {
		take = redisTaker(rdb, window)
	} else {
		take = newMemoryLimiter(max, window).take
	}
	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		count, reset, ok := take(c, keyFn(c))
		if !ok {
			// fail open when redis errors
			c.Next()
			return
		}
		resetSec := int(reset.Round(time.Second).Seconds())
		remaining := max - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Error(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}

func redisTaker(rdb *redis.Client, window time.Duration) func(*gin.Context, string) (int, time.Duration, bool) {
	return func(c *gin.Context, key string) (int, time.Duration, bool) {
		ctx := c.Request.Context()
		countI, err := incrExpireScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Result()
		if err != nil {
			return 0, 0, false
		}
		ttl, _ := rdb.PTTL(ctx, key).Result()
		if ttl < 0 {
			ttl = 0
		}
		return toInt(countI), ttl, true
	}
}

// memoryLimiter keeps one token bucket per key, refilled evenly over the window.
type memoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	max     int
	every   rate.Limit
	window  time.Duration
	calls   int
	now     func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newMemoryLimiter(max int, window time.Duration) *memoryLimiter {
	return &memoryLimiter{
		buckets: make(map[string]*bucket),
		max:     max,
		every:   rate.Every(window / time.Duration(max)),
		window:  window,
		now:     time.Now,
	}
}

// take reports the request as the count-th of the current window so both
// limiters share the header logic.
func (m *memoryLimiter) take(_ *gin.Context, key string) (int, time.Duration, bool) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.calls%1024 == 0 {
		m.sweep(now)
	}
	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(m.every, m.max)}
		m.buckets[key] = b
	}
	b.seen = now

	allowed := b.lim.AllowN(now, 1)
	tokens := b.lim.TokensAt(now)
	if tokens < 0 {
		tokens = 0
	}
	missing := float64(m.max) - tokens
	reset := time.Duration(missing / float64(m.every) * float64(time.Second))
	count := m.max - int(tokens)
	if !allowed {
		count = m.max + 1
	}
	return count, reset, true
}

func (m *memoryLimiter) sweep(now time.Time) {
	for k, b := range m.buckets {
		if now.Sub(b.seen) > 2*m.window {
			delete(m.buckets, k)
		}
	}
}

func toInt(v interface{}) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	}
	return 0
}
