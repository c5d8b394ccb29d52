package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/flyobo-travel-api/internal/domain/entity"
	repo "github.com/oksasatya/flyobo-travel-api/internal/domain/repository"
	"github.com/oksasatya/flyobo-travel-api/internal/infrastructure/memory"
	"github.com/oksasatya/flyobo-travel-api/pkg/apperror"
	"github.com/oksasatya/flyobo-travel-api/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type gateFixture struct {
	engine *gin.Engine
	users  *memory.UserRepository
	jwt    *helpers.JWTManager
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	f := &gateFixture{users: memory.NewUserRepository(), jwt: helpers.NewJWTManager("gate-secret", time.Hour)}
	f.engine = gin.New()
	f.engine.Use(ErrorHandler(quietLogger()))
	ok := func(c *gin.Context) {
		u, found := CurrentUser(c)
		require.True(t, found)
		require.Equal(t, u.Role, UserRole(c))
		c.JSON(http.StatusOK, gin.H{"success": true, "message": UserID(c) + ":" + string(u.Role)})
	}
	f.engine.GET("/me", Authenticate(f.users, f.jwt), ok)
	f.engine.GET("/admin", AuthenticateAdmin(f.users, f.jwt), ok)
	return f
}

func (f *gateFixture) user(t *testing.T, email string, role entity.Role) (*entity.User, string) {
	t.Helper()
	u, err := f.users.Create(context.Background(), &entity.User{Name: "U", Email: email, Role: role})
	require.NoError(t, err)
	tok, _, err := f.jwt.Generate(u.ID)
	require.NoError(t, err)
	return u, tok
}

func (f *gateFixture) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: helpers.SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	f := newGateFixture(t)
	u, tok := f.user(t, "ann@x.com", entity.RoleUser)

	w := f.get("/me", tok)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, u.ID+":user", decode(t, w).Message)
}

func TestAuthenticateFailures(t *testing.T) {
	f := newGateFixture(t)
	expired := helpers.NewJWTManager("gate-secret", -time.Minute)
	expiredTok, _, err := expired.Generate("00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	noSubject, _, err := f.jwt.Generate("")
	require.NoError(t, err)
	ghost, _, err := f.jwt.Generate("00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	malformed, _, err := f.jwt.Generate("not-a-uuid")
	require.NoError(t, err)

	cases := []struct {
		name  string
		token string
		msg   string
	}{
		{"missing cookie", "", "Token not found!"},
		{"garbage", "not-a-jwt", "Not authorized, login again!"},
		{"expired", expiredTok, "Not authorized, login again!"},
		{"no subject", noSubject, "Invalid token payload!"},
		{"unknown user", ghost, "User not found!"},
		{"malformed id", malformed, "Not authorized, login again!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.get("/me", tc.token)
			require.Equal(t, http.StatusUnauthorized, w.Code)
			env := decode(t, w)
			require.False(t, env.Success)
			require.Equal(t, tc.msg, env.Message)
		})
	}
}

func TestAuthenticateAdmin(t *testing.T) {
	f := newGateFixture(t)
	_, userTok := f.user(t, "ann@x.com", entity.RoleUser)
	_, adminTok := f.user(t, "boss@x.com", entity.RoleAdmin)

	w := f.get("/admin", userTok)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "Access denied. Admin only!", decode(t, w).Message)

	w = f.get("/admin", adminTok)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.get("/admin", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNormalize(t *testing.T) {
	expiredErr := fmt.Errorf("parse: %w", jwt.ErrTokenExpired)
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{repo.ErrInvalidID, 400, "Resource not found. Invalid id"},
		{fmt.Errorf("create: %w", repo.ErrDuplicateKey), 400, "Duplicate email entered"},
		{expiredErr, 401, "JSON Web Token has expired, try again"},
		{jwt.ErrTokenMalformed, 401, "JSON Web Token is invalid, try again"},
		{apperror.Forbidden("nope"), 403, "nope"},
		{errors.New("disk on fire"), 500, "Internal Server Error!"},
	}
	for _, tc := range cases {
		got := Normalize(tc.err)
		require.Equal(t, tc.status, got.Status(), tc.err.Error())
		require.Equal(t, tc.msg, got.Message)
	}
}

func TestErrorHandlerHidesInternalCause(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(quietLogger()))
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("pq: password authentication failed")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "Internal Server Error!", decode(t, w).Message)
	require.NotContains(t, w.Body.String(), "password authentication")
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(quietLogger()))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode(t, w)
	require.False(t, env.Success)
	require.Equal(t, "Internal Server Error!", env.Message)
}

func TestRecoveryCoversLaterMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(quietLogger()), RequestID())
	r.Use(func(c *gin.Context) { panic("boom in middleware") })
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode(t, w)
	require.False(t, env.Success)
	require.Equal(t, "Internal Server Error!", env.Message)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, w.Body.String(), 36)
	require.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "3f2504e0-4f89-11d3-9a0c-0305e82c3301")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "3f2504e0-4f89-11d3-9a0c-0305e82c3301", w.Body.String())
}

func TestRealIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, ClientIP(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "203.0.113.7", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-Connecting-IP", "198.51.100.2")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "198.51.100.2", w.Body.String())
}

func limitedEngine(rdb *redis.Client, max int) *gin.Engine {
	r := gin.New()
	r.Use(RealIP())
	r.POST("/login", RateLimit(rdb, max, time.Minute, KeyByIPAndPath(), nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func hit(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("X-Forwarded-For", ip)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	r := limitedEngine(rdb, 3)

	for i := 1; i <= 3; i++ {
		w := hit(r, "203.0.113.1")
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, fmt.Sprint(3-i), w.Header().Get("X-RateLimit-Remaining"))
	}
	w := hit(r, "203.0.113.1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "rate limit exceeded", decode(t, w).Message)
	require.NotEmpty(t, w.Header().Get("Retry-After"))

	require.Equal(t, http.StatusOK, hit(r, "203.0.113.2").Code, "other clients keep their own budget")

	mr.FastForward(time.Minute + time.Second)
	require.Equal(t, http.StatusOK, hit(r, "203.0.113.1").Code)
}

func TestRateLimitRedisFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	r := limitedEngine(rdb, 1)
	mr.Close()

	require.Equal(t, http.StatusOK, hit(r, "203.0.113.1").Code)
	require.Equal(t, http.StatusOK, hit(r, "203.0.113.1").Code)
}

func TestRateLimitInMemory(t *testing.T) {
	r := limitedEngine(nil, 2)

	require.Equal(t, http.StatusOK, hit(r, "203.0.113.1").Code)
	w := hit(r, "203.0.113.1")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	require.Equal(t, http.StatusTooManyRequests, hit(r, "203.0.113.1").Code)
	require.Equal(t, http.StatusOK, hit(r, "203.0.113.9").Code)
}

func TestMemoryLimiterRefills(t *testing.T) {
	m := newMemoryLimiter(2, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }

	_, _, _ = m.take(nil, "k")
	count, _, _ := m.take(nil, "k")
	require.Equal(t, 2, count)
	count, reset, _ := m.take(nil, "k")
	require.Equal(t, 3, count)
	require.Greater(t, reset, time.Duration(0))

	now = now.Add(30 * time.Second)
	count, _, _ = m.take(nil, "k")
	require.LessOrEqual(t, count, 2)
}

func TestRateLimitSkipsAllowedCallers(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", RateLimit(nil, 1, time.Minute, KeyByIP(), AllowPrivateIP()), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "10.1.2.3")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusNoContent, w.Code)
	}
}
