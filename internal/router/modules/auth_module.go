package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	repo "github.com/oksasatya/flyobo-travel-api/internal/domain/repository"
	handlers "github.com/oksasatya/flyobo-travel-api/internal/interface/http"
	"github.com/oksasatya/flyobo-travel-api/internal/interface/middleware"
	"github.com/oksasatya/flyobo-travel-api/pkg/helpers"
)

// AuthModule mounts /auth.
// Public: register, login, send-reset-otp, reset-password, google
// Session: logout, isAuthenticated, send-verify-otp, verify-email
type AuthModule struct {
	Handler *handlers.AuthHandler
	Users   repo.UserRepository
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, users repo.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Users: users, JWT: jwt, Redis: rdb}
}

func (m *AuthModule) limit(max int) gin.HandlerFunc {
	return middleware.RateLimit(m.Redis, max, time.Minute, middleware.KeyByIPAndPath(), nil)
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/auth")

	g.POST("/register", m.limit(10), m.Handler.Register)
	g.POST("/login", m.limit(10), m.Handler.Login)
	g.POST("/send-reset-otp", m.limit(5), m.Handler.SendResetOTP)
	g.POST("/reset-password", m.limit(30), m.Handler.ResetPassword)
	g.POST("/google", m.limit(30), m.Handler.Google)

	session := g.Group("")
	session.Use(
		middleware.Authenticate(m.Users, m.JWT),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		session.POST("/logout", m.Handler.Logout)
		session.GET("/isAuthenticated", m.Handler.IsAuthenticated)
		session.POST("/send-verify-otp", m.Handler.SendVerifyOTP)
		session.POST("/verify-email", m.Handler.VerifyEmail)
	}
}
