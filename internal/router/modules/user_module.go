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

// UserModule mounts /user. Every route needs a session; search is admin only.
type UserModule struct {
	Handler *handlers.UserHandler
	Users   repo.UserRepository
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, users repo.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Users: users, JWT: jwt, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	perUser := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil)

	g := rg.Group("/user")
	g.GET("/search", middleware.AuthenticateAdmin(m.Users, m.JWT), perUser, m.Handler.Search)

	session := g.Group("")
	session.Use(middleware.Authenticate(m.Users, m.JWT), perUser)
	{
		session.GET("/profile", m.Handler.GetProfile)
		session.PUT("/profile", m.Handler.UpdateProfile)
		session.POST("/avatar", m.Handler.UploadAvatar)
	}
}
