package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/flyobo-travel-api/internal/application"
	"github.com/oksasatya/flyobo-travel-api/internal/container"
	handlers "github.com/oksasatya/flyobo-travel-api/internal/interface/http"
	"github.com/oksasatya/flyobo-travel-api/internal/interface/middleware"
	"github.com/oksasatya/flyobo-travel-api/internal/router/modules"
)

// NewEngine builds the gin engine with global middleware and every module
// registered.
func NewEngine(c *container.Container) *gin.Engine {
	cfg := c.Config
	r := gin.New()
	r.Use(middleware.Recovery(c.Logger))
	r.Use(middleware.RequestID(), middleware.RealIP())
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(c.Logger))
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.ErrorHandler(c.Logger))

	reg := NewRegistry(r, cfg.APIPrefix)
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}

type authDeps struct {
	Service *application.AuthService
	Handler *handlers.AuthHandler
}

func buildAuthDeps(c *container.Container) authDeps {
	index := c.UserIndex()
	service := application.NewAuthService(c.Users, c.JWT, c.Mail, c.Brand(), index, c.Logger)
	return authDeps{
		Service: service,
		Handler: handlers.NewAuthHandler(service, c.Logger, c.Cookies),
	}
}

type userDeps struct {
	Service *application.UserService
	Handler *handlers.UserHandler
}

func buildUserDeps(c *container.Container) userDeps {
	service := application.NewUserService(c.Users, c.AvatarStore(), c.UserIndex(), c.Logger)
	return userDeps{
		Service: service,
		Handler: handlers.NewUserHandler(service, c.Logger),
	}
}

// InitModules wires every module from the container. Call once at startup.
func InitModules(r *Registry, c *container.Container) {
	auth := buildAuthDeps(c)
	user := buildUserDeps(c)

	r.Add(modules.NewHealthModule(c.Config.AppName, c.Config.StoreDriver, c.Redis))
	r.Add(modules.NewAuthModule(auth.Handler, c.Users, c.JWT, c.Redis))
	r.Add(modules.NewUserModule(user.Handler, c.Users, c.JWT, c.Redis))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}

	r.AddRoot(modules.NewBannerModule(c.Config.CompanyName))
	r.AddRoot(modules.NewRealtimeModule(c.Hub))
}
