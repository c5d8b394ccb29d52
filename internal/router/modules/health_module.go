package modules

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/flyobo-travel-api/pkg/response"
)

type HealthModule struct {
	App     string
	Store   string
	Redis   *redis.Client
	started time.Time
}

func NewHealthModule(app, store string, rdb *redis.Client) *HealthModule {
	return &HealthModule{App: app, Store: store, Redis: rdb, started: time.Now()}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.health)
}

func (m *HealthModule) health(c *gin.Context) {
	redisState := "disabled"
	if m.Redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		redisState = "up"
		if err := m.Redis.Ping(ctx).Err(); err != nil {
			redisState = "down"
		}
	}
	response.Data(c, http.StatusOK, "OK", gin.H{
		"app":    m.App,
		"store":  m.Store,
		"redis":  redisState,
		"uptime": time.Since(m.started).Round(time.Second).String(),
	})
}
