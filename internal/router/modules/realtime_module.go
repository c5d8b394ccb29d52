package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/flyobo-travel-api/internal/interface/realtime"
)

type RealtimeModule struct {
	Hub *realtime.Hub
}

func NewRealtimeModule(hub *realtime.Hub) *RealtimeModule { return &RealtimeModule{Hub: hub} }

func (m *RealtimeModule) Register(rg *gin.RouterGroup) {
	rg.GET("/socket", m.Hub.Handle)
}
