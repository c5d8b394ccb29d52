package router

import "github.com/gin-gonic/gin"

// Module mounts a feature's routes. API modules receive the prefixed group,
// root modules the engine's own group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
