package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the given router group. The group must
// already be behind the authentication middleware.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}
