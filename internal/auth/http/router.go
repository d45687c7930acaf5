package http

import "github.com/gin-gonic/gin"

// Register attaches auth routes. requireAuth guards the session query and
// profile updates, limit throttles the credential endpoints.
func (h *Handler) Register(rg *gin.RouterGroup, requireAuth, limit gin.HandlerFunc) {
	rg.POST("/signup", limit, h.SignUp)
	rg.POST("/signin", limit, h.SignIn)
	rg.POST("/signout", h.SignOut)
	rg.GET("/session", requireAuth, h.GetSession)
	rg.PATCH("/profile", requireAuth, h.UpdateProfile)
}
