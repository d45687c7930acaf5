package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/eprod/internal/auth"
	"github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
)

// UpdateProfile updates the user's profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := auth.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated", "code": "unauthorized"})
		return
	}

	var patch domain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body", "code": "validation"})
		return
	}

	profile, err := h.authService.UpdateProfile(c.Request.Context(), userID, patch)
	if err != nil {
		h.writeError(c, "update_profile", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "profile": profile})
}
