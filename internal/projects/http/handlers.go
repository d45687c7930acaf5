package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/eprod/internal/auth"
	"github.com/GoSim-25-26J-441/eprod/internal/projects/domain"
)

func (h *Handler) create(c *gin.Context) {
	var draft domain.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body", "code": "validation"})
		return
	}

	p, err := h.projects.Create(c.Request.Context(), auth.UserID(c), draft)
	if err != nil {
		h.writeError(c, "create", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) list(c *gin.Context) {
	userID := auth.UserID(c)
	if owner := c.Query("owner"); owner != "" && owner != userID {
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "owner does not match session", "code": "forbidden"})
		return
	}

	items, err := h.projects.List(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) update(c *gin.Context) {
	var patch domain.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body", "code": "validation"})
		return
	}

	p, err := h.projects.Update(c.Request.Context(), auth.UserID(c), c.Param("id"), patch)
	if err != nil {
		h.writeError(c, "update", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		h.writeError(c, "delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error(), "code": "validation"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found", "code": "not_found"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "not signed in", "code": "unauthorized"})
	default:
		h.logger.Error("project request failed",
			zap.String("op", op),
			zap.String("project_id", c.Param("id")),
			zap.String("owner", auth.UserID(c)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error", "code": "internal"})
	}
}
