package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/eprod/internal/auth"
	"github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
)

// SignUp creates an account and returns its first session.
func (h *Handler) SignUp(c *gin.Context) {
	var req domain.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body", "code": "validation"})
		return
	}

	sess, err := h.authService.SignUp(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, "signup", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "session": sess})
}

// SignIn exchanges credentials for a session.
func (h *Handler) SignIn(c *gin.Context) {
	var creds domain.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body", "code": "validation"})
		return
	}

	sess, err := h.authService.SignIn(c.Request.Context(), creds)
	if err != nil {
		h.writeError(c, "signin", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "session": sess})
}

// SignOut ends the caller's session. It succeeds for unknown or missing tokens.
func (h *Handler) SignOut(c *gin.Context) {
	if err := h.authService.SignOut(c.Request.Context(), auth.BearerToken(c)); err != nil {
		h.writeError(c, "signout", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetSession returns the session behind the bearer token. Tokens accepted
// by another verifier have no stored session and are described from the
// authenticated principal.
func (h *Handler) GetSession(c *gin.Context) {
	ctx := c.Request.Context()
	sess, err := h.authService.Session(ctx, auth.BearerToken(c))
	if errors.Is(err, domain.ErrSessionNotFound) {
		if p, ok := auth.PrincipalFrom(c); ok {
			sess, err = h.authService.PrincipalSession(ctx, p.ID)
		}
	}
	if err != nil {
		h.writeError(c, "session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": sess})
}

func (h *Handler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid email or password", "code": "invalid_credentials"})
	case errors.Is(err, domain.ErrSessionNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "no active session", "code": "unauthorized"})
	case errors.Is(err, domain.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "email already exists", "code": "email_taken"})
	case errors.Is(err, domain.ErrWeakCredential):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "error": err.Error(), "code": "weak_password"})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error(), "code": "validation"})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "user not found", "code": "not_found"})
	default:
		h.logger.Error("auth request failed", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error", "code": "internal"})
	}
}
