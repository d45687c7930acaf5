package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
)

const (
	CtxPrincipal = "principal"
	CtxToken     = "session_token"
)

// PrincipalFrom returns the principal set by the authentication middleware.
func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(CtxPrincipal)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok && p.ID != ""
}

// UserID returns the authenticated principal's id, or "".
func UserID(c *gin.Context) string {
	p, _ := PrincipalFrom(c)
	return p.ID
}

// BearerToken extracts the Bearer token from the Authorization header
func BearerToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.EqualFold(bearerToken[:7], "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
