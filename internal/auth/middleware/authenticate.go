package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/eprod/internal/auth"
	"github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
	"github.com/GoSim-25-26J-441/eprod/internal/logging"
)

// TokenVerifier resolves a bearer token to a principal.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Principal, error)
}

// Authenticate requires a bearer token accepted by one of the verifiers,
// tried in order, and stores the principal in the context.
func Authenticate(logger *zap.Logger, verifiers ...TokenVerifier) gin.HandlerFunc {
	logger = logging.OrNop(logger)

	return func(c *gin.Context) {
		token := auth.BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token", "code": "unauthorized"})
			return
		}

		for _, v := range verifiers {
			p, err := v.Verify(c.Request.Context(), token)
			if err != nil {
				logger.Debug("token rejected", zap.Error(err))
				continue
			}
			c.Set(auth.CtxPrincipal, *p)
			c.Set(auth.CtxToken, token)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token", "code": "unauthorized"})
	}
}
