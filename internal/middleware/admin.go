package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/prep-pilot/internal/apierr"
	"github.com/justsurfingit/prep-pilot/internal/logger"
	"github.com/justsurfingit/prep-pilot/internal/services"
)

const adminIdentityKey = "admin_identity"

// Authorizer is satisfied by *services.AccessGate.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*services.AdminIdentity, error)
}

// RequireAdmin aborts with 401/403 before the handler runs unless the bearer
// token belongs to an administrator.
func RequireAdmin(gate Authorizer, log *logger.Logger) gin.HandlerFunc {
	mwLog := log.With("middleware", "RequireAdmin")
	return func(c *gin.Context) {
		identity, err := gate.Authorize(c.Request.Context(), bearerToken(c))
		if err != nil {
			status := apierr.StatusOf(err)
			if status >= 500 {
				mwLog.Error("Admin authorization failed", "error", err, "path", c.FullPath())
			}
			c.AbortWithStatusJSON(status, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.Set(adminIdentityKey, identity)
		c.Next()
	}
}

// AdminFromContext returns the identity stored by RequireAdmin.
func AdminFromContext(c *gin.Context) (*services.AdminIdentity, bool) {
	v, ok := c.Get(adminIdentityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*services.AdminIdentity)
	return id, ok
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
