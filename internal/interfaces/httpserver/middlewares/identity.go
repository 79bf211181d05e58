package middlewares

import (
	"github.com/gin-gonic/gin"

	"lesson-server/services/chat-api/internal/config"
	"lesson-server/services/chat-api/internal/domain"
)

const (
	ownerIDHeader = "X-Owner-Id"
	principalKey  = "principal"
)

// Identity resolves the caller's principal. Requests without an owner header
// run as the reserved demo identity; DEMO_MODE_FORCED routes everyone there.
func Identity(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := c.GetHeader(ownerIDHeader)
		if cfg.DemoModeForced || ownerID == "" || ownerID == cfg.DemoOwnerID {
			c.Set(principalKey, domain.NewDemoPrincipal(cfg.DemoOwnerID))
		} else {
			c.Set(principalKey, domain.Principal{OwnerID: ownerID})
		}
		c.Next()
	}
}

// PrincipalFromContext returns the principal resolved by Identity.
func PrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	val, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := val.(domain.Principal)
	return p, ok
}
