package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxInboundIDLength bounds caller-supplied ids echoed into headers and logs.
const maxInboundIDLength = 128

// idMiddlewareConfig describes one propagated identifier.
type idMiddlewareConfig struct {
	headerName string
	contextKey string
	enrich     func(ctx context.Context, id string) context.Context
}

// createIDMiddleware adopts the inbound header value when it is usable and
// otherwise generates a UUID v4. The id is stored on the gin context, echoed
// in the response and attached to the request logger.
func createIDMiddleware(cfg idMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(cfg.headerName)
		if !usableID(id) {
			id = uuid.NewString()
		}

		c.Set(cfg.contextKey, id)
		c.Header(cfg.headerName, id)

		if cfg.enrich != nil {
			c.Request = c.Request.WithContext(cfg.enrich(c.Request.Context(), id))
		}

		c.Next()
	}
}

// usableID accepts non-empty printable ASCII up to maxInboundIDLength.
func usableID(id string) bool {
	if id == "" || len(id) > maxInboundIDLength {
		return false
	}

	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}

	return true
}

func getIDFromContext(c *gin.Context, key string) string {
	return c.GetString(key)
}
