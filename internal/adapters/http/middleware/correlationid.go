package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/library-service/internal/platform/logging"
)

const (
	// HeaderCorrelationID spans a whole business transaction across services,
	// unlike the per-hop request ID.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyCorrelationID is the gin context key holding the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

// CorrelationID returns middleware that propagates X-Correlation-ID, starting
// a new one when this service is the origin.
func CorrelationID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName: HeaderCorrelationID,
		contextKey: ContextKeyCorrelationID,
		enrich:     logging.WithCorrelationID,
	})
}

// GetCorrelationID returns the correlation ID, or "" outside the middleware.
func GetCorrelationID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyCorrelationID)
}
