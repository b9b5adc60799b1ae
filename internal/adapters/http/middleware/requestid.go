// Package middleware provides the gin middleware of the library API.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/library-service/internal/platform/logging"
)

const (
	// HeaderRequestID is the header name for request ID.
	HeaderRequestID = "X-Request-ID"

	// ContextKeyRequestID is the gin context key holding the request ID.
	ContextKeyRequestID = "request_id"
)

// RequestID returns middleware that adopts or generates a per-request ID
// and adds it to the response headers and the request logger.
func RequestID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName: HeaderRequestID,
		contextKey: ContextKeyRequestID,
		enrich:     logging.WithRequestID,
	})
}

// GetRequestID returns the request ID, or "" outside the middleware.
func GetRequestID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyRequestID)
}
