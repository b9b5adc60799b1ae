package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/library-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/library-service/internal/platform/logging"
)

// Recovery returns middleware that turns a panic into a 500 error envelope
// and logs it with the stack. Register it first so it covers every later handler.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			ctx := c.Request.Context()
			attrs := []any{
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
			}
			if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
				attrs = append(attrs, slog.String("trace_id", sc.TraceID().String()))
			}
			logging.FromContext(ctx).ErrorContext(ctx, "panic recovered", attrs...)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			dto.Abort(c, http.StatusInternalServerError, dto.MsgInternal)
		}()

		c.Next()
	}
}
