package dto

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/library-service/internal/domain"
	"github.com/jsamuelsen/library-service/internal/platform/logging"
)

// MapError maps an error to an HTTP status and error envelope. Unknown
// errors become a 500 with a generic message so internals never leak.
// overrides customizes field messages for validator errors.
func MapError(err error, overrides map[string]string) (int, Envelope) {
	var (
		maxBytesErr *http.MaxBytesError
		dateErr     *domain.PublishDateError
		fieldErr    *domain.ValidationError
	)

	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, Failure(MsgBodyTooLarge, nil)

	case errors.Is(err, ErrBinding):
		return http.StatusBadRequest, Failure(MsgMalformedBody, nil)

	case IsValidationError(err):
		return http.StatusBadRequest, Failure(MsgValidationFailed, FieldErrorsPayload(ValidationErrors(err, overrides)))

	case errors.As(err, &dateErr):
		return http.StatusBadRequest, Failure(dateErr.Message, nil)

	case errors.As(err, &fieldErr):
		if fieldErr.Field == "" {
			return http.StatusBadRequest, Failure(fieldErr.Message, nil)
		}
		return http.StatusBadRequest, Failure(MsgValidationFailed, FieldErrorsPayload{fieldErr.Field: fieldErr.Message})

	case domain.IsConflict(err):
		return http.StatusConflict, Failure(MsgConflict, nil)

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, Failure(MsgUnavailable, nil)

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, Failure(MsgTimeout, nil)

	default:
		return http.StatusInternalServerError, Failure(MsgInternal, nil)
	}
}

// HandleError writes the envelope for err. Server-side failures are logged
// with the request's trace id.
func HandleError(c *gin.Context, err error) {
	handleError(c, err, nil)
}

// HandleRequestError is HandleError with the field messages of req.
func HandleRequestError(c *gin.Context, err error, req MessageOverrider) {
	handleError(c, err, req.FieldMessages())
}

func handleError(c *gin.Context, err error, overrides map[string]string) {
	status, env := MapError(err, overrides)

	if status >= http.StatusInternalServerError {
		ctx := c.Request.Context()
		attrs := []any{
			slog.Int("status", status),
			slog.String("error", err.Error()),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			attrs = append(attrs, slog.String("trace_id", sc.TraceID().String()))
		}
		logging.FromContext(ctx).ErrorContext(ctx, "request failed", attrs...)
	}

	_ = c.Error(err)
	c.JSON(status, env)
}

// Abort stops the handler chain with an error envelope carrying message.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Failure(message, nil))
}
