package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/library-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/library-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/library-service/internal/platform/config"
	"github.com/jsamuelsen/library-service/internal/platform/telemetry"
)

// RouterConfig contains everything SetupRouter wires onto the engine.
type RouterConfig struct {
	// ServiceName names the otelgin server spans.
	ServiceName string

	// Telemetry enables tracing and OpenTelemetry HTTP metrics.
	Telemetry bool

	// RequestTimeout bounds /api requests. Zero disables it.
	RequestTimeout time.Duration

	Auth      config.AuthConfig
	RateLimit config.RateLimitConfig

	Books  *handlers.BookHandler
	Health *handlers.HealthHandler
}

// SetupRouter installs the middleware chain and routes. Global middleware,
// first to last:
//  1. Recovery
//  2. Request ID
//  3. Correlation ID
//  4. OpenTelemetry tracing and metrics, when enabled
//  5. Logging (skips /-/)
//
// Route groups:
//   - /-/ operational endpoints, no auth, no timeout
//   - /api book endpoints with rate limiting, timeout and write guards
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.HandleMethodNotAllowed = true

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	if cfg.Telemetry {
		engine.Use(
			telemetry.TracingMiddleware(cfg.ServiceName),
			telemetry.Middleware(),
		)
	}
	engine.Use(middleware.Logging())

	engine.NoRoute(noRoute)
	engine.NoMethod(noMethod)

	if cfg.Health != nil {
		cfg.Health.RegisterHealthRoutes(engine.Group("/-"))
	}

	api := engine.Group("/api")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).Middleware())
	}
	api.Use(middleware.Timeout(cfg.RequestTimeout))

	if cfg.Books != nil {
		cfg.Books.RegisterBookRoutes(api, middleware.WriteGuards(cfg.Auth)...)
	}
}
