package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/library-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/library-service/internal/platform/config"
	"github.com/jsamuelsen/library-service/internal/platform/logging"
)

// ContextKeyClaims is the gin context key holding the caller's Claims.
const ContextKeyClaims = "claims"

// Claims is the caller identity forwarded by the gateway, which has already
// verified the token.
type Claims struct {
	Subject string
	Roles   []string
}

// HasRole reports whether the caller holds role.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// ExtractClaims reads the identity headers named in cfg. Roles are comma separated.
func ExtractClaims(c *gin.Context, cfg config.AuthConfig) *Claims {
	claims := &Claims{Subject: strings.TrimSpace(c.GetHeader(cfg.SubjectHeader))}

	for _, role := range strings.Split(c.GetHeader(cfg.RolesHeader), ",") {
		if role = strings.TrimSpace(role); role != "" {
			claims.Roles = append(claims.Roles, role)
		}
	}

	return claims
}

// GetClaims returns the claims stored by RequireAuth, or nil.
func GetClaims(c *gin.Context) *Claims {
	if v, ok := c.Get(ContextKeyClaims); ok {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}

	return nil
}

// RequireAuth rejects requests without a subject with 401.
func RequireAuth(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ExtractClaims(c, cfg)
		if claims.Subject == "" {
			dto.Abort(c, http.StatusUnauthorized, dto.MsgUnauthorized)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(),
			logging.FromContext(c.Request.Context()).With(slog.String("subject", claims.Subject))))
		c.Next()
	}
}

// RequireRole rejects callers lacking role with 403. It reuses the claims
// stored by RequireAuth when present.
func RequireRole(cfg config.AuthConfig, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			claims = ExtractClaims(c, cfg)
			c.Set(ContextKeyClaims, claims)
		}

		if !claims.HasRole(role) {
			ctx := c.Request.Context()
			logging.FromContext(ctx).WarnContext(ctx, "write refused",
				slog.String("subject", claims.Subject),
				slog.String("required_role", role),
			)
			dto.Abort(c, http.StatusForbidden, dto.MsgForbidden)
			return
		}

		c.Next()
	}
}

// WriteGuards returns the handlers that protect mutating book routes, or
// none when auth is disabled.
func WriteGuards(cfg config.AuthConfig) []gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}

	return []gin.HandlerFunc{RequireAuth(cfg), RequireRole(cfg, cfg.WriteRole)}
}
