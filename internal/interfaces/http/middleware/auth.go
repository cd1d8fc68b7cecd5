package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	claimsContextKey = "admin_claims"
	bearerPrefix     = "Bearer "
)

// TokenValidator checks a bearer token
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// AdminAuthConfig configures AdminAuth
type AdminAuthConfig struct {
	Validator TokenValidator
	// Blacklist is optional; without it logout cannot revoke tokens
	Blacklist auth.TokenBlacklist
	Logger    *zap.Logger
	// AllowQueryToken accepts ?token= for clients that cannot set headers, such as EventSource
	AllowQueryToken bool
}

// AdminAuth requires a valid admin bearer token
func AdminAuth(cfg AdminAuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" && cfg.AllowQueryToken {
			token = c.Query("token")
		}
		if token == "" {
			abortUnauthorized(c, shared.CodeUnauthorized, "Authentication required")
			return
		}

		claims, err := cfg.Validator.ValidateToken(token)
		if err != nil {
			log.Debug("Rejected admin token", zap.Error(err), zap.String("path", c.Request.URL.Path))
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid token")
			return
		}

		if cfg.Blacklist != nil {
			revoked, err := cfg.Blacklist.IsRevoked(c.Request.Context(), claims.ID)
			switch {
			case err != nil:
				// fail open
				log.Error("Token blacklist lookup failed", zap.Error(err))
			case revoked:
				abortUnauthorized(c, dto.ErrCodeTokenRevoked, "Token has been revoked")
				return
			}
		}

		c.Set(claimsContextKey, claims)
		ctx := logger.WithContext(c.Request.Context(), logger.FromContext(c.Request.Context()).With(zap.String("admin", claims.Username)))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetAdminClaims returns the claims stored by AdminAuth, or nil
func GetAdminClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(claimsContextKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="admin"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
