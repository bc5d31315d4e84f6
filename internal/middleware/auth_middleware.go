package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tagsy/tagsy-backend/internal/errors"
	"github.com/tagsy/tagsy-backend/pkg/util"
)

// Context keys set by the middleware
const (
	ShardIDKey = "shard_id"
)

// AuthMiddleware authenticates gateway shards (JWT service tokens) and the
// bot owner (plain key checked against a bcrypt hash) on the maintenance
// surface.
type AuthMiddleware struct {
	serviceTokenSecret string
	ownerKeyHash       string
}

func NewAuthMiddleware(serviceTokenSecret, ownerKeyHash string) *AuthMiddleware {
	return &AuthMiddleware{
		serviceTokenSecret: serviceTokenSecret,
		ownerKeyHash:       ownerKeyHash,
	}
}

// Authenticate validates the shard's service token
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		var token string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.RespondWithError(c, 401, errors.AuthTokenInvalid, "invalid authorization header format")
				c.Abort()
				return
			}
			token = parts[1]
		} else {
			// WebSocket clients can't set headers from every runtime; allow
			// the token as a query parameter there.
			token = c.Query("token")
			if token == "" {
				log.Warn("Missing authorization header", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.Unauthorized(c, "")
				c.Abort()
				return
			}
		}

		claims, err := util.ValidateServiceToken(token, m.serviceTokenSecret)
		if err != nil {
			log.Warn("Service token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if err == util.ErrExpiredToken {
				errors.RespondWithError(c, 401, errors.AuthTokenExpired, "service token has expired")
			} else {
				errors.RespondWithError(c, 401, errors.AuthTokenInvalid, "invalid service token")
			}
			c.Abort()
			return
		}

		c.Set(ShardIDKey, claims.ShardID)
		c.Next()
	}
}

// RequireOwner gates the maintenance endpoints behind the owner key
func (m *AuthMiddleware) RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		key := c.GetHeader("X-Owner-Key")
		if m.ownerKeyHash == "" || key == "" || !util.VerifyOwnerKey(m.ownerKeyHash, key) {
			log.Warn("Owner key check failed", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Forbidden(c, errors.AuthOwnerOnly, "owner key required")
			c.Abort()
			return
		}

		c.Next()
	}
}
