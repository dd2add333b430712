package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"freightdesk/api/internal/cache"
	"freightdesk/api/internal/config"
	"freightdesk/api/internal/models"
	"freightdesk/api/internal/repository"
	"freightdesk/api/internal/security"
)

// Auth validates the bearer token, rejects tokens whose license key is on
// the revocation list, and loads the current user. Tokens are stateless;
// the revocation list is what lets an admin revoke a license without
// waiting out the token's validity window.
func Auth(cfg *config.AppConfig, users *repository.UserRepository, revocations *cache.RevocationList) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseToken(tokenStr, cfg.Security.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		if claims.LicenseKey != "" {
			revoked, reason, err := revocations.Contains(c.Request.Context(), claims.LicenseKey)
			if err == nil && revoked {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error":  "license_revoked",
					"reason": reason,
				})
				return
			}
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_not_found"})
			return
		}

		if user.Status != models.UserStatusActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user_inactive"})
			return
		}

		c.Set("session_claims", *claims)
		c.Set("current_user", user)

		c.Next()
	}
}
