package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"freightdesk/api/internal/models"
	"freightdesk/api/internal/security"
	"freightdesk/api/internal/service"
)

func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		userVal, exists := c.Get("current_user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		user, ok := userVal.(models.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_user"})
			return
		}

		if _, ok := roleSet[user.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}

// RequireAdminDevice re-checks the admin whitelist on every request to an
// admin surface. The gate at login is not enough on its own: a device
// de-whitelisted mid-session must lose admin access before its token
// expires.
func RequireAdminDevice(gate *service.WhitelistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsVal, exists := c.Get("session_claims")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		claims, ok := claimsVal.(security.SessionClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_claims"})
			return
		}

		authorized, err := gate.IsDeviceAuthorized(c.Request.Context(), claims.DeviceID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
			return
		}
		if !authorized {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin_device_not_whitelisted"})
			return
		}

		c.Next()
	}
}
