package rbac

import (
	"net/http"

	"cloudconnect/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireRole allows access only to callers holding exactly the given role.
// There is no role hierarchy: an admin-gated route names RoleAdmin, nothing
// is implied for other roles.
func RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := auth.Role(c.Request.Context())
		if err != nil || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "role required"})
			return
		}
		if role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireAdmin gates admin-only operations (user provisioning, bulk
// customer actions, data import).
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(RoleAdmin)
}
