package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
	appErrors "github.com/noah-isme/tutor-sessions-api/pkg/errors"
	"github.com/noah-isme/tutor-sessions-api/pkg/response"
)

// RequireRoles admits callers holding one of roles. SUPERADMIN passes wherever ADMIN does.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles)+1)
	for _, r := range roles {
		allowed[r] = struct{}{}
		if r == models.RoleAdmin {
			allowed[models.RoleSuperAdmin] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role "+string(claims.Role)+" may not access this resource"))
			c.Abort()
			return
		}
		c.Next()
	}
}
