package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextUserIDKey      = "userID"
	ContextRoleKey        = "role"
	ContextPermissionsKey = "permissions"
)

// AuthMiddleware проверяет JWT access токен и кладёт клеймы в контекст.
func AuthMiddleware(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация"})
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		claims, err := tokens.ParseAccess(raw)
		if err != nil || claims.UserID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "токен невалиден"})
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Set(ContextPermissionsKey, claims.Permissions)
		c.Next()
	}
}

// RequireModerator пускает дальше только пользователей с ролью ADMIN или
// MODERATOR, либо с правом MODERATE_CONTENT / MODERATE_ALL.
// Запускается после AuthMiddleware.
func RequireModerator() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRoleKey)
		if role == models.RoleAdmin || role == models.RoleModerator {
			c.Next()
			return
		}

		if perms, ok := c.Get(ContextPermissionsKey); ok {
			if list, ok := perms.([]string); ok {
				for _, p := range list {
					if p == models.PermissionModerateContent || p == models.PermissionModerateAll {
						c.Next()
						return
					}
				}
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "недостаточно прав для модерации"})
	}
}
