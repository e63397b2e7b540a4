package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/glowfit-dev/glowfit/internal/auth"
	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/glowfit-dev/glowfit/internal/types"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type AuthenticatedUser struct {
	ID    uint            `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

// AuthMiddleware resolves the session token (cookie first, then bearer
// header) to the owning user and rejects disabled accounts.
func AuthMiddleware(database *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := extractToken(ctx)

		if tokenString == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.Response{Success: false, Error: "未登录或登录已过期"})
			return
		}

		token, err := auth.VerifyJWT(tokenString)

		if err != nil || !token.Valid {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.Response{Success: false, Error: "未登录或登录已过期"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.Response{Success: false, Error: "未登录或登录已过期"})
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.Response{Success: false, Error: "未登录或登录已过期"})
			return
		}

		var user models.User

		if err := database.Where("id = ?", uint(userIDFloat)).First(&user).Error; err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.Response{Success: false, Error: "未登录或登录已过期"})
			return
		}

		if user.Status != models.UserStatusActive {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.Response{Success: false, Error: "账号已被禁用"})
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		})
		ctx.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		value, exists := ctx.Get(types.ContextUserKey)

		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.Response{Success: false, Error: "未登录或登录已过期"})
			return
		}

		user, ok := value.(AuthenticatedUser)

		if !ok || user.Role != models.RoleAdmin {
			ctx.AbortWithStatusJSON(http.StatusForbidden, types.Response{Success: false, Error: "无管理员权限"})
			return
		}

		ctx.Next()
	}
}

func extractToken(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie("token"); err == nil && cookie != "" {
		return cookie
	}

	authHeader := ctx.GetHeader("Authorization")

	if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return ""
}
