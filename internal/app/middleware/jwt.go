package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/response"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/config"
)

const currentUserKey = "currentUser"

var (
	jwtService services.InterfaceJWTService
	authDB     *gorm.DB
)

// InitAuthMiddleware wires the authentication middleware
func InitAuthMiddleware(cfg *config.Config, db *gorm.DB) {
	jwtService = services.NewJWTService(cfg)
	authDB = db
}

// extractToken strips the "Bearer " prefix from an Authorization header
func extractToken(authHeader string) string {
	if len(authHeader) > 7 && strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return authHeader
}

// Authenticate validates the bearer token and loads the account behind it.
// Authorization runs against the database row, not the token claims, so a
// role change or deactivation takes effect before the token expires.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtService == nil || authDB == nil {
			response.AbortFail(c, code.New(code.ConfigError))
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AbortFail(c, code.NewWithMessage(code.Unauthorized, "Thiếu Authorization header"))
			return
		}

		claims, err := jwtService.ExtractClaims(extractToken(authHeader))
		if err != nil {
			response.AbortFail(c, code.New(code.Unauthorized))
			return
		}

		var user models.User
		if err := authDB.First(&user, claims.UserID).Error; err != nil {
			response.AbortFail(c, code.New(code.Unauthorized))
			return
		}
		if !user.Active {
			response.AbortFail(c, code.NewWithMessage(code.Unauthorized, "Tài khoản đã bị vô hiệu hóa"))
			return
		}

		c.Set(currentUserKey, &user)
		c.Set("userID", user.ID)
		c.Set("role", user.Role)
		c.Next()
	}
}

// CurrentUser returns the authenticated account, or nil outside the
// Authenticate chain.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
