package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ed-robles/shop-template/internal/pkg/config"
	"github.com/ed-robles/shop-template/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserIDKey    = "user_id"
	ctxUserEmailKey = "user_email"
)

type AuthMiddleware struct {
	jwtService *jwt.Service
	admin      config.AdminConfig
}

func NewAuthMiddleware(jwtService *jwt.Service, admin config.AdminConfig) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		admin:      admin,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(authHeader[len("Bearer "):])
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Access token required",
			})
			c.Abort()
			return
		}

		claims, err := m.jwtService.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxUserEmailKey, claims.Email)
		c.Set("jwt_claims", map[string]any{
			"user_id": claims.UserID.String(),
			"email":   claims.Email,
		})
		c.Next()
	}
}

// RequireAdmin gates the back-office routes on the configured email
// allowlist. Must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := GetUserEmail(c)
		if !ok {
			// Unexpected error: should be used after RequireAuth()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			c.Abort()
			return
		}

		if !m.admin.IsAdminEmail(email) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := userID.(uuid.UUID)
	return id, ok
}

func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(ctxUserEmailKey)
	if !exists {
		return "", false
	}

	value, ok := email.(string)
	return value, ok
}
