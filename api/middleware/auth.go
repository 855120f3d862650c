package middleware

import (
	"net/http"
	"strings"

	"chirp/services"

	"github.com/gin-gonic/gin"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

// RequireAuth - обязательная аутентификация для приватных процедур.
// Токен сессии резолвится у провайдера до запуска хендлера.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required: provide Authorization Bearer token"})
			c.Abort()
			return
		}

		if services.Identity == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Identity provider is not configured"})
			c.Abort()
			return
		}

		userID, err := services.Identity.VerifySession(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// OptionalAuth - опциональная аутентификация для публичных чтений:
// авторизованный просмотр добавляет в выдачу флаг liked_by_me
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token != "" && services.Identity != nil {
			if userID, err := services.Identity.VerifySession(c.Request.Context(), token); err == nil {
				c.Set("user_id", userID)
			}
		}
		c.Next()
	}
}
