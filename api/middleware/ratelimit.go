package middleware

import (
	"log"
	"net/http"

	"chirp/services"

	"github.com/gin-gonic/gin"
)

func limiterForFamily(family string) services.Limiter {
	switch family {
	case "posts":
		return services.PostLimiter
	case "likes":
		return services.LikeLimiter
	}
	return nil
}

// RateLimit проверяет скользящее окно для семейства мутаций.
// Ставится после RequireAuth: ключ окна - идентификатор пользователя.
func RateLimit(family string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		limiter := limiterForFamily(family)
		if limiter == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limiter is not configured"})
			c.Abort()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), userID.(string))
		if err != nil {
			// Лимитер недоступен - мутации не пропускаем
			log.Printf("ERROR: rate limiter failure for %s: %v", family, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limiter unavailable"})
			c.Abort()
			return
		}
		if !allowed {
			RecordRateLimited(family)
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}

		c.Next()
	}
}
