package handlers

import (
	"errors"
	"net/http"

	"chirp/api/middleware"
	"chirp/services"

	"github.com/gin-gonic/gin"
)

type identityEvent struct {
	Object string                `json:"object"`
	Type   string                `json:"type"`
	Data   services.IdentityUser `json:"data"`
}

// IdentityWebhook принимает события провайдера аутентификации.
// Единственный путь записи мимо auth/rate-limit: его вызывает сам провайдер.
// Контракт статусов: 201 создан, 422 дубликат, 500 ошибка хранилища,
// 406 необрабатываемый тип события, 405 не-POST.
func IdentityWebhook(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		middleware.RecordWebhookEvent("invalid_method", http.StatusMethodNotAllowed)
		c.JSON(http.StatusMethodNotAllowed, gin.H{"message": "Method not allowed"})
		return
	}

	var event identityEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		middleware.RecordWebhookEvent("malformed", http.StatusBadRequest)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload"})
		return
	}

	if event.Type != "user.created" {
		middleware.RecordWebhookEvent(event.Type, http.StatusNotAcceptable)
		c.JSON(http.StatusNotAcceptable, gin.H{"message": "Method not implemented"})
		return
	}

	user, err := userService.CreateFromIdentityEvent(c.Request.Context(), event.Data)
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			middleware.RecordWebhookEvent(event.Type, http.StatusUnprocessableEntity)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "User already in db"})
			return
		}
		middleware.RecordWebhookEvent(event.Type, http.StatusInternalServerError)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Unknown error"})
		return
	}

	middleware.RecordWebhookEvent(event.Type, http.StatusCreated)
	c.JSON(http.StatusCreated, user)
}
