package handlers

import (
	"errors"
	"net/http"

	"chirp/services"

	"github.com/gin-gonic/gin"
)

var userService = services.NewUserService()

// GetProfile возвращает публичный профиль по имени пользователя
func GetProfile(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username"})
		return
	}

	user, err := userService.GetByUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, user)
}
