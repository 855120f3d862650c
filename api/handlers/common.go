package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// currentUserID возвращает ID пользователя, установленный middleware,
// или пустую строку для анонимного запроса
func currentUserID(c *gin.Context) string {
	v, exists := c.Get("user_id")
	if !exists {
		return ""
	}
	userID, _ := v.(string)
	return userID
}

// parseIDParam читает числовой ID из параметра пути; при ошибке отвечает 400
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}
