package handlers

import (
	"errors"
	"net/http"

	"chirp/api/middleware"
	"chirp/services"

	"github.com/gin-gonic/gin"
)

var likeService = services.NewLikeService()

// GetLikeCount возвращает число лайков поста
func GetLikeCount(c *gin.Context) {
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		return
	}

	count, err := likeService.CountByPost(c.Request.Context(), postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count likes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post_id": postID, "count": count})
}

type likeRequest struct {
	PostID int64 `json:"post_id" binding:"required"`
}

// CreateLike ставит лайк; повторный лайк - конфликт
func CreateLike(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID := currentUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	like, err := likeService.Create(c.Request.Context(), req.PostID, userID)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyLiked) {
			c.JSON(http.StatusConflict, gin.H{"error": "Post already liked"})
			return
		}
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create like"})
		return
	}

	middleware.RecordLike("applied")
	c.JSON(http.StatusCreated, like)
}

// DeleteLike снимает лайк; отсутствующий лайк - 404
func DeleteLike(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID := currentUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := likeService.Delete(c.Request.Context(), req.PostID, userID); err != nil {
		if errors.Is(err, services.ErrNotLiked) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Like not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete like"})
		return
	}

	middleware.RecordLike("removed")
	c.JSON(http.StatusOK, gin.H{"message": "Like removed successfully"})
}
