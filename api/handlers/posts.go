package handlers

import (
	"errors"
	"net/http"

	"chirp/api/middleware"
	"chirp/services"

	"github.com/gin-gonic/gin"
)

var postService = services.NewPostService()

// GetPost возвращает пост с автором и счетчиками
func GetPost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	post, err := postService.GetByID(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// ListPosts возвращает ленту постов верхнего уровня
func ListPosts(c *gin.Context) {
	posts, err := postService.GetAll(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get posts"})
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetReplies возвращает прямые ответы на пост
func GetReplies(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	replies, err := postService.GetReplies(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get replies"})
		return
	}
	c.JSON(http.StatusOK, replies)
}

// GetReplyCount возвращает число прямых ответов на пост
func GetReplyCount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	count, err := postService.GetReplyCount(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count replies"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post_id": id, "count": count})
}

// GetPostsByUser возвращает посты верхнего уровня одного автора
func GetPostsByUser(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	posts, err := postService.GetPostsByUser(c.Request.Context(), userID, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user posts"})
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetLikedPosts возвращает посты, лайкнутые пользователем
func GetLikedPosts(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	posts, err := postService.GetLikesByUser(c.Request.Context(), userID, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get liked posts"})
		return
	}
	c.JSON(http.StatusOK, posts)
}

// CreatePost создает новый пост или ответ
func CreatePost(c *gin.Context) {
	var req struct {
		Content    string `json:"content" binding:"required"`
		ReplyingTo int64  `json:"replying_to"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	userID := currentUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	post, err := postService.Create(c.Request.Context(), userID, req.Content, req.ReplyingTo)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	middleware.RecordPostCreated()
	c.JSON(http.StatusCreated, post)
}

// SetLiked приводит лайк поста к целевому состоянию из запроса
func SetLiked(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Liked *bool `json:"liked" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	userID := currentUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := likeService.SetLiked(c.Request.Context(), id, userID, *req.Liked); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update like"})
		return
	}

	if *req.Liked {
		middleware.RecordLike("applied")
	} else {
		middleware.RecordLike("removed")
	}
	c.JSON(http.StatusOK, gin.H{"post_id": id, "liked": *req.Liked})
}
