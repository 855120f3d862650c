package routes

import (
	"chirp/api/handlers"
	"chirp/api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func PublicApi(router *gin.Engine) *gin.RouterGroup {
	// Публичные чтения: аутентификация опциональна и влияет только на liked_by_me
	publicEndpoints := router.Group("/api/v1/", middleware.OptionalAuth())
	{
		publicEndpoints.GET("posts/get/:id", handlers.GetPost)
		publicEndpoints.GET("posts/list", handlers.ListPosts)
		publicEndpoints.GET("posts/replies/:id", handlers.GetReplies)
		publicEndpoints.GET("posts/reply-count/:id", handlers.GetReplyCount)
		publicEndpoints.GET("posts/by-user/:user_id", handlers.GetPostsByUser)
		publicEndpoints.GET("posts/liked-by/:user_id", handlers.GetLikedPosts)
		publicEndpoints.GET("likes/count/:post_id", handlers.GetLikeCount)
		publicEndpoints.GET("profile/get/:username", handlers.GetProfile)
	}

	// Приватные мутации: обязательная аутентификация + лимит на семейство
	privateEndpoints := router.Group("/api/v1/", middleware.RequireAuth())
	{
		privateEndpoints.POST("posts/create", middleware.RateLimit("posts"), handlers.CreatePost)
		privateEndpoints.POST("posts/like/:id", middleware.RateLimit("likes"), handlers.SetLiked)
		privateEndpoints.POST("likes/create", middleware.RateLimit("likes"), handlers.CreateLike)
		privateEndpoints.POST("likes/delete", middleware.RateLimit("likes"), handlers.DeleteLike)
		privateEndpoints.GET("ws", handlers.WSFeedHandler)
	}

	// Webhook провайдера: метод проверяется внутри хендлера, чтобы отдавать 405
	router.Any("/api/webhooks/identity", handlers.IdentityWebhook)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return publicEndpoints
}
