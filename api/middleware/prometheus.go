package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status", "service"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "service"},
	)

	postsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chirp_posts_created_total",
			Help: "Total number of posts created",
		},
	)

	likesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirp_likes_total",
			Help: "Total number of like mutations applied",
		},
		[]string{"action"},
	)

	rateLimitRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirp_ratelimit_rejections_total",
			Help: "Total number of mutations rejected by the rate limiter",
		},
		[]string{"family"},
	)

	webhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirp_webhook_events_total",
			Help: "Total number of identity webhook events processed",
		},
		[]string{"type", "status"},
	)
)

func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
			serviceName,
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			serviceName,
		).Observe(duration)
	}
}

func RecordPostCreated() {
	postsCreatedTotal.Inc()
}

func RecordLike(action string) {
	likesTotal.WithLabelValues(action).Inc()
}

func RecordRateLimited(family string) {
	rateLimitRejectionsTotal.WithLabelValues(family).Inc()
}

func RecordWebhookEvent(eventType string, status int) {
	webhookEventsTotal.WithLabelValues(eventType, strconv.Itoa(status)).Inc()
}
