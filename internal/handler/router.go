package handler

import (
	"gigbook/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// SetupRouter 注册路由
func SetupRouter(h *Handler, cfg *config.Config, rdb *redis.Client) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()

	r.Use(LoggerMiddleware())
	r.Use(RecoveryMiddleware())
	r.Use(CORSMiddleware())
	if rdb != nil && cfg.RateLimit.Enabled {
		r.Use(RateLimitMiddleware(rdb, cfg.RateLimit.PerMinute))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		// 开放接口
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		// 需要认证
		authed := api.Group("")
		authed.Use(AuthMiddleware(&cfg.JWT))
		{
			authed.POST("/bookings", h.CreateBooking)
			authed.GET("/bookings", h.ListBookings)
			authed.GET("/bookings/code/:ref", h.GetBooking)
			authed.POST("/bookings/:id/deposit", h.UploadDeposit)
			authed.POST("/bookings/:id/decide", h.AdminDecide)
			authed.POST("/bookings/:id/respond", h.PerformerRespond)
			authed.POST("/bookings/:id/complete", h.CompleteBooking)
			authed.POST("/payments/:id/verify", h.VerifyPayment)

			authed.GET("/notifications", h.ListNotifications)
			authed.POST("/notifications/:id/read", h.MarkNotificationRead)
		}
	}

	return r
}
