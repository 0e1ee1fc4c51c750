package http

import (
	"github.com/gin-gonic/gin"

	"giftvideo-service/ddd/application/app"
	"giftvideo-service/pkg/middleware"
)

// Router 路由配置
type Router struct {
	giftVideoApp app.GiftVideoApp
	deliveryApp  app.DeliveryApp
	sweepApp     app.SweepApp
}

// NewRouter 创建路由配置
func NewRouter(giftVideoApp app.GiftVideoApp, deliveryApp app.DeliveryApp, sweepApp app.SweepApp) *Router {
	return &Router{
		giftVideoApp: giftVideoApp,
		deliveryApp:  deliveryApp,
		sweepApp:     sweepApp,
	}
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes(engine *gin.Engine) {
	giftVideoController := NewGiftVideoController(r.giftVideoApp)
	viewController := NewViewController(r.giftVideoApp)
	deliveryController := NewDeliveryController(r.deliveryApp)
	sweepController := NewSweepController(r.sweepApp)

	// 观看追踪链接：对外公开，token是唯一的准入凭证
	engine.GET("/track-video-view/:token", viewController.TrackVideoView)

	// API v1 路由组
	v1 := engine.Group("/api/v1")
	{
		videos := v1.Group("/gift-videos")
		{
			videos.POST("", giftVideoController.SubmitJob)              // 提交合成任务
			videos.GET("/:job_uuid", giftVideoController.GetJob)        // 获取任务详情
			videos.POST("/:job_uuid/notify", deliveryController.Notify) // 投递观看通知
		}
	}

	// 内部运维路由组：审核、重触发、清理
	internal := engine.Group("/internal/v1")
	internal.Use(middleware.OperatorAuthMiddleware())
	{
		internal.GET("/gift-videos", giftVideoController.ListJobs)                          // 按状态查询任务
		internal.POST("/gift-videos/:job_uuid/retrigger", giftVideoController.RetriggerJob) // 重新触发派发
		internal.POST("/gift-videos/:job_uuid/resubmit", giftVideoController.ResubmitJob)   // 失败任务重新提交
		internal.POST("/sweep", sweepController.RunSweep)                                   // 手动触发清理
	}

	// 健康检查路由
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "giftvideo-service",
			"version": "1.0.0",
		})
	})
}

// SetupMiddleware 设置中间件
func (r *Router) SetupMiddleware(engine *gin.Engine) {
	// CORS中间件
	engine.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// 请求上下文中间件
	engine.Use(middleware.RequestContextMiddleware())

	// 请求日志中间件
	engine.Use(gin.Logger())

	// 恢复中间件
	engine.Use(gin.Recovery())
}
