package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"paylink-core/internal/handler"
	"paylink-core/internal/handler/response"
	"paylink-core/pkg/monitor"
)

// NewHTTPRouter 初始化并返回一个 Gin Engine
func NewHTTPRouter(linkHandler *handler.LinkHandler) *gin.Engine {
	// 0. 初始化监控指标
	monitor.Init()

	// 1. 创建 Engine (使用默认中间件: Logger, Recovery)
	r := gin.Default()

	// 2. 注册通用中间件
	r.Use(monitor.PrometheusMiddleware())

	// 3. 注册基础路由
	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 4. 注册 API 路由组
	api := r.Group("/api/v1")
	{
		api.GET("/ping", func(c *gin.Context) {
			response.Success(c, gin.H{"pong": true})
		})

		links := api.Group("/links")
		{
			links.POST("", linkHandler.CreateLink)
			links.GET("", linkHandler.ListLinks)
			links.GET("/:id", linkHandler.GetLink)
			links.GET("/:id/ledger", linkHandler.ListLedger)
			links.POST("/:id/deposit", linkHandler.RecordDeposit)
			links.POST("/:id/claim", linkHandler.ClaimLink)
		}

		admin := api.Group("/admin")
		{
			admin.GET("/reconciliation", linkHandler.ListReconciliation)
		}
	}

	return r
}
