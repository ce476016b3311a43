package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jengzang/retention-backend-go/internal/config"
	"github.com/jengzang/retention-backend-go/internal/handler"
	"github.com/jengzang/retention-backend-go/internal/middleware"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Health    *handler.HealthHandler
	Retention *handler.RetentionHandler
	Marketing *handler.MarketingHandler
	Admin     *handler.AdminHandler
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, logger *slog.Logger, limiter *middleware.RateLimiter, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", h.Health.GetHealth)

	// 监控指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(limiter))
	{
		// 复购留存接口
		retention := api.Group("/retention")
		{
			retention.GET("/months", h.Retention.GetMonths)
			retention.GET("/monthly", h.Retention.GetMonthlySummary)
			retention.GET("/overall", h.Retention.GetOverallSummary)
			retention.GET("/delay-histogram", h.Retention.GetDelayHistogram)
			retention.GET("/purchase-sequence", h.Retention.GetPurchaseSequence)
		}

		// 电视广告节目评分接口
		marketing := api.Group("/marketing")
		{
			marketing.GET("/timezones", h.Marketing.GetTimezones)
			marketing.GET("/user-stats", h.Marketing.GetUserStats)
			marketing.GET("/user-histogram", h.Marketing.GetUserHistogram)
			marketing.GET("/programs", h.Marketing.GetPrograms)
			marketing.GET("/ranking", h.Marketing.GetRanking)
		}

		// 管理接口（需要 JWT）
		admin := api.Group("/admin")
		admin.Use(middleware.JWTAuth([]byte(cfg.JWTSecret)))
		{
			admin.POST("/datasets/refresh", h.Admin.RefreshDatasets)
		}
	}

	return r
}
