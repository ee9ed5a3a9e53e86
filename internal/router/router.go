package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/clickpulse/internal/cache"
	"github.com/clickpulse/internal/clientip"
	"github.com/clickpulse/internal/config"
	"github.com/clickpulse/internal/constants"
	adminhandlers "github.com/clickpulse/internal/http/handlers/admin"
	publichandlers "github.com/clickpulse/internal/http/handlers/public"
	"github.com/clickpulse/internal/logger"
	"github.com/clickpulse/internal/provider"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const healthPingTimeout = 2 * time.Second

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()
	ConfigureClientIP(r, cfg.Tracking)

	// 初始化 Handler（按采集/统计分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(ClientIPMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 访问上报（公开）
		track := apiV1.Group("/track")
		track.Use(ingestRateLimiters(cfg, c)...)
		{
			track.POST("", publicHandler.TrackView)
			track.GET("/pixel.gif", publicHandler.TrackPixel)
		}

		// 统计查询（需鉴权）
		stats := apiV1.Group("/stats")
		stats.Use(StatsAuthMiddleware(cfg.JWT.SecretKey, cfg.JWT.Issuer))
		{
			stats.GET("/posts/:id/total", adminHandler.GetPostTotal)
			stats.GET("/posts/:id/buckets", adminHandler.GetPostBuckets)
			stats.GET("/posts/:id/classification", adminHandler.GetPostClassification)
			stats.GET("/posts/:id/trend", adminHandler.GetPostTrend)
			stats.GET("/posts/:id/daily", adminHandler.GetPostDaily)
			stats.GET("/top", adminHandler.GetTopPosts)
		}
	}

	// 健康检查
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/healthz", healthzHandler(c.DB))

	return r
}

// ConfigureClientIP 只读取配置的单个代理头，且仅当连接来自可信代理网段时采用
func ConfigureClientIP(r *gin.Engine, cfg config.TrackingConfig) {
	header := strings.TrimSpace(cfg.ProxyIPHeader)
	if header == "" {
		header = clientip.DefaultHeader
	}
	r.TrustedPlatform = ""
	r.ForwardedByClientIP = true
	r.RemoteIPHeaders = []string{header}
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Warnw("router_trusted_proxies_invalid", "error", err)
		// 解析失败时 gin 保留默认的全部信任，显式清空
		_ = r.SetTrustedProxies(nil)
	}
}

func ingestRateLimiters(cfg *config.Config, c *provider.Container) []gin.HandlerFunc {
	limitCfg := cfg.IngestRateLimit
	if !limitCfg.Enabled {
		return nil
	}
	handlers := []gin.HandlerFunc{
		LocalRateLimitMiddleware(NewLocalRateLimiter(limitCfg.LocalRate, limitCfg.LocalBurst), KeyByIP),
	}
	// 多实例部署时由 Redis 共享窗口计数
	if store, ok := c.Store.(*cache.RedisStore); ok && store != nil {
		handlers = append(handlers, RateLimitMiddleware(store, RateLimitRule{
			Prefix:        strings.TrimSuffix(constants.CacheKeyIngestLimiter, ":"),
			WindowSeconds: limitCfg.WindowSeconds,
			MaxRequests:   limitCfg.MaxRequests,
		}, KeyByIP))
	}
	return handlers
}

func healthzHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "not configured"})
			return
		}
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			logger.Warnw("healthz_db_ping_failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	}
}
