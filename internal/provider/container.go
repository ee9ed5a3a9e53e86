package provider

import (
	"net/http"
	"time"

	"github.com/clickpulse/internal/cache"
	"github.com/clickpulse/internal/clientip"
	"github.com/clickpulse/internal/config"
	"github.com/clickpulse/internal/detect"
	"github.com/clickpulse/internal/geo"
	"github.com/clickpulse/internal/logger"
	"github.com/clickpulse/internal/models"
	"github.com/clickpulse/internal/queue"
	"github.com/clickpulse/internal/repository"
	"github.com/clickpulse/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const memorySweepInterval = time.Minute

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	QueueClient *queue.Client
	RedisClient *redis.Client
	Store       cache.Store

	// Infrastructure
	Forwarders  *clientip.Allowlist
	Classifier  *detect.Classifier
	GeoResolver *geo.Resolver

	// Repositories
	ClickRepo repository.ClickRepository

	// Services
	ViewGuard         *service.ViewGuard
	ClickService      *service.ClickService
	ClickStatsService *service.ClickStatsService

	memoryStore *cache.MemoryStore
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	return NewContainerWithDB(cfg, models.DB)
}

// NewContainerWithDB 使用指定数据库初始化容器
func NewContainerWithDB(cfg *config.Config, db *gorm.DB) *Container {
	c := &Container{Config: cfg, DB: db}

	// 1. 缓存与队列
	c.initStore()
	c.initQueue()

	// 2. 识别与解析组件
	c.initInfrastructure()

	// 3. Repositories
	c.ClickRepo = repository.NewClickRepository(db)

	// 4. Services
	c.initServices()

	return c
}

func (c *Container) initStore() {
	c.RedisClient = cache.NewRedisClient(&c.Config.Redis)
	if c.RedisClient != nil {
		c.Store = cache.NewRedisStore(c.RedisClient, c.Config.Redis.Prefix)
		return
	}
	c.memoryStore = cache.NewMemoryStore(memorySweepInterval)
	c.Store = c.memoryStore
}

func (c *Container) initQueue() {
	if !c.Config.Queue.Enabled {
		return
	}
	qc, err := queue.NewClient(&c.Config.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		return
	}
	c.QueueClient = qc
}

func (c *Container) initInfrastructure() {
	tracking := c.Config.Tracking
	forwarders, err := clientip.NewAllowlist(tracking.TrustedForwarders)
	if err != nil {
		logger.Warnw("provider_init_forwarders_failed", "error", err)
		forwarders, _ = clientip.NewAllowlist(nil)
	}
	c.Forwarders = forwarders

	detectCfg := c.Config.Detect
	c.Classifier = detect.New(c.Store, detect.Options{
		SuspicionThreshold:   detectCfg.SuspicionThreshold,
		MaxRequestsPerMinute: detectCfg.MaxRequestsPerMinute,
		IPCacheTTL:           detectCfg.IPCacheTTL(),
		ExtraSignatures:      detectCfg.ExtraBotSignatures,
		ExtraSpamDomains:     detectCfg.ExtraSpamDomains,
		ExtraBotIPPrefixes:   detectCfg.ExtraBotIPPrefixes,
		ExtraDatacenterCIDRs: detectCfg.ExtraDatacenterRanges,
	})

	geoCfg := c.Config.Geo
	if !geoCfg.Enabled {
		return
	}
	client := &http.Client{Timeout: geoCfg.Timeout()}
	c.GeoResolver = geo.NewResolver(c.Store, geo.NewProviders(geoCfg, client), geo.Options{
		Timeout:           geoCfg.Timeout(),
		MaxCallsPerMinute: geoCfg.MaxCallsPerMinute,
		CacheTTL:          geoCfg.CacheTTL(),
		FailureTTL:        geoCfg.FailureTTL(),
		ThrottleTTL:       geoCfg.ThrottleTTL(),
	})
}

func (c *Container) initServices() {
	tracking := c.Config.Tracking
	location := tracking.Location()

	c.ViewGuard = service.NewViewGuard(c.Store, tracking.DedupTTL(), tracking.CooldownTTL())

	var locator service.GeoLocator
	if c.GeoResolver != nil {
		locator = c.GeoResolver
	}
	var dispatcher service.CommitDispatcher
	if c.QueueClient != nil {
		dispatcher = c.QueueClient
	}
	c.ClickService = service.NewClickService(c.ClickRepo, c.Classifier, c.ViewGuard, locator, dispatcher, service.ClickServiceOptions{
		Location:             location,
		CommitMaxAttempts:    tracking.CommitMaxAttempts,
		MaxPostLanguageBytes: tracking.MaxPostLanguageBytes,
	})
	c.ClickStatsService = service.NewClickStatsService(c.ClickRepo, location)
}

// Close 释放容器持有的连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.Warnw("provider_close_redis_failed", "error", err)
		}
	}
	if c.memoryStore != nil {
		c.memoryStore.Close()
	}
}
