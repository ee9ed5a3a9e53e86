package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/clickpulse/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	Log             LogConfig             `mapstructure:"log"`
	Database        DatabaseConfig        `mapstructure:"database"`
	JWT             JWTConfig             `mapstructure:"jwt"`
	Redis           RedisConfig           `mapstructure:"redis"`
	Queue           QueueConfig           `mapstructure:"queue"`
	CORS            CORSConfig            `mapstructure:"cors"`
	Tracking        TrackingConfig        `mapstructure:"tracking"`
	Detect          DetectConfig          `mapstructure:"detect"`
	Geo             GeoConfig             `mapstructure:"geo"`
	IngestRateLimit IngestRateLimitConfig `mapstructure:"ingest_rate_limit"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite / postgres
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig 统计接口鉴权配置
type JWTConfig struct {
	SecretKey string `mapstructure:"secret"`
	Issuer    string `mapstructure:"issuer"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	MaxRetry    int            `mapstructure:"max_retry"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// TrackingConfig 访问记录配置
type TrackingConfig struct {
	Timezone             string   `mapstructure:"timezone"`
	DedupTTLSeconds      int      `mapstructure:"dedup_ttl_seconds"`
	CooldownTTLSeconds   int      `mapstructure:"cooldown_ttl_seconds"`
	CommitMaxAttempts    int      `mapstructure:"commit_max_attempts"`
	TrustedProxies       []string `mapstructure:"trusted_proxies"`
	TrustedForwarders    []string `mapstructure:"trusted_forwarders"` // 允许携带 client_ip 转发访问的调用方
	ProxyIPHeader        string   `mapstructure:"proxy_ip_header"`
	MaxPostLanguageBytes int      `mapstructure:"max_post_language_bytes"`
}

// DedupTTL 去重窗口
func (c TrackingConfig) DedupTTL() time.Duration {
	return secondsOr(c.DedupTTLSeconds, 30*time.Minute)
}

// CooldownTTL 冷却窗口
func (c TrackingConfig) CooldownTTL() time.Duration {
	return secondsOr(c.CooldownTTLSeconds, 5*time.Minute)
}

// Location 解析站点时区，无效时回退 UTC
func (c TrackingConfig) Location() *time.Location {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warnw("config_timezone_invalid", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}

// DetectConfig 机器人/可疑流量识别配置
type DetectConfig struct {
	SuspicionThreshold    int      `mapstructure:"suspicion_threshold"`
	MaxRequestsPerMinute  int      `mapstructure:"max_requests_per_minute"`
	IPCacheTTLSeconds     int      `mapstructure:"ip_cache_ttl_seconds"`
	ExtraBotSignatures    []string `mapstructure:"extra_bot_signatures"`
	ExtraSpamDomains      []string `mapstructure:"extra_spam_domains"`
	ExtraBotIPPrefixes    []string `mapstructure:"extra_bot_ip_prefixes"`
	ExtraDatacenterRanges []string `mapstructure:"extra_datacenter_ranges"`
}

// IPCacheTTL IP 判定缓存时长
func (c DetectConfig) IPCacheTTL() time.Duration {
	return secondsOr(c.IPCacheTTLSeconds, time.Hour)
}

// GeoConfig 地理位置解析配置
type GeoConfig struct {
	Enabled            bool                         `mapstructure:"enabled"`
	Providers          []string                     `mapstructure:"providers"`
	TimeoutSeconds     int                          `mapstructure:"timeout_seconds"`
	MaxCallsPerMinute  int                          `mapstructure:"max_calls_per_minute"`
	CacheTTLHours      int                          `mapstructure:"cache_ttl_hours"`
	FailureTTLSeconds  int                          `mapstructure:"failure_ttl_seconds"`
	ThrottleTTLSeconds int                          `mapstructure:"throttle_ttl_seconds"`
	Endpoints          map[string]GeoEndpointConfig `mapstructure:"endpoints"`
}

// GeoEndpointConfig 单个地理位置服务配置
type GeoEndpointConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
}

// Timeout 单个服务请求超时
func (c GeoConfig) Timeout() time.Duration {
	return secondsOr(c.TimeoutSeconds, 3*time.Second)
}

// CacheTTL 解析成功缓存时长
func (c GeoConfig) CacheTTL() time.Duration {
	if c.CacheTTLHours <= 0 {
		return 30 * 24 * time.Hour
	}
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// FailureTTL 全部失败时 unknown 的缓存时长
func (c GeoConfig) FailureTTL() time.Duration {
	return secondsOr(c.FailureTTLSeconds, time.Hour)
}

// ThrottleTTL 触发调用上限时 unknown 的缓存时长
func (c GeoConfig) ThrottleTTL() time.Duration {
	return secondsOr(c.ThrottleTTLSeconds, 5*time.Minute)
}

// IngestRateLimitConfig 采集接口限流配置
type IngestRateLimitConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	WindowSeconds int     `mapstructure:"window_seconds"`
	MaxRequests   int     `mapstructure:"max_requests"`
	LocalRate     float64 `mapstructure:"local_rate"`
	LocalBurst    int     `mapstructure:"local_burst"`
}

func secondsOr(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// DefaultTrustedProxies Cloudflare 公布的回源地址段
var DefaultTrustedProxies = []string{
	"173.245.48.0/20",
	"103.21.244.0/22",
	"103.22.200.0/22",
	"103.31.4.0/22",
	"141.101.64.0/18",
	"108.162.192.0/18",
	"190.93.240.0/20",
	"188.114.96.0/20",
	"197.234.240.0/22",
	"198.41.128.0/17",
	"162.158.0.0/15",
	"104.16.0.0/13",
	"104.24.0.0/14",
	"172.64.0.0/13",
	"131.0.72.0/22",
	"2400:cb00::/32",
	"2606:4700::/32",
	"2803:f800::/32",
	"2405:b500::/32",
	"2405:8100::/32",
	"2a06:98c0::/29",
	"2c0f:f248::/32",
}

// SetDefaults 写入全部默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/clickpulse.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "cp")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.max_retry", 5)
	v.SetDefault("queue.queues", map[string]int{
		"clicks":  10,
		"default": 1,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"X-Requested-With",
	})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("tracking.timezone", "UTC")
	v.SetDefault("tracking.dedup_ttl_seconds", 1800)
	v.SetDefault("tracking.cooldown_ttl_seconds", 300)
	v.SetDefault("tracking.commit_max_attempts", 3)
	v.SetDefault("tracking.trusted_proxies", DefaultTrustedProxies)
	v.SetDefault("tracking.proxy_ip_header", "CF-Connecting-IP")
	v.SetDefault("tracking.trusted_forwarders", []string{"127.0.0.1/32", "::1/128"})
	v.SetDefault("tracking.max_post_language_bytes", 16)
	v.SetDefault("detect.suspicion_threshold", 3)
	v.SetDefault("detect.max_requests_per_minute", 10)
	v.SetDefault("detect.ip_cache_ttl_seconds", 3600)
	v.SetDefault("detect.extra_bot_signatures", []string{})
	v.SetDefault("detect.extra_spam_domains", []string{})
	v.SetDefault("detect.extra_bot_ip_prefixes", []string{})
	v.SetDefault("detect.extra_datacenter_ranges", []string{})
	v.SetDefault("geo.enabled", true)
	v.SetDefault("geo.providers", []string{"ipapi", "ip-api", "ipwhois"})
	v.SetDefault("geo.timeout_seconds", 3)
	v.SetDefault("geo.max_calls_per_minute", 40)
	v.SetDefault("geo.cache_ttl_hours", 720)
	v.SetDefault("geo.failure_ttl_seconds", 3600)
	v.SetDefault("geo.throttle_ttl_seconds", 300)
	v.SetDefault("ingest_rate_limit.enabled", true)
	v.SetDefault("ingest_rate_limit.window_seconds", 60)
	v.SetDefault("ingest_rate_limit.max_requests", 120)
	v.SetDefault("ingest_rate_limit.local_rate", 2)
	v.SetDefault("ingest_rate_limit.local_burst", 20)
}

// Load 从 .env 与 config.yml 加载配置
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		logger.Infow("config_dotenv_loaded")
	}

	v := viper.GetViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("../")
	v.AddConfigPath("./etc")

	cfg, err := LoadFrom(v)
	if err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return cfg
}

// LoadFrom 基于指定 viper 实例读取配置
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	// server.port -> SERVER_PORT
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
