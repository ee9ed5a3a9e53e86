package router

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	handlershared "github.com/clickpulse/internal/http/handlers/shared"
	"github.com/clickpulse/internal/http/response"
	"github.com/clickpulse/internal/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const localLimiterIdleTTL = 10 * time.Minute

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// WindowCounter 固定窗口计数器，Redis 缓存实现了该接口
type WindowCounter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, time.Duration, error)
}

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
}

// RateLimitMiddleware 共享计数器频率限制中间件，计数器异常时放行
func RateLimitMiddleware(counter WindowCounter, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if counter == nil || rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		key := resolveRateLimitKey(c, keyFunc)
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		window := time.Duration(rule.WindowSeconds) * time.Second
		count, ttl, err := counter.IncrWithTTL(c.Request.Context(), key, window)
		if err != nil {
			logger.Warnw("rate_limit_counter_failed", "key", key, "error", err)
			c.Next()
			return
		}
		if count > int64(rule.MaxRequests) {
			waitSeconds := int(ttl.Round(time.Second) / time.Second)
			if waitSeconds < 1 {
				waitSeconds = rule.WindowSeconds
			}
			respondRateLimited(c, waitSeconds)
			return
		}

		c.Next()
	}
}

// LocalRateLimiter 进程内按 key 的令牌桶限流
type LocalRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*localVisitor
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	swept    time.Time
	now      func() time.Time
}

type localVisitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalRateLimiter 创建进程内限流器，perSecond<=0 时不限流
func NewLocalRateLimiter(perSecond float64, burst int) *LocalRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &LocalRateLimiter{
		visitors: make(map[string]*localVisitor),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idleTTL:  localLimiterIdleTTL,
		now:      time.Now,
	}
}

// Allow 判断 key 当前是否还有令牌
func (l *LocalRateLimiter) Allow(key string) bool {
	if l == nil || l.limit <= 0 {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweepLocked(now)
	visitor, ok := l.visitors[key]
	if !ok {
		visitor = &localVisitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = visitor
	}
	visitor.lastSeen = now
	return visitor.limiter.AllowN(now, 1)
}

// Len 当前跟踪的 key 数量
func (l *LocalRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

func (l *LocalRateLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.swept) < l.idleTTL {
		return
	}
	l.swept = now
	for key, visitor := range l.visitors {
		if now.Sub(visitor.lastSeen) > l.idleTTL {
			delete(l.visitors, key)
		}
	}
}

// LocalRateLimitMiddleware 进程内限流中间件
func LocalRateLimitMiddleware(limiter *LocalRateLimiter, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		if !limiter.Allow(resolveRateLimitKey(c, keyFunc)) {
			respondRateLimited(c, 1)
			return
		}
		c.Next()
	}
}

// KeyByIP 使用访客 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return handlershared.ClientResolution(c).IP
}

func resolveRateLimitKey(c *gin.Context, keyFunc RateLimitKeyFunc) string {
	key := ""
	if keyFunc != nil {
		key = strings.TrimSpace(keyFunc(c))
	}
	if key == "" {
		key = KeyByIP(c)
	}
	return key
}

func respondRateLimited(c *gin.Context, waitSeconds int) {
	response.TooManyRequests(c, waitSeconds)
	c.Abort()
}
