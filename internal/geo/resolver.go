package geo

import (
	"context"
	"strconv"
	"time"

	"github.com/clickpulse/internal/cache"
	"github.com/clickpulse/internal/clientip"
	"github.com/clickpulse/internal/constants"
	"github.com/clickpulse/internal/logger"

	"golang.org/x/sync/singleflight"
)

// Options 解析器参数
type Options struct {
	Timeout           time.Duration
	MaxCallsPerMinute int
	CacheTTL          time.Duration
	FailureTTL        time.Duration
	ThrottleTTL       time.Duration
}

// Resolver 按优先级依次尝试服务商，带缓存与全局调用限额
type Resolver struct {
	store     cache.Store
	providers []Provider
	opts      Options
	group     singleflight.Group
	now       func() time.Time
}

// NewResolver 创建解析器
func NewResolver(store cache.Store, providers []Provider, opts Options) *Resolver {
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	if opts.MaxCallsPerMinute <= 0 {
		opts.MaxCallsPerMinute = 40
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * 24 * time.Hour
	}
	if opts.FailureTTL <= 0 {
		opts.FailureTTL = time.Hour
	}
	if opts.ThrottleTTL <= 0 {
		opts.ThrottleTTL = 5 * time.Minute
	}
	return &Resolver{
		store:     store,
		providers: providers,
		opts:      opts,
		now:       time.Now,
	}
}

// Resolve 解析 IP 位置，失败不会返回错误而是 Unknown
func (r *Resolver) Resolve(ctx context.Context, ip string) Location {
	normalized := clientip.Normalize(ip)
	if normalized == "" || !clientip.IsPublic(normalized) {
		return Local
	}
	if loc, ok := r.cached(ctx, normalized); ok {
		return loc
	}

	// 同一 IP 的并发查询只走一轮服务商
	value, _, _ := r.group.Do(normalized, func() (interface{}, error) {
		if loc, ok := r.cached(ctx, normalized); ok {
			return loc, nil
		}
		return r.lookup(context.WithoutCancel(ctx), normalized), nil
	})
	return value.(Location)
}

// lookup 每次外呼服务商都占用一次分钟额度
func (r *Resolver) lookup(ctx context.Context, ip string) Location {
	for _, provider := range r.providers {
		if r.throttled(ctx) {
			logger.Warnw("geo_lookup_throttled", "ip", ip, "provider", provider.Name(), "limit_per_minute", r.opts.MaxCallsPerMinute)
			r.remember(ctx, ip, Unknown, r.opts.ThrottleTTL)
			return Unknown
		}
		callCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
		raw, err := provider.Lookup(callCtx, ip)
		cancel()
		if err != nil {
			logger.Warnw("geo_provider_failed", "provider", provider.Name(), "ip", ip, "error", err)
			continue
		}
		loc, ok := Validate(raw)
		if !ok {
			logger.Warnw("geo_provider_invalid_answer", "provider", provider.Name(), "ip", ip, "country_code", raw.CountryCode)
			continue
		}
		r.remember(ctx, ip, loc, r.opts.CacheTTL)
		return loc
	}

	r.remember(ctx, ip, Unknown, r.opts.FailureTTL)
	return Unknown
}

// throttled 全局每分钟外呼计数，超过上限返回 true
func (r *Resolver) throttled(ctx context.Context) bool {
	if r.store == nil {
		return false
	}
	minute := r.now().Unix() / 60
	count, err := r.store.Incr(ctx, constants.CacheKeyGeoCalls+strconv.FormatInt(minute, 10), 2*time.Minute)
	if err != nil {
		logger.Warnw("geo_call_counter_failed", "error", err)
		return false
	}
	return count > int64(r.opts.MaxCallsPerMinute)
}

func (r *Resolver) cached(ctx context.Context, ip string) (Location, bool) {
	var loc Location
	found, err := cache.GetJSON(ctx, r.store, constants.CacheKeyGeoIP+ip, &loc)
	if err != nil {
		logger.Debugw("geo_cache_get_failed", "ip", ip, "error", err)
		return Location{}, false
	}
	return loc, found
}

func (r *Resolver) remember(ctx context.Context, ip string, loc Location, ttl time.Duration) {
	if err := cache.SetJSON(ctx, r.store, constants.CacheKeyGeoIP+ip, loc, ttl); err != nil {
		logger.Warnw("geo_cache_set_failed", "ip", ip, "error", err)
	}
}
