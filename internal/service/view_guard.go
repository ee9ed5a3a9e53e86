package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/clickpulse/internal/cache"
	"github.com/clickpulse/internal/constants"
	"github.com/clickpulse/internal/logger"
)

// ViewGuard 访问去重与冷却
type ViewGuard struct {
	store       cache.Store
	dedupTTL    time.Duration
	cooldownTTL time.Duration
	now         func() time.Time
}

// NewViewGuard 创建访问守卫
func NewViewGuard(store cache.Store, dedupTTL, cooldownTTL time.Duration) *ViewGuard {
	if dedupTTL <= 0 {
		dedupTTL = 30 * time.Minute
	}
	if cooldownTTL <= 0 {
		cooldownTTL = 5 * time.Minute
	}
	return &ViewGuard{store: store, dedupTTL: dedupTTL, cooldownTTL: cooldownTTL, now: time.Now}
}

// Admit 依次通过去重与冷却检查时返回 true；缓存异常时放行
func (g *ViewGuard) Admit(ctx context.Context, ip, userAgent string, postID uint) bool {
	if g == nil || g.store == nil {
		return true
	}
	post := strconv.FormatUint(uint64(postID), 10)
	seen := strconv.FormatInt(g.now().Unix(), 10)

	ok, err := g.store.SetNX(ctx, constants.CacheKeyViewDedup+digest(ip, userAgent, post), seen, g.dedupTTL)
	if err != nil {
		logger.Warnw("view_guard_dedup_failed", "post_id", postID, "error", err)
		return true
	}
	if !ok {
		return false
	}

	ok, err = g.store.SetNX(ctx, constants.CacheKeyViewCooldown+digest(ip, post), seen, g.cooldownTTL)
	if err != nil {
		logger.Warnw("view_guard_cooldown_failed", "post_id", postID, "error", err)
		return true
	}
	return ok
}

func digest(parts ...string) string {
	h := sha256.New()
	for i, part := range parts {
		if i > 0 {
			h.Write([]byte{'|'})
		}
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}
