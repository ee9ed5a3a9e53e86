package cache

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const defaultSweepInterval = time.Minute

// MemoryStore 进程内缓存，未启用 Redis 时使用
type MemoryStore struct {
	items *gocache.Cache
}

// NewMemoryStore 创建进程内缓存，过期条目由 go-cache 的 janitor 定期清理
func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}
	return &MemoryStore{items: gocache.New(gocache.NoExpiration, sweepInterval)}
}

// Get 读取值，计数键以十进制字符串返回
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	raw, ok := s.items.Get(key)
	if !ok {
		return "", false, nil
	}
	switch v := raw.(type) {
	case string:
		return v, true, nil
	case int64:
		return strconv.FormatInt(v, 10), true, nil
	default:
		return "", false, nil
	}
}

// Set 写入值
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.items.Set(key, value, expiration(ttl))
	return nil
}

// SetNX 原子地在键不存在时写入
func (s *MemoryStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	if err := s.items.Add(key, value, expiration(ttl)); err != nil {
		return false, nil
	}
	return true, nil
}

// Incr 自增计数，窗口在首次创建时确定
func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	for {
		if err := s.items.Add(key, int64(1), expiration(ttl)); err == nil {
			return 1, nil
		}
		raw, ok := s.items.Get(key)
		if !ok {
			// 在 Add 与 Get 之间过期，重新创建窗口
			continue
		}
		if _, isInt := raw.(int64); !isInt {
			return 0, ErrNotInteger
		}
		if n, err := s.items.IncrementInt64(key, 1); err == nil {
			return n, nil
		}
	}
}

// Del 删除键
func (s *MemoryStore) Del(_ context.Context, key string) error {
	s.items.Delete(key)
	return nil
}

// Len 当前条目数，包含尚未被清理的过期条目
func (s *MemoryStore) Len() int {
	return s.items.ItemCount()
}

// Close 清空缓存
func (s *MemoryStore) Close() {
	s.items.Flush()
}

func (s *MemoryStore) sweep() {
	s.items.DeleteExpired()
}

func expiration(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.NoExpiration
	}
	return ttl
}
