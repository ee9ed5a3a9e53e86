package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotInteger 计数键中存放的不是整数
var ErrNotInteger = errors.New("cache value is not an integer")

// Store 访问链路使用的键值缓存，所有实现必须并发安全
type Store interface {
	// Get 读取字符串值，不存在或已过期时 found 为 false
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set 写入字符串值，ttl<=0 表示不过期
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX 仅在键不存在时写入，检查与写入是原子的
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Incr 自增计数，首次创建时设置 ttl，窗口内不续期
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Del 删除键
	Del(ctx context.Context, key string) error
}

// GetJSON 读取 JSON 缓存
func GetJSON(ctx context.Context, store Store, key string, dest interface{}) (bool, error) {
	if store == nil {
		return false, nil
	}
	raw, found, err := store.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, store Store, key string, value interface{}, ttl time.Duration) error {
	if store == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, string(payload), ttl)
}
