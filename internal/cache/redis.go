package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clickpulse/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "cp"

// incrScript 首次自增时设置过期，返回 {count, ttl}
var incrScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 and tonumber(ARGV[1]) > 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// NewRedisClient 按配置创建 Redis 客户端，未启用时返回 nil
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisStore 基于 Redis 的共享缓存，多实例部署时使用
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore 创建 Redis 缓存
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Client 获取底层客户端
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Get 读取值
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set 写入值
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(key), value, positiveTTL(ttl)).Err()
}

// SetNX 原子写入
func (s *RedisStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.key(key), value, positiveTTL(ttl)).Result()
}

// Incr 自增计数
func (s *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, _, err := s.IncrWithTTL(ctx, key, ttl)
	return count, err
}

// IncrWithTTL 自增计数并返回剩余过期时间
func (s *RedisStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, time.Duration, error) {
	result, err := incrScript.Run(ctx, s.client, []string{s.key(key)}, positiveTTL(ttl).Milliseconds()).Result()
	if err != nil {
		return 0, 0, err
	}
	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return 0, 0, fmt.Errorf("unexpected incr script result: %v", result)
	}
	count, ok := values[0].(int64)
	if !ok {
		return 0, 0, ErrNotInteger
	}
	remaining, _ := values[1].(int64)
	if remaining < 0 {
		remaining = 0
	}
	return count, time.Duration(remaining) * time.Millisecond, nil
}

// Del 删除键
func (s *RedisStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *RedisStore) key(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return s.prefix
	}
	return s.prefix + ":" + trimmed
}

func positiveTTL(ttl time.Duration) time.Duration {
	if ttl < 0 {
		return 0
	}
	return ttl
}
