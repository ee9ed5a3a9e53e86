package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clickpulse/internal/config"
	"github.com/clickpulse/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// ClicksQueue 点击写入队列名称
	ClicksQueue = constants.QueueClicks
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault

	defaultMaxRetry    = 5
	clickCommitTimeout = 30 * time.Second
)

// Client 队列客户端封装
type Client struct {
	client   *asynq.Client
	enabled  bool
	queue    string
	maxRetry int
}

// NewClient 创建队列客户端，未启用时所有推送都是空操作
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, queue: ClicksQueue}, nil
	}
	maxRetry := cfg.MaxRetry
	if maxRetry <= 0 {
		maxRetry = defaultMaxRetry
	}
	return &Client{
		client:   asynq.NewClient(buildRedisOpt(cfg)),
		enabled:  true,
		queue:    ClicksQueue,
		maxRetry: maxRetry,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueClickCommit 推送点击聚合任务
func (c *Client) EnqueueClickCommit(ctx context.Context, payload ClickCommitPayload) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewClickCommitTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(c.maxRetry),
		asynq.Timeout(clickCommitTimeout),
	)
	return err
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{ClicksQueue: 10, DefaultQueue: 1}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}
