package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/clickpulse/internal/logger"
	"github.com/clickpulse/internal/provider"
	"github.com/clickpulse/internal/queue"
	"github.com/clickpulse/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskClickCommit, c.handleClickCommit)
}

func (c *Consumer) handleClickCommit(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_click_commit_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseClickCommitPayload(task)
	if err != nil {
		logger.Warnw("worker_click_commit_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.PostID == 0 {
		logger.Debugw("worker_click_commit_skip_invalid_payload", "post_id", payload.PostID)
		return nil
	}
	if c.Container == nil || c.ClickService == nil {
		logger.Warnw("worker_click_commit_skip_click_service_nil", "post_id", payload.PostID)
		return nil
	}
	if err := c.ClickService.Commit(ctx, payload); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidView):
			logger.Debugw("worker_click_commit_skip_invalid_view", "post_id", payload.PostID, "error", err)
			return nil
		default:
			logger.Warnw("worker_click_commit_failed", "post_id", payload.PostID, "bucket", payload.Bucket, "error", err)
			return err
		}
	}
	return nil
}
