package queue

import (
	"context"
	"testing"
	"time"

	"github.com/clickpulse/internal/config"
)

func TestClickCommitTaskPayload(t *testing.T) {
	at := time.Date(2026, 4, 1, 23, 59, 0, 0, time.UTC)
	task, err := NewClickCommitTask(ClickCommitPayload{PostID: 9, OccurredAt: at, Bucket: "social", Status: 2, IP: "203.0.113.4"})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskClickCommit {
		t.Fatalf("task type want %s got %s", TaskClickCommit, task.Type())
	}
	got, err := ParseClickCommitPayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if got.PostID != 9 || !got.OccurredAt.Equal(at) || got.Bucket != "social" || got.Status != 2 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueClickCommit(context.Background(), ClickCommitPayload{PostID: 1}); err != nil {
		t.Fatalf("disabled enqueue should be a no-op: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, DB: 2})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 10 || cfg.Queues[ClicksQueue] != 10 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}
