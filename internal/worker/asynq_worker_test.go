package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/clickpulse/internal/config"
	"github.com/clickpulse/internal/constants"
	"github.com/clickpulse/internal/models"
	"github.com/clickpulse/internal/provider"
	"github.com/clickpulse/internal/queue"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	v := viper.New()
	v.AddConfigPath(t.TempDir())
	cfg, err := config.LoadFrom(v)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	cfg.Geo.Enabled = false

	container := provider.NewContainerWithDB(cfg, db)
	t.Cleanup(container.Close)
	return NewConsumer(container), db
}

func TestHandleClickCommitWritesRecord(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	task, err := queue.NewClickCommitTask(queue.ClickCommitPayload{
		PostID:     21,
		OccurredAt: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		Bucket:     constants.BucketSocial,
		Status:     constants.ViewStatusHuman,
		IP:         "198.51.100.5",
		Referrer:   "https://t.co/abc",
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleClickCommit(context.Background(), task); err != nil {
		t.Fatalf("handle task failed: %v", err)
	}

	var record models.ClickRecord
	if err := db.Where("post_id = ? AND date = ?", 21, "2026-05-01").First(&record).Error; err != nil {
		t.Fatalf("load record failed: %v", err)
	}
	if record.Clicks != 1 || record.SocialClicks != 1 || record.ReferrerURL != "https://t.co/abc" {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestHandleClickCommitSkipsBadPayloads(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	err := consumer.handleClickCommit(context.Background(), asynq.NewTask(queue.TaskClickCommit, []byte("{not-json")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("malformed payload should skip retry, got %v", err)
	}

	task, _ := queue.NewClickCommitTask(queue.ClickCommitPayload{Bucket: constants.BucketDirect})
	if err := consumer.handleClickCommit(context.Background(), task); err != nil {
		t.Fatalf("empty post id should be dropped, got %v", err)
	}

	var count int64
	db.Model(&models.ClickRecord{}).Count(&count)
	if count != 0 {
		t.Fatalf("no record expected, got %d", count)
	}
}

func TestRegisterNilSafe(t *testing.T) {
	var consumer *Consumer
	consumer.Register(asynq.NewServeMux())
	if err := consumer.handleClickCommit(context.Background(), nil); err != nil {
		t.Fatalf("nil consumer should be a no-op, got %v", err)
	}
}

func TestNewServiceRequiresEnabledQueue(t *testing.T) {
	consumer, _ := setupConsumerTest(t)

	if _, err := NewService(nil, consumer); err == nil {
		t.Fatalf("nil queue config should fail")
	}
	if _, err := NewService(&config.QueueConfig{Enabled: false}, consumer); err == nil {
		t.Fatalf("disabled queue should fail")
	}
	if _, err := NewService(&config.QueueConfig{Enabled: true}, nil); err == nil {
		t.Fatalf("nil consumer should fail")
	}
}
