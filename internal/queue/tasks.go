package queue

import (
	"encoding/json"
	"time"

	"github.com/clickpulse/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskClickCommit 点击聚合写入任务
	TaskClickCommit = constants.TaskClickCommit
)

// ClickCommitPayload 已通过分类与去重的一次访问
type ClickCommitPayload struct {
	PostID       uint      `json:"post_id"`
	OccurredAt   time.Time `json:"occurred_at"`
	Bucket       string    `json:"bucket"`
	Status       int       `json:"status"`
	IP           string    `json:"ip"`
	UserAgent    string    `json:"user_agent,omitempty"`
	Referrer     string    `json:"referrer,omitempty"`
	PostLanguage string    `json:"post_language,omitempty"`
}

// NewClickCommitTask 创建点击聚合任务
func NewClickCommitTask(payload ClickCommitPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskClickCommit, body), nil
}

// ParseClickCommitPayload 解析点击聚合任务载荷
func ParseClickCommitPayload(task *asynq.Task) (ClickCommitPayload, error) {
	var payload ClickCommitPayload
	if task == nil {
		return payload, nil
	}
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
