package public

import "github.com/clickpulse/internal/provider"

// Handler 采集接口处理器入口
// 说明：该处理器仅用于访客侧的访问上报。
type Handler struct {
	*provider.Container
}

// New 创建采集处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
