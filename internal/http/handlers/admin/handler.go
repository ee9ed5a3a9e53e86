package admin

import "github.com/clickpulse/internal/provider"

// Handler 统计查询接口处理器入口
// 说明：该处理器仅用于需要鉴权的统计 API。
type Handler struct {
	*provider.Container
}

// New 创建统计处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
