package admin

import (
	handlershared "github.com/clickpulse/internal/http/handlers/shared"
	"github.com/clickpulse/internal/http/response"

	"github.com/gin-gonic/gin"
)

const (
	dailyPageSize = 30
	topPostsLimit = 10
)

// GetPostTotal 文章点击总数
func (h *Handler) GetPostTotal(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}
	rng := parseDateRange(c)
	total, err := h.ClickStatsService.GetTotalClicks(postID, rng)
	if err != nil {
		respondStatsError(c, err)
		return
	}
	response.Success(c, gin.H{
		"post_id": postID,
		"from":    rng.From,
		"to":      rng.To,
		"clicks":  total,
	})
}

// GetPostBuckets 文章来源分桶
func (h *Handler) GetPostBuckets(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}
	buckets, err := h.ClickStatsService.GetClicksByBucket(postID, parseDateRange(c))
	if err != nil {
		respondStatsError(c, err)
		return
	}
	response.Success(c, buckets)
}

// GetPostClassification 文章访问分类
func (h *Handler) GetPostClassification(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}
	breakdown, err := h.ClickStatsService.GetClassificationBreakdown(postID, parseDateRange(c))
	if err != nil {
		respondStatsError(c, err)
		return
	}
	response.Success(c, breakdown)
}

// GetPostTrend 今日与昨日对比
func (h *Handler) GetPostTrend(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}
	trend, err := h.ClickStatsService.GetTrend(postID)
	if err != nil {
		respondStatsError(c, err)
		return
	}
	response.Success(c, trend)
}

// GetPostDaily 文章每日明细
func (h *Handler) GetPostDaily(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PageQuery(c, dailyPageSize)
	items, total, err := h.ClickStatsService.GetDailySeries(postID, parseDateRange(c), page, pageSize)
	if err != nil {
		respondStatsError(c, err)
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// GetTopPosts 点击排行
func (h *Handler) GetTopPosts(c *gin.Context) {
	items, err := h.ClickStatsService.GetTopPosts(parseDateRange(c), handlershared.QueryInt(c, "limit", topPostsLimit))
	if err != nil {
		respondStatsError(c, err)
		return
	}
	response.Success(c, items)
}
