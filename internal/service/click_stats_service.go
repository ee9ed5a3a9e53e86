package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/clickpulse/internal/constants"
	"github.com/clickpulse/internal/repository"
)

const (
	defaultTopPostsLimit = 10
	maxTopPostsLimit     = 100
)

// DateRange 日期闭区间，空值表示不限
type DateRange struct {
	From string
	To   string
}

// Normalize 校验日期格式与先后顺序
func (r DateRange) Normalize() (DateRange, error) {
	out := DateRange{From: strings.TrimSpace(r.From), To: strings.TrimSpace(r.To)}
	var from, to time.Time
	var err error
	if out.From != "" {
		if from, err = time.Parse(constants.DateLayout, out.From); err != nil {
			return DateRange{}, fmt.Errorf("%w: from %q", ErrInvalidDateRange, out.From)
		}
	}
	if out.To != "" {
		if to, err = time.Parse(constants.DateLayout, out.To); err != nil {
			return DateRange{}, fmt.Errorf("%w: to %q", ErrInvalidDateRange, out.To)
		}
	}
	if out.From != "" && out.To != "" && from.After(to) {
		return DateRange{}, fmt.Errorf("%w: from after to", ErrInvalidDateRange)
	}
	return out, nil
}

// BucketBreakdown 来源分桶计数
type BucketBreakdown struct {
	Google int64 `json:"google"`
	Social int64 `json:"social"`
	Direct int64 `json:"direct"`
}

// ClassificationBreakdown 访问分类计数
type ClassificationBreakdown struct {
	Human      int64 `json:"human"`
	Bot        int64 `json:"bot"`
	Suspicious int64 `json:"suspicious"`
}

// Trend 今日与昨日对比
type Trend struct {
	Today         int64  `json:"today"`
	Yesterday     int64  `json:"yesterday"`
	TodayDate     string `json:"today_date"`
	YesterdayDate string `json:"yesterday_date"`
	Direction     string `json:"direction"` // up / down / flat
}

// DailyClicks 单日统计
type DailyClicks struct {
	Date           string                  `json:"date"`
	Clicks         int64                   `json:"clicks"`
	Buckets        BucketBreakdown         `json:"buckets"`
	Classification ClassificationBreakdown `json:"classification"`
	IsBot          int                     `json:"is_bot"`
	CountryCode    string                  `json:"country_code"`
	CountryName    string                  `json:"country_name"`
	CityName       string                  `json:"city_name"`
	PostLanguage   string                  `json:"post_language"`
}

// TopPost 排行榜条目
type TopPost struct {
	PostID  uint            `json:"post_id"`
	Clicks  int64           `json:"clicks"`
	Human   int64           `json:"human"`
	Buckets BucketBreakdown `json:"buckets"`
}

// ClickStatsService 点击统计查询
type ClickStatsService struct {
	repo     repository.ClickRepository
	location *time.Location
	now      func() time.Time
}

// NewClickStatsService 创建统计服务
func NewClickStatsService(repo repository.ClickRepository, location *time.Location) *ClickStatsService {
	if location == nil {
		location = time.UTC
	}
	return &ClickStatsService{repo: repo, location: location, now: time.Now}
}

// GetTotalClicks 文章点击总数
func (s *ClickStatsService) GetTotalClicks(postID uint, rng DateRange) (int64, error) {
	totals, err := s.totals(postID, rng)
	if err != nil {
		return 0, err
	}
	return totals.Clicks, nil
}

// GetClicksByBucket 文章来源分桶计数
func (s *ClickStatsService) GetClicksByBucket(postID uint, rng DateRange) (BucketBreakdown, error) {
	totals, err := s.totals(postID, rng)
	if err != nil {
		return BucketBreakdown{}, err
	}
	return BucketBreakdown{
		Google: totals.GoogleClicks,
		Social: totals.SocialClicks,
		Direct: totals.DirectClicks,
	}, nil
}

// GetClassificationBreakdown 文章访问分类计数
func (s *ClickStatsService) GetClassificationBreakdown(postID uint, rng DateRange) (ClassificationBreakdown, error) {
	totals, err := s.totals(postID, rng)
	if err != nil {
		return ClassificationBreakdown{}, err
	}
	return ClassificationBreakdown{
		Human:      totals.HumanClicks,
		Bot:        totals.BotClicks,
		Suspicious: totals.SuspiciousClicks,
	}, nil
}

// GetTrend 站点时区下今日与昨日点击对比
func (s *ClickStatsService) GetTrend(postID uint) (Trend, error) {
	if postID == 0 {
		return Trend{}, ErrInvalidPostID
	}
	today := s.now().In(s.location)
	todayDate := today.Format(constants.DateLayout)
	yesterdayDate := today.AddDate(0, 0, -1).Format(constants.DateLayout)

	sums, err := s.repo.SumClicksByDate(postID, []string{todayDate, yesterdayDate})
	if err != nil {
		return Trend{}, fmt.Errorf("%w: %v", ErrStatsFetchFailed, err)
	}
	trend := Trend{
		Today:         sums[todayDate],
		Yesterday:     sums[yesterdayDate],
		TodayDate:     todayDate,
		YesterdayDate: yesterdayDate,
		Direction:     "flat",
	}
	switch {
	case trend.Today > trend.Yesterday:
		trend.Direction = "up"
	case trend.Today < trend.Yesterday:
		trend.Direction = "down"
	}
	return trend, nil
}

// GetDailySeries 文章每日明细，按日期倒序
func (s *ClickStatsService) GetDailySeries(postID uint, rng DateRange, page, pageSize int) ([]DailyClicks, int64, error) {
	if postID == 0 {
		return nil, 0, ErrInvalidPostID
	}
	normalized, err := rng.Normalize()
	if err != nil {
		return nil, 0, err
	}
	records, total, err := s.repo.ListDaily(repository.ClickQueryFilter{
		PostID:   postID,
		DateFrom: normalized.From,
		DateTo:   normalized.To,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStatsFetchFailed, err)
	}
	items := make([]DailyClicks, 0, len(records))
	for _, record := range records {
		items = append(items, DailyClicks{
			Date:   record.Date,
			Clicks: record.Clicks,
			Buckets: BucketBreakdown{
				Google: record.GoogleClicks,
				Social: record.SocialClicks,
				Direct: record.DirectClicks,
			},
			Classification: ClassificationBreakdown{
				Human:      record.HumanClicks,
				Bot:        record.BotClicks,
				Suspicious: record.SuspiciousClicks,
			},
			IsBot:        record.IsBot,
			CountryCode:  record.CountryCode,
			CountryName:  record.CountryName,
			CityName:     record.CityName,
			PostLanguage: record.PostLanguage,
		})
	}
	return items, total, nil
}

// GetTopPosts 点击排行
func (s *ClickStatsService) GetTopPosts(rng DateRange, limit int) ([]TopPost, error) {
	normalized, err := rng.Normalize()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopPostsLimit
	}
	if limit > maxTopPostsLimit {
		limit = maxTopPostsLimit
	}
	rows, err := s.repo.TopPosts(repository.ClickQueryFilter{DateFrom: normalized.From, DateTo: normalized.To}, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStatsFetchFailed, err)
	}
	items := make([]TopPost, 0, len(rows))
	for _, row := range rows {
		items = append(items, TopPost{
			PostID: row.PostID,
			Clicks: row.Clicks,
			Human:  row.HumanClicks,
			Buckets: BucketBreakdown{
				Google: row.GoogleClicks,
				Social: row.SocialClicks,
				Direct: row.DirectClicks,
			},
		})
	}
	return items, nil
}

func (s *ClickStatsService) totals(postID uint, rng DateRange) (repository.ClickTotalsAggregate, error) {
	if postID == 0 {
		return repository.ClickTotalsAggregate{}, ErrInvalidPostID
	}
	normalized, err := rng.Normalize()
	if err != nil {
		return repository.ClickTotalsAggregate{}, err
	}
	totals, err := s.repo.SumTotals(repository.ClickQueryFilter{
		PostID:   postID,
		DateFrom: normalized.From,
		DateTo:   normalized.To,
	})
	if err != nil {
		return repository.ClickTotalsAggregate{}, fmt.Errorf("%w: %v", ErrStatsFetchFailed, err)
	}
	return totals, nil
}
