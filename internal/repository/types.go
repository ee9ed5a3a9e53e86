package repository

// ClickQueryFilter 点击统计查询条件，日期为 YYYY-MM-DD 闭区间，空值表示不限
type ClickQueryFilter struct {
	PostID   uint
	DateFrom string
	DateTo   string
	Page     int
	PageSize int
}

// ClickTotalsAggregate 点击计数汇总
type ClickTotalsAggregate struct {
	Clicks           int64
	GoogleClicks     int64
	SocialClicks     int64
	DirectClicks     int64
	HumanClicks      int64
	BotClicks        int64
	SuspiciousClicks int64
}

// PostClickAggregate 单篇文章点击汇总
type PostClickAggregate struct {
	PostID       uint
	Clicks       int64
	HumanClicks  int64
	GoogleClicks int64
	SocialClicks int64
	DirectClicks int64
}
