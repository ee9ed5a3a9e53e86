package constants

// 流量来源分桶
const (
	BucketSearch = "search"
	BucketSocial = "social"
	BucketDirect = "direct"
	// BucketNone 非真人访问未命中搜索/社交来源时不计入任何分桶
	BucketNone = "none"
)

// 访问分类，数值与 click_records.is_bot 列一致
const (
	ViewStatusHuman      = 0
	ViewStatusBot        = 1
	ViewStatusSuspicious = 2
)

// 访问分类名称
const (
	ClassHuman      = "human"
	ClassBot        = "bot"
	ClassSuspicious = "suspicious"
)

// 日期格式
const (
	DateLayout = "2006-01-02"
)

// 地理位置特殊值
const (
	GeoCountryLocal   = "LOCAL"
	GeoCountryUnknown = "UNKNOWN"
)

// 缓存键前缀
const (
	CacheKeyViewDedup     = "view:dedup:"
	CacheKeyViewCooldown  = "view:cooldown:"
	CacheKeyGeoIP         = "geo:ip:"
	CacheKeyGeoCalls      = "geo:calls:"
	CacheKeyBotIP         = "detect:botip:"
	CacheKeyDatacenterIP  = "detect:dcip:"
	CacheKeyIPMinute      = "detect:ipmin:"
	CacheKeyIngestLimiter = "ratelimit:ingest:"
)

// 异步任务与队列
const (
	TaskClickCommit = "click:commit"
	QueueClicks     = "clicks"
	QueueDefault    = "default"
)
