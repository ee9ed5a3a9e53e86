package models

import "time"

// ClickRecord 文章按天聚合的点击记录，(post_id, date) 唯一
type ClickRecord struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	PostID           uint      `gorm:"not null;uniqueIndex:idx_click_records_post_date,priority:1" json:"post_id"`
	Date             string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_click_records_post_date,priority:2;index" json:"date"` // YYYY-MM-DD，站点时区
	Clicks           int64     `gorm:"not null;default:0" json:"clicks"`
	GoogleClicks     int64     `gorm:"not null;default:0" json:"google_clicks"`
	SocialClicks     int64     `gorm:"not null;default:0" json:"social_clicks"`
	DirectClicks     int64     `gorm:"not null;default:0" json:"direct_clicks"`
	HumanClicks      int64     `gorm:"not null;default:0" json:"human_clicks"`
	BotClicks        int64     `gorm:"not null;default:0" json:"bot_clicks"`
	SuspiciousClicks int64     `gorm:"not null;default:0" json:"suspicious_clicks"`
	IsBot            int       `gorm:"not null;default:0" json:"is_bot"` // 最近一次合并访问的分类 0/1/2
	CountryCode      string    `gorm:"type:varchar(16)" json:"country_code"`
	CountryName      string    `gorm:"type:varchar(128)" json:"country_name"`
	CityName         string    `gorm:"type:varchar(128)" json:"city_name"`
	UserAgent        string    `gorm:"type:varchar(1024)" json:"user_agent"`
	ReferrerURL      string    `gorm:"type:varchar(1024)" json:"referrer_url"`
	PostLanguage     string    `gorm:"type:varchar(16)" json:"post_language"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName 指定表名
func (ClickRecord) TableName() string {
	return "click_records"
}
