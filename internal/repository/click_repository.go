package repository

import (
	"github.com/clickpulse/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClickRepository 点击记录数据访问接口
type ClickRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ClickRepository

	GetByPostDate(postID uint, date string) (*models.ClickRecord, error)
	GetByPostDateForUpdate(postID uint, date string) (*models.ClickRecord, error)
	CreateIfAbsent(record *models.ClickRecord) (bool, error)
	Update(record *models.ClickRecord) error

	SumTotals(filter ClickQueryFilter) (ClickTotalsAggregate, error)
	SumClicksByDate(postID uint, dates []string) (map[string]int64, error)
	ListDaily(filter ClickQueryFilter) ([]models.ClickRecord, int64, error)
	TopPosts(filter ClickQueryFilter, limit int) ([]PostClickAggregate, error)
}

// GormClickRepository GORM 点击记录仓储
type GormClickRepository struct {
	db *gorm.DB
}

// NewClickRepository 创建点击记录仓储
func NewClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

// WithTx 绑定事务
func (r *GormClickRepository) WithTx(tx *gorm.DB) ClickRepository {
	if tx == nil {
		return r
	}
	return &GormClickRepository{db: tx}
}

// Transaction 执行事务
func (r *GormClickRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByPostDate 获取某天的记录，不存在时返回 nil
func (r *GormClickRepository) GetByPostDate(postID uint, date string) (*models.ClickRecord, error) {
	return r.getByPostDate(r.db, postID, date)
}

// GetByPostDateForUpdate 加行锁获取某天的记录，须在事务内调用
func (r *GormClickRepository) GetByPostDateForUpdate(postID uint, date string) (*models.ClickRecord, error) {
	return r.getByPostDate(lockForUpdate(r.db), postID, date)
}

func (r *GormClickRepository) getByPostDate(db *gorm.DB, postID uint, date string) (*models.ClickRecord, error) {
	var record models.ClickRecord
	// 首次访问时记录必然不存在，用 Find 避免 gorm 记录 record not found
	result := db.Where("post_id = ? AND date = ?", postID, date).Limit(1).Find(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &record, nil
}

// CreateIfAbsent 插入记录，(post_id, date) 已存在时不做任何修改并返回 false
func (r *GormClickRepository) CreateIfAbsent(record *models.ClickRecord) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "date"}},
		DoNothing: true,
	}).Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Update 保存记录全部字段
func (r *GormClickRepository) Update(record *models.ClickRecord) error {
	return r.db.Save(record).Error
}

// SumTotals 汇总计数
func (r *GormClickRepository) SumTotals(filter ClickQueryFilter) (ClickTotalsAggregate, error) {
	var agg ClickTotalsAggregate
	query := r.filtered(filter).Select(
		"COALESCE(SUM(clicks), 0) AS clicks, " +
			"COALESCE(SUM(google_clicks), 0) AS google_clicks, " +
			"COALESCE(SUM(social_clicks), 0) AS social_clicks, " +
			"COALESCE(SUM(direct_clicks), 0) AS direct_clicks, " +
			"COALESCE(SUM(human_clicks), 0) AS human_clicks, " +
			"COALESCE(SUM(bot_clicks), 0) AS bot_clicks, " +
			"COALESCE(SUM(suspicious_clicks), 0) AS suspicious_clicks",
	)
	if err := query.Scan(&agg).Error; err != nil {
		return ClickTotalsAggregate{}, err
	}
	return agg, nil
}

// SumClicksByDate 按天汇总指定日期的点击数，缺失日期不出现在结果中
func (r *GormClickRepository) SumClicksByDate(postID uint, dates []string) (map[string]int64, error) {
	result := make(map[string]int64, len(dates))
	if len(dates) == 0 {
		return result, nil
	}
	type row struct {
		Date   string
		Clicks int64
	}
	var rows []row
	query := r.db.Model(&models.ClickRecord{}).
		Select("date, COALESCE(SUM(clicks), 0) AS clicks").
		Where("date IN ?", dates)
	if postID > 0 {
		query = query.Where("post_id = ?", postID)
	}
	if err := query.Group("date").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, item := range rows {
		result[item.Date] = item.Clicks
	}
	return result, nil
}

// ListDaily 按日期倒序列出每日记录
func (r *GormClickRepository) ListDaily(filter ClickQueryFilter) ([]models.ClickRecord, int64, error) {
	query := r.filtered(filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.ClickRecord
	query = applyPagination(query.Order("date DESC").Order("post_id ASC"), filter.Page, filter.PageSize)
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// TopPosts 按点击数排名
func (r *GormClickRepository) TopPosts(filter ClickQueryFilter, limit int) ([]PostClickAggregate, error) {
	if limit <= 0 {
		limit = 10
	}
	filter.PostID = 0
	var rows []PostClickAggregate
	err := r.filtered(filter).
		Select("post_id, " +
			"COALESCE(SUM(clicks), 0) AS clicks, " +
			"COALESCE(SUM(human_clicks), 0) AS human_clicks, " +
			"COALESCE(SUM(google_clicks), 0) AS google_clicks, " +
			"COALESCE(SUM(social_clicks), 0) AS social_clicks, " +
			"COALESCE(SUM(direct_clicks), 0) AS direct_clicks").
		Group("post_id").
		Order("clicks DESC").
		Order("post_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormClickRepository) filtered(filter ClickQueryFilter) *gorm.DB {
	query := r.db.Model(&models.ClickRecord{})
	if filter.PostID > 0 {
		query = query.Where("post_id = ?", filter.PostID)
	}
	return applyDateRange(query, filter.DateFrom, filter.DateTo)
}
