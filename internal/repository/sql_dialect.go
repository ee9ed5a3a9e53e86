package repository

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// supportsRowLock sqlite 在写事务内天然串行，不支持 FOR UPDATE
func supportsRowLock(dialect string) bool {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql", "mysql":
		return true
	default:
		return false
	}
}

// lockForUpdate 对支持的数据库追加行锁
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if !supportsRowLock(dbDialectName(db)) {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// applyDateRange 追加日期闭区间条件
func applyDateRange(query *gorm.DB, from, to string) *gorm.DB {
	if from = strings.TrimSpace(from); from != "" {
		query = query.Where("date >= ?", from)
	}
	if to = strings.TrimSpace(to); to != "" {
		query = query.Where("date <= ?", to)
	}
	return query
}
