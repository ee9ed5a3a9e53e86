package service

import "errors"

var (
	// ErrInvalidView 访问参数非法（缺少文章 ID 或 IP 格式错误）
	ErrInvalidView = errors.New("invalid view")
	// ErrInvalidPostID 文章 ID 非法
	ErrInvalidPostID = errors.New("invalid post id")
	// ErrInvalidDateRange 日期区间非法
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrClickCommitFailed 点击聚合写入在重试后仍失败
	ErrClickCommitFailed = errors.New("click commit failed")
	// ErrStatsFetchFailed 统计查询失败
	ErrStatsFetchFailed = errors.New("stats fetch failed")
)
