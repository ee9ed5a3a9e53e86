package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/clickpulse/internal/clientip"
	"github.com/clickpulse/internal/constants"
	"github.com/clickpulse/internal/detect"
	"github.com/clickpulse/internal/geo"
	"github.com/clickpulse/internal/logger"
	"github.com/clickpulse/internal/models"
	"github.com/clickpulse/internal/queue"
	"github.com/clickpulse/internal/referrer"
	"github.com/clickpulse/internal/repository"

	"gorm.io/gorm"
)

const (
	maxUserAgentBytes       = 1024
	maxReferrerBytes        = 1024
	defaultPostLanguageSize = 16
	defaultCommitAttempts   = 3
	defaultCommitBackoff    = 20 * time.Millisecond
)

var errConcurrentInsert = errors.New("click record inserted concurrently but not visible")

// ViewClassifier 访问分类
type ViewClassifier interface {
	Classify(ctx context.Context, s detect.Signals) detect.Verdict
}

// GeoLocator 地理位置解析
type GeoLocator interface {
	Resolve(ctx context.Context, ip string) geo.Location
}

// CommitDispatcher 异步写入分发
type CommitDispatcher interface {
	Enabled() bool
	EnqueueClickCommit(ctx context.Context, payload queue.ClickCommitPayload) error
}

// ViewHeaders 访问时的内容协商头
type ViewHeaders struct {
	Accept         string
	AcceptLanguage string
	AcceptEncoding string
	DNT            string
}

// ViewInput 一次文章访问
type ViewInput struct {
	PostID          uint
	ClientIP        string
	ViaTrustedProxy bool
	UserAgent       string
	Referrer        string
	Timestamp       time.Time
	PostLanguage    string
	// Headers 为 nil 表示调用方没有转发请求头
	Headers *ViewHeaders
}

// ClickServiceOptions 点击服务参数
type ClickServiceOptions struct {
	Location             *time.Location
	CommitMaxAttempts    int
	CommitBackoff        time.Duration
	MaxPostLanguageBytes int
}

// ClickService 访问采集与聚合写入
type ClickService struct {
	repo       repository.ClickRepository
	classifier ViewClassifier
	guard      *ViewGuard
	geo        GeoLocator
	dispatcher CommitDispatcher
	opts       ClickServiceOptions
	now        func() time.Time
}

// NewClickService 创建点击服务，geo 与 dispatcher 可为 nil
func NewClickService(
	repo repository.ClickRepository,
	classifier ViewClassifier,
	guard *ViewGuard,
	geoLocator GeoLocator,
	dispatcher CommitDispatcher,
	opts ClickServiceOptions,
) *ClickService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.CommitMaxAttempts <= 0 {
		opts.CommitMaxAttempts = defaultCommitAttempts
	}
	if opts.CommitBackoff <= 0 {
		opts.CommitBackoff = defaultCommitBackoff
	}
	if opts.MaxPostLanguageBytes <= 0 {
		opts.MaxPostLanguageBytes = defaultPostLanguageSize
	}
	return &ClickService{
		repo:       repo,
		classifier: classifier,
		guard:      guard,
		geo:        geoLocator,
		dispatcher: dispatcher,
		opts:       opts,
		now:        time.Now,
	}
}

// RecordView 处理一次访问：分类、去重、来源分桶，然后提交聚合写入
//
// 重复或处于冷却期的访问静默丢弃并返回 nil。只有参数非法与存储失败会返回错误。
func (s *ClickService) RecordView(ctx context.Context, input ViewInput) error {
	if input.PostID == 0 {
		return fmt.Errorf("%w: post_id is required", ErrInvalidView)
	}
	ip := clientip.Loopback
	if raw := strings.TrimSpace(input.ClientIP); raw != "" {
		ip = clientip.Normalize(raw)
		if ip == "" {
			return fmt.Errorf("%w: malformed client ip", ErrInvalidView)
		}
	}
	userAgent := truncateUTF8(strings.TrimSpace(input.UserAgent), maxUserAgentBytes)
	ref := truncateUTF8(strings.TrimSpace(input.Referrer), maxReferrerBytes)

	signals := detect.Signals{
		UserAgent:       userAgent,
		Referrer:        ref,
		IP:              ip,
		ViaTrustedProxy: input.ViaTrustedProxy,
	}
	if input.Headers != nil {
		signals.HeadersObserved = true
		signals.Accept = input.Headers.Accept
		signals.AcceptLanguage = input.Headers.AcceptLanguage
		signals.AcceptEncoding = input.Headers.AcceptEncoding
		signals.DNT = input.Headers.DNT
	}
	verdict := detect.Verdict{Class: constants.ClassHuman, Status: constants.ViewStatusHuman}
	if s.classifier != nil {
		verdict = s.classifier.Classify(ctx, signals)
	}

	if !s.guard.Admit(ctx, ip, userAgent, input.PostID) {
		logger.Debugw("click_view_dropped", "post_id", input.PostID, "ip", ip)
		return nil
	}

	source := referrer.Classify(ref, userAgent)
	bucket := source.Bucket
	if !verdict.IsHuman() && bucket == constants.BucketDirect {
		bucket = constants.BucketNone
	}

	occurredAt := input.Timestamp
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}
	payload := queue.ClickCommitPayload{
		PostID:       input.PostID,
		OccurredAt:   occurredAt,
		Bucket:       bucket,
		Status:       verdict.Status,
		IP:           ip,
		UserAgent:    userAgent,
		Referrer:     ref,
		PostLanguage: s.normalizeLanguage(input.PostLanguage),
	}
	logger.Debugw("click_view_classified",
		"post_id", input.PostID,
		"class", verdict.Class,
		"rule", verdict.Rule,
		"bucket", bucket,
		"source", source.Source,
	)

	if s.dispatcher != nil && s.dispatcher.Enabled() {
		err := s.dispatcher.EnqueueClickCommit(ctx, payload)
		if err == nil {
			return nil
		}
		logger.Warnw("click_commit_enqueue_failed", "post_id", input.PostID, "error", err)
	}
	return s.Commit(ctx, payload)
}

// Commit 解析地理位置并写入日聚合记录，存储冲突时有限次重试
func (s *ClickService) Commit(ctx context.Context, payload queue.ClickCommitPayload) error {
	if payload.PostID == 0 {
		return fmt.Errorf("%w: post_id is required", ErrInvalidView)
	}
	occurredAt := payload.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}
	date := occurredAt.In(s.opts.Location).Format(constants.DateLayout)

	view := ClickView{
		Bucket:       payload.Bucket,
		Status:       payload.Status,
		UserAgent:    payload.UserAgent,
		Referrer:     payload.Referrer,
		PostLanguage: payload.PostLanguage,
	}
	// 机器人与可疑访问不消耗外部地理位置配额
	if s.geo != nil && payload.Status == constants.ViewStatusHuman {
		view.Location = s.geo.Resolve(ctx, payload.IP)
	}

	var err error
	for attempt := 1; ; attempt++ {
		if err = s.upsert(payload.PostID, date, view); err == nil {
			return nil
		}
		if attempt >= s.opts.CommitMaxAttempts {
			break
		}
		logger.Warnw("click_commit_retry",
			"post_id", payload.PostID,
			"date", date,
			"attempt", attempt,
			"error", err,
		)
		if waitErr := sleepContext(ctx, time.Duration(attempt)*s.opts.CommitBackoff); waitErr != nil {
			err = errors.Join(err, waitErr)
			break
		}
	}

	logger.Errorw("click_commit_failed",
		"post_id", payload.PostID,
		"date", date,
		"bucket", payload.Bucket,
		"status", payload.Status,
		"error", err,
	)
	return fmt.Errorf("%w: %v", ErrClickCommitFailed, err)
}

func (s *ClickService) upsert(postID uint, date string, view ClickView) error {
	return s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := repo.GetByPostDateForUpdate(postID, date)
		if err != nil {
			return err
		}
		if record == nil {
			fresh := &models.ClickRecord{PostID: postID, Date: date}
			MergeView(fresh, view)
			created, err := repo.CreateIfAbsent(fresh)
			if err != nil {
				return err
			}
			if created {
				return nil
			}
			// 并发插入落败，锁住对方刚写入的行后合并
			record, err = repo.GetByPostDateForUpdate(postID, date)
			if err != nil {
				return err
			}
			if record == nil {
				return errConcurrentInsert
			}
		}
		MergeView(record, view)
		return repo.Update(record)
	})
}

func (s *ClickService) normalizeLanguage(raw string) string {
	lang := strings.TrimSpace(raw)
	if lang == "" {
		return ""
	}
	return truncateUTF8(lang, s.opts.MaxPostLanguageBytes)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncateUTF8(value string, maxBytes int) string {
	if maxBytes <= 0 || len(value) <= maxBytes {
		return value
	}
	cut := value[:maxBytes]
	for !utf8.ValidString(cut) && len(cut) > 0 {
		cut = cut[:len(cut)-1]
	}
	return cut
}
