package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/clickpulse/internal/models"
	"github.com/clickpulse/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupClickStatsServiceTest(t *testing.T) (*ClickStatsService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	records := []models.ClickRecord{
		{PostID: 1, Date: "2026-04-29", Clicks: 5, GoogleClicks: 2, SocialClicks: 1, DirectClicks: 1, HumanClicks: 3, BotClicks: 2},
		{PostID: 1, Date: "2026-04-30", Clicks: 4, GoogleClicks: 1, SocialClicks: 2, DirectClicks: 1, HumanClicks: 4},
		{PostID: 1, Date: "2026-05-01", Clicks: 7, GoogleClicks: 3, DirectClicks: 2, HumanClicks: 5, SuspiciousClicks: 2, CountryCode: "FR"},
		{PostID: 2, Date: "2026-05-01", Clicks: 20, GoogleClicks: 10, HumanClicks: 20},
		{PostID: 3, Date: "2026-04-01", Clicks: 3, DirectClicks: 3, HumanClicks: 3},
	}
	for i := range records {
		if err := db.Create(&records[i]).Error; err != nil {
			t.Fatalf("seed click record failed: %v", err)
		}
	}
	svc := NewClickStatsService(repository.NewClickRepository(db), time.UTC)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
	return svc, db
}

func TestGetTotalClicks(t *testing.T) {
	svc, _ := setupClickStatsServiceTest(t)

	total, err := svc.GetTotalClicks(1, DateRange{})
	if err != nil || total != 16 {
		t.Fatalf("all-time total want 16 got %d err=%v", total, err)
	}
	total, err = svc.GetTotalClicks(1, DateRange{From: "2026-04-30", To: "2026-05-01"})
	if err != nil || total != 11 {
		t.Fatalf("ranged total want 11 got %d err=%v", total, err)
	}
	total, err = svc.GetTotalClicks(99, DateRange{})
	if err != nil || total != 0 {
		t.Fatalf("unknown post want 0 got %d err=%v", total, err)
	}
}

func TestGetTotalClicksValidatesInput(t *testing.T) {
	svc, _ := setupClickStatsServiceTest(t)

	if _, err := svc.GetTotalClicks(0, DateRange{}); !errors.Is(err, ErrInvalidPostID) {
		t.Fatalf("expected invalid post id, got %v", err)
	}
	if _, err := svc.GetTotalClicks(1, DateRange{From: "2026-05-02", To: "2026-05-01"}); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}
	if _, err := svc.GetTotalClicks(1, DateRange{From: "05/01/2026"}); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected invalid date format, got %v", err)
	}
}

func TestGetClicksByBucketAndClassification(t *testing.T) {
	svc, _ := setupClickStatsServiceTest(t)

	buckets, err := svc.GetClicksByBucket(1, DateRange{})
	if err != nil {
		t.Fatalf("get buckets failed: %v", err)
	}
	if buckets.Google != 6 || buckets.Social != 3 || buckets.Direct != 4 {
		t.Fatalf("unexpected buckets: %+v", buckets)
	}

	classes, err := svc.GetClassificationBreakdown(1, DateRange{From: "2026-05-01"})
	if err != nil {
		t.Fatalf("get classification failed: %v", err)
	}
	if classes.Human != 5 || classes.Suspicious != 2 || classes.Bot != 0 {
		t.Fatalf("unexpected classification: %+v", classes)
	}
}

func TestGetTrendComparesTodayWithYesterday(t *testing.T) {
	svc, _ := setupClickStatsServiceTest(t)

	trend, err := svc.GetTrend(1)
	if err != nil {
		t.Fatalf("get trend failed: %v", err)
	}
	if trend.Today != 7 || trend.Yesterday != 4 || trend.Direction != "up" {
		t.Fatalf("unexpected trend: %+v", trend)
	}
	if trend.TodayDate != "2026-05-01" || trend.YesterdayDate != "2026-04-30" {
		t.Fatalf("unexpected trend dates: %+v", trend)
	}

	trend, err = svc.GetTrend(3)
	if err != nil || trend.Today != 0 || trend.Yesterday != 0 || trend.Direction != "flat" {
		t.Fatalf("missing days should be zero: %+v err=%v", trend, err)
	}
}

func TestGetTrendUsesConfiguredTimezone(t *testing.T) {
	svc, _ := setupClickStatsServiceTest(t)
	svc.location = time.FixedZone("UTC-10", -10*3600)

	trend, err := svc.GetTrend(1)
	if err != nil {
		t.Fatalf("get trend failed: %v", err)
	}
	if trend.TodayDate != "2026-04-30" || trend.Today != 4 || trend.Yesterday != 5 || trend.Direction != "down" {
		t.Fatalf("unexpected local trend: %+v", trend)
	}
}

func TestGetDailySeries(t *testing.T) {
	svc, _ := setupClickStatsServiceTest(t)

	items, total, err := svc.GetDailySeries(1, DateRange{}, 1, 2)
	if err != nil {
		t.Fatalf("get daily series failed: %v", err)
	}
	if total != 3 || len(items) != 2 {
		t.Fatalf("unexpected page: total=%d len=%d", total, len(items))
	}
	if items[0].Date != "2026-05-01" || items[0].CountryCode != "FR" || items[0].Classification.Suspicious != 2 {
		t.Fatalf("unexpected first day: %+v", items[0])
	}
}

func TestGetTopPosts(t *testing.T) {
	svc, _ := setupClickStatsServiceTest(t)

	items, err := svc.GetTopPosts(DateRange{From: "2026-04-15"}, 0)
	if err != nil {
		t.Fatalf("get top posts failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected two posts in range, got %d", len(items))
	}
	if items[0].PostID != 2 || items[0].Clicks != 20 || items[1].PostID != 1 || items[1].Clicks != 16 {
		t.Fatalf("unexpected ranking: %+v", items)
	}
}
