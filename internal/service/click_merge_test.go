package service

import (
	"testing"

	"github.com/clickpulse/internal/constants"
	"github.com/clickpulse/internal/geo"
	"github.com/clickpulse/internal/models"
)

func TestMergeViewIncrementsCountersByBucketAndClass(t *testing.T) {
	record := &models.ClickRecord{PostID: 1, Date: "2026-05-01"}

	MergeView(record, ClickView{Bucket: constants.BucketSearch, Status: constants.ViewStatusHuman})
	MergeView(record, ClickView{Bucket: constants.BucketSocial, Status: constants.ViewStatusSuspicious})
	MergeView(record, ClickView{Bucket: constants.BucketDirect, Status: constants.ViewStatusHuman})
	MergeView(record, ClickView{Bucket: constants.BucketNone, Status: constants.ViewStatusBot})

	if record.Clicks != 4 {
		t.Fatalf("clicks want 4 got %d", record.Clicks)
	}
	if record.GoogleClicks != 1 || record.SocialClicks != 1 || record.DirectClicks != 1 {
		t.Fatalf("unexpected buckets: %+v", record)
	}
	if record.HumanClicks != 2 || record.BotClicks != 1 || record.SuspiciousClicks != 1 {
		t.Fatalf("unexpected classification counters: %+v", record)
	}
	if record.IsBot != constants.ViewStatusBot {
		t.Fatalf("is_bot should follow latest view, got %d", record.IsBot)
	}
	if sum := record.GoogleClicks + record.SocialClicks + record.DirectClicks; sum > record.Clicks {
		t.Fatalf("bucket sum %d exceeds clicks %d", sum, record.Clicks)
	}
}

func TestMergeViewUnknownStatusCountsAsHuman(t *testing.T) {
	record := &models.ClickRecord{}
	MergeView(record, ClickView{Bucket: constants.BucketDirect, Status: 42})
	if record.HumanClicks != 1 || record.IsBot != constants.ViewStatusHuman {
		t.Fatalf("unknown status should be human: %+v", record)
	}
}

func TestMergeViewGeoFirstWriterWins(t *testing.T) {
	record := &models.ClickRecord{}

	MergeView(record, ClickView{Location: geo.Unknown})
	if record.CountryCode != "" {
		t.Fatalf("unknown location must not be stored, got %q", record.CountryCode)
	}

	MergeView(record, ClickView{Location: geo.Location{CountryCode: "US", CountryName: "United States", CityName: "Austin"}})
	MergeView(record, ClickView{Location: geo.Location{CountryCode: "GB", CountryName: "United Kingdom", CityName: "London"}})

	if record.CountryCode != "US" || record.CountryName != "United States" || record.CityName != "Austin" {
		t.Fatalf("first known location should stick: %+v", record)
	}
}

func TestMergeViewTextFields(t *testing.T) {
	record := &models.ClickRecord{}

	MergeView(record, ClickView{UserAgent: "ua-1", Referrer: "https://a.example", PostLanguage: "en"})
	MergeView(record, ClickView{UserAgent: "", Referrer: "", PostLanguage: "de"})
	MergeView(record, ClickView{UserAgent: "ua-3"})

	if record.UserAgent != "ua-3" {
		t.Fatalf("user agent should be last non-empty, got %q", record.UserAgent)
	}
	if record.ReferrerURL != "https://a.example" {
		t.Fatalf("empty referrer must not overwrite, got %q", record.ReferrerURL)
	}
	if record.PostLanguage != "en" {
		t.Fatalf("language should be first non-empty, got %q", record.PostLanguage)
	}
}

func TestMergeViewNilRecord(t *testing.T) {
	MergeView(nil, ClickView{Bucket: constants.BucketDirect})
}
