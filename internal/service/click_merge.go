package service

import (
	"github.com/clickpulse/internal/constants"
	"github.com/clickpulse/internal/geo"
	"github.com/clickpulse/internal/models"
)

// ClickView 合并进日聚合记录的一次访问
type ClickView struct {
	Bucket       string
	Status       int
	Location     geo.Location
	UserAgent    string
	Referrer     string
	PostLanguage string
}

// MergeView 把一次访问合并进记录，纯函数，不做任何 IO
//
// 计数全部 +1；is_bot 取最新一次；地理位置与语言先写先得；UA 与 referrer 取最后一个非空值。
func MergeView(record *models.ClickRecord, view ClickView) {
	if record == nil {
		return
	}
	record.Clicks++

	switch view.Bucket {
	case constants.BucketSearch:
		record.GoogleClicks++
	case constants.BucketSocial:
		record.SocialClicks++
	case constants.BucketDirect:
		record.DirectClicks++
	}

	switch view.Status {
	case constants.ViewStatusBot:
		record.BotClicks++
	case constants.ViewStatusSuspicious:
		record.SuspiciousClicks++
	default:
		view.Status = constants.ViewStatusHuman
		record.HumanClicks++
	}
	record.IsBot = view.Status

	if view.Location.Known() {
		if record.CountryCode == "" {
			record.CountryCode = view.Location.CountryCode
		}
		if record.CountryName == "" {
			record.CountryName = view.Location.CountryName
		}
		if record.CityName == "" {
			record.CityName = view.Location.CityName
		}
	}

	if view.UserAgent != "" {
		record.UserAgent = view.UserAgent
	}
	if view.Referrer != "" {
		record.ReferrerURL = view.Referrer
	}
	if record.PostLanguage == "" && view.PostLanguage != "" {
		record.PostLanguage = view.PostLanguage
	}
}
