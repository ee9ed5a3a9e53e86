// Package referrer 根据 referrer 与 UA 判定流量来源。
//
// 域名匹配是对小写 host 的子串匹配，有意放宽：
// "google.co.uk"、"m.facebook.com" 之类无需逐一列出。
// 子串只允许从标签边界开始，"t.co" 不会命中 "microsoft.com"。
package referrer

import (
	"net/url"
	"slices"
	"strings"

	"github.com/clickpulse/internal/constants"
)

// Result 来源分类结果
type Result struct {
	Bucket string
	// Source 命中的域名或应用标识，direct 时为空
	Source string
}

// Classify 判定来源分桶
func Classify(rawReferrer, userAgent string) Result {
	ref := strings.TrimSpace(rawReferrer)
	if ref != "" {
		lowerRef := strings.ToLower(ref)
		for _, scheme := range appSchemes {
			if strings.HasPrefix(lowerRef, scheme) {
				label := appLabel(lowerRef, scheme)
				if slices.Contains(searchApps, strings.TrimPrefix(label, "app:")) {
					return Result{Bucket: constants.BucketSearch, Source: label}
				}
				return Result{Bucket: constants.BucketSocial, Source: label}
			}
		}

		host := Host(ref)
		if host != "" {
			if hostMatchesAny(host, searchDomains) {
				return Result{Bucket: constants.BucketSearch, Source: host}
			}
			if hostMatchesAny(host, socialDomains) {
				return Result{Bucket: constants.BucketSocial, Source: host}
			}
		}
		return Result{Bucket: constants.BucketDirect}
	}

	ua := strings.ToLower(userAgent)
	if match := firstMatch(ua, inAppSignatures); match != "" {
		return Result{Bucket: constants.BucketSocial, Source: "inapp:" + strings.TrimSpace(strings.Trim(match, "/"))}
	}
	return Result{Bucket: constants.BucketDirect}
}

// Host 提取小写 host，缺少协议时按 http 补全
func Host(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(strings.ToLower(parsed.Hostname()), ".")
}

// appLabel android-app://com.twitter.android/ -> app:com.twitter.android
func appLabel(lowerRef, scheme string) string {
	rest := strings.TrimPrefix(lowerRef, scheme)
	if idx := strings.IndexAny(rest, "/?#"); idx >= 0 {
		rest = rest[:idx]
	}
	if rest == "" {
		rest = strings.TrimSuffix(scheme, "://")
	}
	return "app:" + rest
}

// HostMatches 判断 host 中是否有从标签边界开始的 needle 子串
func HostMatches(host, needle string) bool {
	if host == "" || needle == "" {
		return false
	}
	for offset := 0; offset < len(host); {
		idx := strings.Index(host[offset:], needle)
		if idx < 0 {
			return false
		}
		pos := offset + idx
		if pos == 0 || host[pos-1] == '.' {
			return true
		}
		offset = pos + 1
	}
	return false
}

func hostMatchesAny(host string, needles []string) bool {
	for _, needle := range needles {
		if HostMatches(host, needle) {
			return true
		}
	}
	return false
}

func firstMatch(haystack string, needles []string) string {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return needle
		}
	}
	return ""
}
