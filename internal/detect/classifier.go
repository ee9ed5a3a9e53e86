// Package detect 基于规则识别机器人与可疑访问。
package detect

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/clickpulse/internal/cache"
	"github.com/clickpulse/internal/constants"
	"github.com/clickpulse/internal/logger"
	"github.com/clickpulse/internal/referrer"
)

// Signals 单次访问的分类输入
type Signals struct {
	UserAgent string
	// HeadersObserved 为 false 时表示调用方未提供协商头，跳过所有头部规则
	HeadersObserved bool
	Accept          string
	AcceptLanguage  string
	AcceptEncoding  string
	DNT             string
	Referrer        string
	IP              string
	ViaTrustedProxy bool
}

// Verdict 分类结果
type Verdict struct {
	Class  string
	Status int
	Rule   string
}

// IsHuman 是否判定为真人
func (v Verdict) IsHuman() bool {
	return v.Status == constants.ViewStatusHuman
}

// Rule 有序规则，命中即返回 Class
type Rule struct {
	Name  string
	Class string
	Match func(ctx context.Context, s Signals) bool
}

// Options 分类器参数
type Options struct {
	SuspicionThreshold   int
	MaxRequestsPerMinute int
	IPCacheTTL           time.Duration
	ExtraSignatures      []string
	ExtraSpamDomains     []string
	ExtraBotIPPrefixes   []string
	ExtraDatacenterCIDRs []string
}

// Classifier 规则分类器，规则按顺序求值，第一个命中的规则决定结果
type Classifier struct {
	store       cache.Store
	opts        Options
	signatures  []string
	spamDomains []string
	botPrefixes []string
	datacenters []*net.IPNet
	rules       []Rule
	now         func() time.Time
}

// New 创建分类器，store 为 nil 时不缓存 IP 判定且不做频率检查
func New(store cache.Store, opts Options) *Classifier {
	if opts.SuspicionThreshold <= 0 {
		opts.SuspicionThreshold = 3
	}
	if opts.MaxRequestsPerMinute <= 0 {
		opts.MaxRequestsPerMinute = 10
	}
	if opts.IPCacheTTL <= 0 {
		opts.IPCacheTTL = time.Hour
	}
	c := &Classifier{
		store:       store,
		opts:        opts,
		signatures:  mergeLower(botSignatures, opts.ExtraSignatures),
		spamDomains: mergeLower(spamReferrerDomains, opts.ExtraSpamDomains),
		botPrefixes: mergeLower(botIPPrefixes, opts.ExtraBotIPPrefixes),
		datacenters: parseRanges(append(append([]string{}, datacenterRanges...), opts.ExtraDatacenterCIDRs...)),
		now:         time.Now,
	}
	c.rules = []Rule{
		{Name: "empty_user_agent", Class: constants.ClassBot, Match: c.emptyUserAgent},
		{Name: "bot_user_agent", Class: constants.ClassBot, Match: c.botUserAgent},
		{Name: "no_html_accept", Class: constants.ClassBot, Match: c.noHTMLAccept},
		{Name: "missing_browser_headers", Class: constants.ClassBot, Match: c.missingBrowserHeaders},
		{Name: "bot_ip_prefix", Class: constants.ClassBot, Match: c.botIP},
		{Name: "spam_referrer", Class: constants.ClassSuspicious, Match: c.spamReferrer},
		{Name: "datacenter_ip", Class: constants.ClassSuspicious, Match: c.datacenterIP},
		{Name: "suspicion_score", Class: constants.ClassSuspicious, Match: c.scoreExceeded},
		{Name: "ip_request_rate", Class: constants.ClassSuspicious, Match: c.requestRateExceeded},
	}
	return c
}

// Rules 当前规则列表
func (c *Classifier) Rules() []Rule {
	return c.rules
}

// Classify 对一次访问做分类
func (c *Classifier) Classify(ctx context.Context, s Signals) Verdict {
	for _, rule := range c.rules {
		if rule.Match(ctx, s) {
			return verdictFor(rule.Class, rule.Name)
		}
	}
	return verdictFor(constants.ClassHuman, "")
}

// Score 计算可疑分值
func Score(s Signals) int {
	if !s.HeadersObserved {
		return 0
	}
	score := 0
	if strings.TrimSpace(s.AcceptLanguage) == "" {
		score += 2
	}
	if strings.TrimSpace(s.AcceptEncoding) == "" {
		score += 2
	}
	if strings.TrimSpace(s.DNT) != "" && strings.TrimSpace(s.AcceptLanguage) == "" {
		score++
	}
	accept := strings.TrimSpace(s.Accept)
	if accept == "" || accept == "*/*" {
		score++
	}
	return score
}

func verdictFor(class, rule string) Verdict {
	switch class {
	case constants.ClassBot:
		return Verdict{Class: class, Status: constants.ViewStatusBot, Rule: rule}
	case constants.ClassSuspicious:
		return Verdict{Class: class, Status: constants.ViewStatusSuspicious, Rule: rule}
	default:
		return Verdict{Class: constants.ClassHuman, Status: constants.ViewStatusHuman, Rule: rule}
	}
}

func (c *Classifier) emptyUserAgent(_ context.Context, s Signals) bool {
	return strings.TrimSpace(s.UserAgent) == ""
}

func (c *Classifier) botUserAgent(_ context.Context, s Signals) bool {
	return containsAny(strings.ToLower(s.UserAgent), c.signatures)
}

func (c *Classifier) noHTMLAccept(_ context.Context, s Signals) bool {
	if !s.HeadersObserved {
		return false
	}
	accept := strings.ToLower(strings.TrimSpace(s.Accept))
	if accept == "" {
		return true
	}
	return !strings.Contains(accept, "text/html") &&
		!strings.Contains(accept, "application/xhtml") &&
		!strings.Contains(accept, "*/*")
}

func (c *Classifier) missingBrowserHeaders(_ context.Context, s Signals) bool {
	if !s.HeadersObserved {
		return false
	}
	return strings.TrimSpace(s.AcceptLanguage) == "" && strings.TrimSpace(s.AcceptEncoding) == ""
}

func (c *Classifier) botIP(ctx context.Context, s Signals) bool {
	ip := strings.ToLower(strings.TrimSpace(s.IP))
	if ip == "" {
		return false
	}
	return c.cachedIPCheck(ctx, constants.CacheKeyBotIP+ip, func() bool {
		for _, prefix := range c.botPrefixes {
			if strings.HasPrefix(ip, prefix) {
				return true
			}
		}
		return false
	})
}

func (c *Classifier) spamReferrer(_ context.Context, s Signals) bool {
	host := referrer.Host(s.Referrer)
	if host == "" {
		return false
	}
	for _, domain := range c.spamDomains {
		if referrer.HostMatches(host, domain) {
			return true
		}
	}
	return false
}

func (c *Classifier) datacenterIP(ctx context.Context, s Signals) bool {
	if s.ViaTrustedProxy {
		return false
	}
	parsed := net.ParseIP(strings.TrimSpace(s.IP))
	if parsed == nil {
		return false
	}
	return c.cachedIPCheck(ctx, constants.CacheKeyDatacenterIP+parsed.String(), func() bool {
		for _, n := range c.datacenters {
			if n.Contains(parsed) {
				return true
			}
		}
		return false
	})
}

func (c *Classifier) scoreExceeded(_ context.Context, s Signals) bool {
	return Score(s) >= c.opts.SuspicionThreshold
}

func (c *Classifier) requestRateExceeded(ctx context.Context, s Signals) bool {
	ip := strings.TrimSpace(s.IP)
	if c.store == nil || ip == "" {
		return false
	}
	minute := c.now().Unix() / 60
	key := constants.CacheKeyIPMinute + ip + ":" + strconv.FormatInt(minute, 10)
	count, err := c.store.Incr(ctx, key, 2*time.Minute)
	if err != nil {
		logger.Warnw("detect_ip_rate_counter_failed", "ip", ip, "error", err)
		return false
	}
	return count > int64(c.opts.MaxRequestsPerMinute)
}

// cachedIPCheck 缓存 IP 判定结果，缓存异常时直接计算
func (c *Classifier) cachedIPCheck(ctx context.Context, key string, eval func() bool) bool {
	if c.store == nil {
		return eval()
	}
	if raw, found, err := c.store.Get(ctx, key); err == nil && found {
		return raw == "1"
	} else if err != nil {
		logger.Debugw("detect_ip_cache_get_failed", "key", key, "error", err)
	}
	result := eval()
	value := "0"
	if result {
		value = "1"
	}
	if err := c.store.Set(ctx, key, value, c.opts.IPCacheTTL); err != nil {
		logger.Debugw("detect_ip_cache_set_failed", "key", key, "error", err)
	}
	return result
}

func containsAny(haystack string, needles []string) bool {
	if haystack == "" {
		return false
	}
	for _, needle := range needles {
		if needle != "" && strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

func mergeLower(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	for _, item := range append(append([]string{}, base...), extra...) {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseRanges(raw []string) []*net.IPNet {
	out := make([]*net.IPNet, 0, len(raw))
	for _, item := range raw {
		_, n, err := net.ParseCIDR(strings.TrimSpace(item))
		if err != nil {
			logger.Warnw("detect_datacenter_range_invalid", "range", item, "error", err)
			continue
		}
		out = append(out, n)
	}
	return out
}
