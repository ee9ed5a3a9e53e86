package detect

import (
	"context"
	"testing"
	"time"

	"github.com/clickpulse/internal/cache"
	"github.com/clickpulse/internal/constants"
)

const browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"

func browserSignals(ip string) Signals {
	return Signals{
		UserAgent:       browserUA,
		HeadersObserved: true,
		Accept:          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		AcceptLanguage:  "en-US,en;q=0.9",
		AcceptEncoding:  "gzip, deflate, br",
		IP:              ip,
	}
}

func setupClassifierTest(t *testing.T) (*Classifier, *cache.MemoryStore) {
	t.Helper()
	store := cache.NewMemoryStore(time.Hour)
	t.Cleanup(store.Close)
	return New(store, Options{}), store
}

func TestClassifyRules(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(s *Signals)
		wantClass string
		wantRule  string
	}{
		{name: "plain browser", mutate: func(s *Signals) {}, wantClass: constants.ClassHuman},
		{name: "googlebot ua", mutate: func(s *Signals) {
			s.UserAgent = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
		}, wantClass: constants.ClassBot, wantRule: "bot_user_agent"},
		{name: "curl", mutate: func(s *Signals) { s.UserAgent = "curl/8.4.0" }, wantClass: constants.ClassBot, wantRule: "bot_user_agent"},
		{name: "headless chrome", mutate: func(s *Signals) {
			s.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) HeadlessChrome/120.0 Safari/537.36"
		}, wantClass: constants.ClassBot, wantRule: "bot_user_agent"},
		{name: "empty ua", mutate: func(s *Signals) { s.UserAgent = "  " }, wantClass: constants.ClassBot, wantRule: "empty_user_agent"},
		{name: "json accept", mutate: func(s *Signals) { s.Accept = "application/json" }, wantClass: constants.ClassBot, wantRule: "no_html_accept"},
		{name: "missing accept", mutate: func(s *Signals) { s.Accept = "" }, wantClass: constants.ClassBot, wantRule: "no_html_accept"},
		{name: "missing language and encoding", mutate: func(s *Signals) {
			s.AcceptLanguage = ""
			s.AcceptEncoding = ""
		}, wantClass: constants.ClassBot, wantRule: "missing_browser_headers"},
		{name: "googlebot ip prefix", mutate: func(s *Signals) { s.IP = "66.249.66.1" }, wantClass: constants.ClassBot, wantRule: "bot_ip_prefix"},
		{name: "spam referrer", mutate: func(s *Signals) { s.Referrer = "http://semalt.com/crawler" }, wantClass: constants.ClassSuspicious, wantRule: "spam_referrer"},
		{name: "datacenter ip", mutate: func(s *Signals) { s.IP = "159.203.10.10" }, wantClass: constants.ClassSuspicious, wantRule: "datacenter_ip"},
		{name: "datacenter ip via trusted proxy", mutate: func(s *Signals) {
			s.IP = "159.203.10.10"
			s.ViaTrustedProxy = true
		}, wantClass: constants.ClassHuman},
		{name: "missing language scores 3 with generic accept", mutate: func(s *Signals) {
			s.AcceptLanguage = ""
			s.Accept = "*/*"
		}, wantClass: constants.ClassSuspicious, wantRule: "suspicion_score"},
		{name: "missing encoding alone stays human", mutate: func(s *Signals) { s.AcceptEncoding = "" }, wantClass: constants.ClassHuman},
		{name: "dnt without language", mutate: func(s *Signals) {
			s.AcceptLanguage = ""
			s.DNT = "1"
		}, wantClass: constants.ClassSuspicious, wantRule: "suspicion_score"},
		{name: "headers not observed skips header rules", mutate: func(s *Signals) {
			s.HeadersObserved = false
			s.Accept = ""
			s.AcceptLanguage = ""
			s.AcceptEncoding = ""
		}, wantClass: constants.ClassHuman},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := setupClassifierTest(t)
			s := browserSignals("203.0.113." + string(rune('1'+i%9)))
			tc.mutate(&s)
			got := c.Classify(context.Background(), s)
			if got.Class != tc.wantClass {
				t.Fatalf("class want %s got %s (rule=%s)", tc.wantClass, got.Class, got.Rule)
			}
			if tc.wantRule != "" && got.Rule != tc.wantRule {
				t.Fatalf("rule want %s got %s", tc.wantRule, got.Rule)
			}
		})
	}
}

func TestScore(t *testing.T) {
	s := Signals{HeadersObserved: true, DNT: "1"}
	if got := Score(s); got != 6 {
		t.Fatalf("score want 6 got %d", got)
	}
	if got := Score(browserSignals("203.0.113.1")); got != 0 {
		t.Fatalf("browser score want 0 got %d", got)
	}
	if got := Score(Signals{}); got != 0 {
		t.Fatalf("unobserved headers score want 0 got %d", got)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c, _ := setupClassifierTest(t)
	inputs := []Signals{
		browserSignals("203.0.113.50"),
		{UserAgent: "python-requests/2.31", HeadersObserved: true, Accept: "*/*", IP: "198.51.100.5"},
		{UserAgent: browserUA, HeadersObserved: true, Accept: "*/*", AcceptEncoding: "gzip", IP: "198.51.100.6"},
	}
	for _, in := range inputs {
		first := c.Classify(context.Background(), in)
		for i := 0; i < 5; i++ {
			if got := c.Classify(context.Background(), in); got != first {
				t.Fatalf("classification changed: first=%+v got=%+v", first, got)
			}
		}
	}
}

func TestRequestRateMarksSuspicious(t *testing.T) {
	c, _ := setupClassifierTest(t)
	fixed := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	s := browserSignals("203.0.113.77")
	for i := 1; i <= 10; i++ {
		if got := c.Classify(context.Background(), s); !got.IsHuman() {
			t.Fatalf("request %d should be human, got %+v", i, got)
		}
	}
	got := c.Classify(context.Background(), s)
	if got.Class != constants.ClassSuspicious || got.Rule != "ip_request_rate" {
		t.Fatalf("11th request should be rate suspicious, got %+v", got)
	}

	c.now = func() time.Time { return fixed.Add(time.Minute) }
	if got := c.Classify(context.Background(), s); !got.IsHuman() {
		t.Fatalf("new minute should reset, got %+v", got)
	}
}

func TestIPChecksAreCached(t *testing.T) {
	c, store := setupClassifierTest(t)
	ctx := context.Background()

	s := browserSignals("159.203.1.1")
	if got := c.Classify(ctx, s); got.Rule != "datacenter_ip" {
		t.Fatalf("expected datacenter verdict, got %+v", got)
	}
	raw, found, _ := store.Get(ctx, constants.CacheKeyDatacenterIP+"159.203.1.1")
	if !found || raw != "1" {
		t.Fatalf("expected cached datacenter verdict, got %q found=%v", raw, found)
	}
	raw, found, _ = store.Get(ctx, constants.CacheKeyBotIP+"159.203.1.1")
	if !found || raw != "0" {
		t.Fatalf("expected cached negative bot ip verdict, got %q found=%v", raw, found)
	}

	// 缓存值优先于实时计算
	_ = store.Set(ctx, constants.CacheKeyBotIP+"203.0.113.200", "1", time.Hour)
	if got := c.Classify(ctx, browserSignals("203.0.113.200")); got.Rule != "bot_ip_prefix" {
		t.Fatalf("expected cached bot ip verdict to apply, got %+v", got)
	}
}

func TestExtraConfiguredLists(t *testing.T) {
	store := cache.NewMemoryStore(time.Hour)
	t.Cleanup(store.Close)
	c := New(store, Options{
		ExtraSignatures:      []string{"MyInternalProbe"},
		ExtraSpamDomains:     []string{"spam.example"},
		ExtraDatacenterCIDRs: []string{"192.0.2.0/24", "bogus"},
	})

	s := browserSignals("203.0.113.9")
	s.UserAgent = browserUA + " myinternalprobe/1.0"
	if got := c.Classify(context.Background(), s); got.Rule != "bot_user_agent" {
		t.Fatalf("expected extra signature to match, got %+v", got)
	}

	s = browserSignals("203.0.113.9")
	s.Referrer = "https://www.spam.example/x"
	if got := c.Classify(context.Background(), s); got.Rule != "spam_referrer" {
		t.Fatalf("expected extra spam domain to match, got %+v", got)
	}

	if got := c.Classify(context.Background(), browserSignals("192.0.2.44")); got.Rule != "datacenter_ip" {
		t.Fatalf("expected extra datacenter range to match, got %+v", got)
	}
}
