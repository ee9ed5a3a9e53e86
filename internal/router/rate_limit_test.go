package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type fakeWindowCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (f *fakeWindowCounter) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, time.Duration, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts == nil {
		f.counts = make(map[string]int64)
	}
	f.counts[key]++
	return f.counts[key], ttl, nil
}

func newRateLimitedEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doPing(r *gin.Engine, remote string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remote
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddlewareWithoutCounter(t *testing.T) {
	r := newRateLimitedEngine(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	for i := 0; i < 3; i++ {
		if w := doPing(r, "198.51.100.1:1000"); !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("expected handler response body, got %s", w.Body.String())
		}
	}
}

func TestRateLimitMiddlewareBlocksOverLimit(t *testing.T) {
	counter := &fakeWindowCounter{}
	r := newRateLimitedEngine(RateLimitMiddleware(counter, RateLimitRule{Prefix: "ingest", WindowSeconds: 60, MaxRequests: 2}, KeyByIP))

	for i := 0; i < 2; i++ {
		if w := doPing(r, "198.51.100.1:1000"); !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("request %d should pass, got %s", i, w.Body.String())
		}
	}
	w := doPing(r, "198.51.100.1:1000")
	if !strings.Contains(w.Body.String(), `"status_code":429`) {
		t.Fatalf("third request should be limited, got %s", w.Body.String())
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Fatalf("unexpected retry-after: %s", w.Header().Get("Retry-After"))
	}
	if _, ok := counter.counts["ingest:198.51.100.1"]; !ok {
		t.Fatalf("expected prefixed key, got %v", counter.counts)
	}
	if w := doPing(r, "198.51.100.2:1000"); !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("other ip should pass, got %s", w.Body.String())
	}
}

func TestRateLimitMiddlewareFailsOpen(t *testing.T) {
	counter := &fakeWindowCounter{err: errors.New("redis down")}
	r := newRateLimitedEngine(RateLimitMiddleware(counter, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	for i := 0; i < 3; i++ {
		if w := doPing(r, "198.51.100.1:1000"); !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("counter failure should not block, got %s", w.Body.String())
		}
	}
}

func TestLocalRateLimiterBurst(t *testing.T) {
	limiter := NewLocalRateLimiter(1, 2)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("a") || !limiter.Allow("a") {
		t.Fatalf("burst should be allowed")
	}
	if limiter.Allow("a") {
		t.Fatalf("third immediate request should be limited")
	}
	if !limiter.Allow("b") {
		t.Fatalf("other key has its own bucket")
	}
	now = now.Add(time.Second)
	if !limiter.Allow("a") {
		t.Fatalf("token should refill after one second")
	}
}

func TestLocalRateLimiterSweepsIdleVisitors(t *testing.T) {
	limiter := NewLocalRateLimiter(1, 1)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.Allow("a")
	limiter.Allow("b")
	now = now.Add(2 * localLimiterIdleTTL)
	limiter.Allow("c")
	if limiter.Len() != 1 {
		t.Fatalf("idle visitors should be swept, len=%d", limiter.Len())
	}
}

func TestLocalRateLimitMiddleware(t *testing.T) {
	r := newRateLimitedEngine(LocalRateLimitMiddleware(NewLocalRateLimiter(0.001, 1), KeyByIP))
	if w := doPing(r, "198.51.100.1:1000"); !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("first request should pass, got %s", w.Body.String())
	}
	if w := doPing(r, "198.51.100.1:1000"); !strings.Contains(w.Body.String(), `"status_code":429`) {
		t.Fatalf("second request should be limited, got %s", w.Body.String())
	}
	var nilLimiter *LocalRateLimiter
	if !nilLimiter.Allow("x") {
		t.Fatalf("nil limiter should allow")
	}
}
