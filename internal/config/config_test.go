package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadFromDefaults(t *testing.T) {
	v := viper.New()
	v.AddConfigPath(t.TempDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("load defaults failed: %v", err)
	}
	if cfg.Tracking.DedupTTL() != 30*time.Minute {
		t.Fatalf("unexpected dedup ttl: %s", cfg.Tracking.DedupTTL())
	}
	if cfg.Tracking.CooldownTTL() != 5*time.Minute {
		t.Fatalf("unexpected cooldown ttl: %s", cfg.Tracking.CooldownTTL())
	}
	if cfg.Tracking.ProxyIPHeader != "CF-Connecting-IP" {
		t.Fatalf("unexpected proxy header: %s", cfg.Tracking.ProxyIPHeader)
	}
	if len(cfg.Tracking.TrustedProxies) != len(DefaultTrustedProxies) {
		t.Fatalf("expected default trusted proxies, got %d", len(cfg.Tracking.TrustedProxies))
	}
	if len(cfg.Tracking.TrustedForwarders) != 2 {
		t.Fatalf("expected loopback forwarders, got %v", cfg.Tracking.TrustedForwarders)
	}
	if cfg.Detect.SuspicionThreshold != 3 || cfg.Detect.MaxRequestsPerMinute != 10 {
		t.Fatalf("unexpected detect defaults: %+v", cfg.Detect)
	}
	if cfg.Geo.MaxCallsPerMinute != 40 || cfg.Geo.Timeout() != 3*time.Second {
		t.Fatalf("unexpected geo defaults: %+v", cfg.Geo)
	}
	if cfg.Geo.CacheTTL() != 30*24*time.Hour || cfg.Geo.FailureTTL() != time.Hour {
		t.Fatalf("unexpected geo ttl defaults")
	}
	if cfg.Tracking.Location() != time.UTC {
		t.Fatalf("expected utc location")
	}
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
tracking:
  timezone: Asia/Shanghai
  dedup_ttl_seconds: 60
geo:
  providers: [ip-api]
  endpoints:
    ip-api:
      base_url: http://127.0.0.1:9999
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), content, 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Tracking.DedupTTL() != time.Minute {
		t.Fatalf("unexpected dedup ttl: %s", cfg.Tracking.DedupTTL())
	}
	if cfg.Tracking.Location().String() != "Asia/Shanghai" {
		t.Fatalf("unexpected location: %s", cfg.Tracking.Location())
	}
	if len(cfg.Geo.Providers) != 1 || cfg.Geo.Providers[0] != "ip-api" {
		t.Fatalf("unexpected providers: %v", cfg.Geo.Providers)
	}
	if cfg.Geo.Endpoints["ip-api"].BaseURL != "http://127.0.0.1:9999" {
		t.Fatalf("unexpected endpoint: %+v", cfg.Geo.Endpoints)
	}
}

func TestTrackingLocationFallsBackOnInvalidZone(t *testing.T) {
	cfg := TrackingConfig{Timezone: "Not/AZone"}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected utc fallback")
	}
}
