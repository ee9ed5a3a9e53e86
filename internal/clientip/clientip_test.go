package clientip

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"203.0.113.9":       "203.0.113.9",
		" 203.0.113.9 ":     "203.0.113.9",
		"203.0.113.9:1234":  "203.0.113.9",
		"[2001:db8::7]:443": "2001:db8::7",
		"[2001:db8::7]":     "2001:db8::7",
		"2001:0db8:0:0::7":  "2001:db8::7",
		"not-an-ip":         "",
		"":                  "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) want %q got %q", in, want, got)
		}
	}
}

func TestIsPublic(t *testing.T) {
	cases := map[string]bool{
		"8.8.8.8":     true,
		"127.0.0.1":   false,
		"10.1.2.3":    false,
		"192.168.0.1": false,
		"169.254.1.1": false,
		"::1":         false,
		"fe80::1":     false,
		"0.0.0.0":     false,
		"garbage":     false,
	}
	for ip, want := range cases {
		if got := IsPublic(ip); got != want {
			t.Fatalf("IsPublic(%s) want %v got %v", ip, want, got)
		}
	}
}

func TestAllowlistContains(t *testing.T) {
	list, err := NewAllowlist([]string{"127.0.0.1", "::1", "10.20.0.0/16", " "})
	if err != nil {
		t.Fatalf("build allowlist failed: %v", err)
	}
	cases := map[string]bool{
		"127.0.0.1:5000":   true,
		"[::1]:5000":       true,
		"10.20.3.4":        true,
		"10.21.0.1":        false,
		"198.51.100.1:443": false,
		"garbage":          false,
	}
	for addr, want := range cases {
		if got := list.Contains(addr); got != want {
			t.Fatalf("Contains(%q)=%v want %v", addr, got, want)
		}
	}

	var nilList *Allowlist
	if nilList.Contains("127.0.0.1") {
		t.Fatalf("nil allowlist should contain nothing")
	}
	if _, err := NewAllowlist([]string{"not-a-cidr"}); err == nil {
		t.Fatalf("expected error for bad entry")
	}
}
