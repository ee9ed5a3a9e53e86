package repository

import "testing"

func TestDBDialectNameDefaultsToSQLite(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Fatalf("dialect want sqlite got %s", got)
	}
}

func TestSupportsRowLock(t *testing.T) {
	cases := map[string]bool{
		"postgres":   true,
		"PostgreSQL": true,
		"mysql":      true,
		"sqlite":     false,
		"":           false,
	}
	for dialect, want := range cases {
		if got := supportsRowLock(dialect); got != want {
			t.Fatalf("supportsRowLock(%q) want %v got %v", dialect, want, got)
		}
	}
}
