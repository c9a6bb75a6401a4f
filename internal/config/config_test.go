package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"typerace/internal/domain"
)

func TestParseGameConfigKeepsDefaults(t *testing.T) {
	c, err := ParseGameConfig([]byte(`{"max_errors": 8, "attack_delay_ms": 2000}`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	r := c.Rules()
	if r.MaxErrors != 8 || r.MaxBackspaces != 5 || r.StreakThreshold != 3 {
		t.Fatalf("rules = %+v, want errors 8 with default backspaces and streak", r)
	}
	if r.AttackDelay != 2*time.Second {
		t.Fatalf("attack delay = %v, want 2s", r.AttackDelay)
	}
	if len(r.TierThresholds) != 3 || r.TierThresholds[2] != 90*time.Second {
		t.Fatalf("thresholds = %v, want defaults", r.TierThresholds)
	}
}

func TestParseGameConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"bad json", `{`},
		{"negative", `{"max_backspaces": -1}`},
		{"unordered tiers", `{"tier_thresholds_seconds": [30, 20]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseGameConfig([]byte(tt.in)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseGameConfigAllowsZeroBudgets(t *testing.T) {
	c, err := ParseGameConfig([]byte(`{"max_errors": 0, "max_backspaces": 0}`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	r := c.Rules()
	if r.MaxErrors != 0 || r.MaxBackspaces != 0 || r.IsZero() {
		t.Fatalf("rules = %+v, want zero budgets with the other defaults", r)
	}
}

func TestDefaultRulesMatchDomain(t *testing.T) {
	got := DefaultGameConfig().Rules()
	want := domain.DefaultRules()
	if got.MaxErrors != want.MaxErrors || got.MaxBackspaces != want.MaxBackspaces ||
		got.StreakThreshold != want.StreakThreshold || got.AttackDelay != want.AttackDelay {
		t.Fatalf("rules = %+v, want %+v", got, want)
	}
	for i := range want.TierThresholds {
		if got.TierThresholds[i] != want.TierThresholds[i] {
			t.Fatalf("threshold %d = %v, want %v", i, got.TierThresholds[i], want.TierThresholds[i])
		}
	}
}

func TestSentenceBankFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentences.json")
	if err := os.WriteFile(path, []byte(`{"1": ["one"], "2": ["two words"]}`), 0o600); err != nil {
		t.Fatalf("write error: %v", err)
	}
	c := DefaultGameConfig()
	c.SentencesPath = path
	bank, err := c.SentenceBank()
	if err != nil {
		t.Fatalf("bank error: %v", err)
	}
	if bank.MaxTier() != 2 {
		t.Fatalf("max tier = %d, want 2", bank.MaxTier())
	}
}

func TestLoadGameConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.json")
	if err := os.WriteFile(path, []byte(`{"bot_auto_fill_delay_seconds": 3}`), 0o600); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if err := LoadGameConfig(path); err != nil {
		t.Fatalf("load error: %v", err)
	}
	if got := GetGameConfig().BotAutoFillDelay(); got != 3*time.Second {
		t.Fatalf("bot delay = %v, want 3s", got)
	}
}

func TestServerConfigFromEnv(t *testing.T) {
	t.Setenv("TYPERACE_ADDR", ":9999")
	t.Setenv("TYPERACE_SEND_BUFFER", "8")
	t.Setenv("TYPERACE_WRITE_TIMEOUT", "")
	t.Setenv("TYPERACE_PONG_TIMEOUT", "")
	t.Setenv("TYPERACE_ROOM_IDLE_TTL", "")

	c, err := ServerConfigFromEnv()
	if err != nil {
		t.Fatalf("env error: %v", err)
	}
	if c.Addr != ":9999" || c.SendBuffer != 8 || c.WriteTimeout != 5*time.Second || c.RoomIdleTTL != 5*time.Minute {
		t.Fatalf("config = %+v", c)
	}

	t.Setenv("TYPERACE_ROOM_IDLE_TTL", "30s")
	if c, _ = ServerConfigFromEnv(); c.RoomIdleTTL != 30*time.Second {
		t.Fatalf("room idle ttl = %v, want 30s", c.RoomIdleTTL)
	}

	t.Setenv("TYPERACE_SEND_BUFFER", "zero")
	if _, err := ServerConfigFromEnv(); err == nil {
		t.Fatalf("expected error for bad send buffer")
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("TYPERACE_TEST_KEY=from-file\n"), 0o600); err != nil {
		t.Fatalf("write error: %v", err)
	}
	t.Setenv("TYPERACE_TEST_KEY", "")
	os.Unsetenv("TYPERACE_TEST_KEY")

	if err := LoadEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("load env error: %v", err)
	}
	if got := os.Getenv("TYPERACE_TEST_KEY"); got != "from-file" {
		t.Fatalf("TYPERACE_TEST_KEY = %q, want from-file", got)
	}
}
