package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"typerace/internal/domain"
)

type GameConfig struct {
	MaxErrors       int `json:"max_errors"`
	MaxBackspaces   int `json:"max_backspaces"`
	StreakThreshold int `json:"streak_threshold"`
	AttackDelayMs   int `json:"attack_delay_ms"`
	// TierThresholdsSeconds are the upper bounds of tiers 1..N-1; past the last one is tier N.
	TierThresholdsSeconds []float64 `json:"tier_thresholds_seconds"`
	// SentencesPath optionally replaces the built-in corpus with a JSON file.
	SentencesPath string `json:"sentences_path"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding a bot to a solo human lobby.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
	// BotsEnabled turns bot auto fill on for Nakama matches.
	BotsEnabled bool `json:"bots_enabled"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// DefaultGameConfig returns the classic ruleset.
func DefaultGameConfig() *GameConfig {
	rules := domain.DefaultRules()
	c := &GameConfig{
		MaxErrors:               rules.MaxErrors,
		MaxBackspaces:           rules.MaxBackspaces,
		StreakThreshold:         rules.StreakThreshold,
		AttackDelayMs:           int(rules.AttackDelay / time.Millisecond),
		BotAutoFillDelaySeconds: 15,
		BotsEnabled:             true,
	}
	for _, d := range rules.TierThresholds {
		c.TierThresholdsSeconds = append(c.TierThresholdsSeconds, d.Seconds())
	}
	return c
}

// ParseGameConfig decodes data over the defaults, so omitted keys keep their default value.
func ParseGameConfig(data []byte) (*GameConfig, error) {
	c := DefaultGameConfig()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if c.MaxErrors < 0 || c.MaxBackspaces < 0 || c.StreakThreshold < 0 || c.AttackDelayMs < 0 {
		return nil, fmt.Errorf("game config: negative limits are not allowed")
	}
	for i := 1; i < len(c.TierThresholdsSeconds); i++ {
		if c.TierThresholdsSeconds[i] <= c.TierThresholdsSeconds[i-1] {
			return nil, fmt.Errorf("game config: tier thresholds must be increasing")
		}
	}
	return c, nil
}

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}
		c, err := ParseGameConfig(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or the defaults when none was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return DefaultGameConfig()
	}
	return cfg
}

// Rules converts the config into tracker rules.
func (c *GameConfig) Rules() domain.Rules {
	r := domain.Rules{
		MaxErrors:       c.MaxErrors,
		MaxBackspaces:   c.MaxBackspaces,
		StreakThreshold: c.StreakThreshold,
		AttackDelay:     time.Duration(c.AttackDelayMs) * time.Millisecond,
	}
	for _, s := range c.TierThresholdsSeconds {
		r.TierThresholds = append(r.TierThresholds, time.Duration(s*float64(time.Second)))
	}
	return r
}

// SentenceBank returns the configured corpus.
func (c *GameConfig) SentenceBank() (*domain.SentenceBank, error) {
	if c.SentencesPath == "" {
		return domain.DefaultSentenceBank(), nil
	}
	return domain.LoadSentenceBank(c.SentencesPath)
}

// BotAutoFillDelay is BotAutoFillDelaySeconds as a duration.
func (c *GameConfig) BotAutoFillDelay() time.Duration {
	return time.Duration(c.BotAutoFillDelaySeconds) * time.Second
}
