package domain

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSentenceBankPopulatesAllTiers(t *testing.T) {
	bank := DefaultSentenceBank()
	if bank.MaxTier() != 4 {
		t.Fatalf("MaxTier() = %d, want 4", bank.MaxTier())
	}
	rng := rand.New(rand.NewSource(1))
	for tier := 1; tier <= bank.MaxTier(); tier++ {
		sentence, err := bank.Pick(rng, tier)
		if err != nil {
			t.Fatalf("Pick(%d) error: %v", tier, err)
		}
		if sentence == "" {
			t.Fatalf("Pick(%d) returned empty sentence", tier)
		}
	}
}

func TestPickUnknownTier(t *testing.T) {
	bank := DefaultSentenceBank()
	rng := rand.New(rand.NewSource(1))
	for _, tier := range []int{0, 5, -1} {
		_, err := bank.Pick(rng, tier)
		if !errors.Is(err, ErrInvalidTier) {
			t.Fatalf("Pick(%d) err = %v, want ErrInvalidTier", tier, err)
		}
		if KindOf(err) != KindInvalidTier {
			t.Fatalf("KindOf = %v, want %v", KindOf(err), KindInvalidTier)
		}
	}
}

func TestPickIsUniformOverTier(t *testing.T) {
	bank, err := NewSentenceBank(map[int][]string{1: {"a b", "c d"}})
	if err != nil {
		t.Fatalf("NewSentenceBank error: %v", err)
	}
	rng := rand.New(rand.NewSource(7))
	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		s, _ := bank.Pick(rng, 1)
		counts[s]++
	}
	for _, s := range []string{"a b", "c d"} {
		if counts[s] < 800 || counts[s] > 1200 {
			t.Fatalf("sentence %q picked %d times out of 2000", s, counts[s])
		}
	}
}

func TestNewSentenceBankRejectsGaps(t *testing.T) {
	tests := []struct {
		name  string
		tiers map[int][]string
	}{
		{name: "empty", tiers: map[int][]string{}},
		{name: "missing tier 2", tiers: map[int][]string{1: {"a"}, 3: {"b"}}},
		{name: "empty tier", tiers: map[int][]string{1: {"a"}, 2: {}}},
		{name: "starts at 2", tiers: map[int][]string{2: {"a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSentenceBank(tt.tiers); err == nil {
				t.Fatalf("expected error for %v", tt.tiers)
			}
		})
	}
}

func TestLoadSentenceBank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentences.json")
	if err := os.WriteFile(path, []byte(`{"1": ["one two"], "2": ["three four five"]}`), 0o600); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	bank, err := LoadSentenceBank(path)
	if err != nil {
		t.Fatalf("LoadSentenceBank error: %v", err)
	}
	if bank.MaxTier() != 2 {
		t.Fatalf("MaxTier() = %d, want 2", bank.MaxTier())
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"easy": ["x"]}`), 0o600); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	if _, err := LoadSentenceBank(bad); err == nil {
		t.Fatalf("expected error for non-numeric tier key")
	}
	if _, err := LoadSentenceBank(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
