package domain

import (
	"math/rand"
	"slices"
	"strings"
	"testing"
)

func TestCorruptSentenceAltersExactlyOneWord(t *testing.T) {
	inputs := []string{"a", "I", "ab", "Run fast and jump high", "C++ supports OOP, templates, and lambda expressions"}
	for tier := 1; tier <= 4; tier++ {
		inputs = append(inputs, defaultSentences[tier]...)
	}

	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		for _, in := range inputs {
			out := CorruptSentence(rng, in)
			before := strings.Fields(in)
			after := strings.Fields(out)
			if len(after) != len(before) {
				t.Fatalf("word count = %d, want %d (%q -> %q)", len(after), len(before), in, out)
			}

			altered := 0
			for i := range before {
				if before[i] == after[i] {
					continue
				}
				altered++
				if !strings.HasSuffix(after[i], GarbageSuffix) {
					t.Fatalf("altered word %q lacks suffix %q", after[i], GarbageSuffix)
				}
				got := []rune(strings.TrimSuffix(after[i], GarbageSuffix))
				want := []rune(before[i])
				slices.Sort(got)
				slices.Sort(want)
				if string(got) != string(want) {
					t.Fatalf("altered word %q is not a permutation of %q", after[i], before[i])
				}
			}
			if altered != 1 {
				t.Fatalf("altered words = %d, want 1 (%q -> %q)", altered, in, out)
			}
		}
	}
}

func TestCorruptSentenceWithoutWords(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := CorruptSentence(rng, "   "); got != "   " {
		t.Fatalf("CorruptSentence(blank) = %q, want input unchanged", got)
	}
}

func TestGarbageSentenceDrawsFromNextTier(t *testing.T) {
	bank, err := NewSentenceBank(map[int][]string{
		1: {"one"},
		2: {"two words"},
		3: {"three little words"},
	})
	if err != nil {
		t.Fatalf("NewSentenceBank error: %v", err)
	}
	rng := rand.New(rand.NewSource(3))

	tests := []struct {
		tier      int
		wantWords int
	}{
		{tier: 1, wantWords: 2},
		{tier: 2, wantWords: 3},
		{tier: 3, wantWords: 3}, // capped at the highest tier
	}
	for _, tt := range tests {
		out, err := GarbageSentence(bank, rng, tt.tier)
		if err != nil {
			t.Fatalf("GarbageSentence(%d) error: %v", tt.tier, err)
		}
		if got := len(strings.Fields(out)); got != tt.wantWords {
			t.Fatalf("GarbageSentence(%d) = %q, words = %d, want %d", tt.tier, out, got, tt.wantWords)
		}
		if !strings.Contains(out, GarbageSuffix) {
			t.Fatalf("GarbageSentence(%d) = %q, missing suffix", tt.tier, out)
		}
	}
}
