package domain

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strconv"
)

// SentenceBank is a static corpus of sentences keyed by difficulty tier (1..N).
type SentenceBank struct {
	tiers map[int][]string
	max   int
}

var defaultSentences = map[int][]string{
	1: {
		"The sun is bright today",
		"She loves to read books",
		"Cats and dogs are pets",
		"I have a red apple",
		"Run fast and jump high",
		"The dog barks loudly",
		"Fish swim in water",
		"They play soccer outside",
	},
	2: {
		"Quickly typing improves your speed and accuracy over time",
		"The lazy brown fox slept under the old oak tree",
		"Programming requires logic, patience, and creativity",
		"She traveled to Paris last summer and visited the Louvre",
		"The scientist carefully recorded the experimental results",
		"The quick brown fox jumps over the lazy fox",
		"He finished his homework before playing video games",
		"Reading books help expand your knowledge and imagination",
	},
	3: {
		"Exponential growth demands scalable infrastructure",
		"The enigmatic philosopher pondered existential quandaries under starlight",
		"JavaScript's event loop handles asynchronous callbacks non-blockingly",
		"Quantum entanglement defies classical physics' locality principle",
		"The relentless entrepreneur pivoted her startup toward disruptive innovation",
		"The entrepreneur launched a disruptive blockchain startup",
		"Neural networks require massive datasets for training",
		"Excessive screen time may impair cognitive development in children",
		"Her thesis analyzed postmodern literature's cultural influence",
	},
	4: {
		"The password is p@ssw0rd$ecur1ty!",
		"React's useState() Hook manages component state",
		"C++ supports OOP, templates, and lambda expressions",
	},
}

// DefaultSentenceBank returns the built-in four tier corpus.
func DefaultSentenceBank() *SentenceBank {
	bank, err := NewSentenceBank(defaultSentences)
	if err != nil {
		panic(err)
	}
	return bank
}

// NewSentenceBank validates that tiers 1..N are all populated and copies the corpus.
func NewSentenceBank(tiers map[int][]string) (*SentenceBank, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("sentence bank is empty")
	}
	bank := &SentenceBank{tiers: make(map[int][]string, len(tiers))}
	for tier := 1; tier <= len(tiers); tier++ {
		sentences, ok := tiers[tier]
		if !ok || len(sentences) == 0 {
			return nil, fmt.Errorf("sentence bank tier %d: %w", tier, ErrInvalidTier)
		}
		bank.tiers[tier] = append([]string(nil), sentences...)
	}
	bank.max = len(tiers)
	return bank, nil
}

// LoadSentenceBank reads a JSON corpus of the form {"1": ["..."], "2": ["..."]}.
func LoadSentenceBank(path string) (*SentenceBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sentence bank: %w", err)
	}

	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sentence bank: %w", err)
	}

	tiers := make(map[int][]string, len(raw))
	for key, sentences := range raw {
		tier, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("sentence bank tier %q is not a number", key)
		}
		tiers[tier] = sentences
	}
	return NewSentenceBank(tiers)
}

// MaxTier is the highest populated tier.
func (b *SentenceBank) MaxTier() int {
	return b.max
}

// Pick returns a uniformly random sentence from the tier.
func (b *SentenceBank) Pick(rng *rand.Rand, tier int) (string, error) {
	sentences := b.tiers[tier]
	if len(sentences) == 0 {
		return "", ErrInvalidTier
	}
	return sentences[rng.Intn(len(sentences))], nil
}
