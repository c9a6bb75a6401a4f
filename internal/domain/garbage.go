package domain

import (
	"math/rand"
	"strings"
)

// GarbageSuffix marks the scrambled word of a corrupted sentence.
const GarbageSuffix = "!?$"

// GarbageSentence builds an attack payload for a victim at tier. The base sentence is drawn
// one tier above the victim, capped at the bank's highest tier.
func GarbageSentence(bank *SentenceBank, rng *rand.Rand, tier int) (string, error) {
	source := tier + 1
	if source > bank.MaxTier() {
		source = bank.MaxTier()
	}
	base, err := bank.Pick(rng, source)
	if err != nil {
		return "", err
	}
	return CorruptSentence(rng, base), nil
}

// CorruptSentence replaces one random word with a permutation of its characters followed by
// GarbageSuffix. Word count is preserved.
func CorruptSentence(rng *rand.Rand, sentence string) string {
	words := strings.Fields(sentence)
	if len(words) == 0 {
		return sentence
	}
	i := rng.Intn(len(words))
	runes := []rune(words[i])
	scrambled := make([]rune, len(runes))
	for dst, src := range rng.Perm(len(runes)) {
		scrambled[dst] = runes[src]
	}
	words[i] = string(scrambled) + GarbageSuffix
	return strings.Join(words, " ")
}
