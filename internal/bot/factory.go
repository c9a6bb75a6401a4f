package bot

import (
	"fmt"
	"math/rand"
)

// TuningFor returns the tuning of a difficulty level.
func TuningFor(difficulty string) (Tuning, error) {
	if difficulty == "" {
		difficulty = DifficultyMedium
	}
	t, ok := tunings[difficulty]
	if !ok {
		return Tuning{}, fmt.Errorf("unknown bot difficulty: %q", difficulty)
	}
	return t, nil
}

// NewAgent creates a typing agent for the identity.
func NewAgent(identity BotIdentity, rng *rand.Rand) (*Agent, error) {
	tuning, err := TuningFor(identity.Difficulty)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("bot %s: rng is nil", identity.UserID)
	}
	name := identity.DisplayName
	if name == "" {
		name = identity.Username
	}
	return &Agent{ID: identity.UserID, Name: name, Tuning: tuning, rng: rng}, nil
}
