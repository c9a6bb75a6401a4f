package domain

import (
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"
)

// Rules holds the tunable thresholds of a race.
type Rules struct {
	MaxErrors       int
	MaxBackspaces   int
	StreakThreshold int // a streak strictly above this triggers an attack
	AttackDelay     time.Duration
	TierThresholds  []time.Duration
	MaxTier         int // highest tier the sentence bank serves; 0 means uncapped
}

// IsZero reports whether no rule was set.
func (r Rules) IsZero() bool {
	return r.MaxErrors == 0 && r.MaxBackspaces == 0 && r.StreakThreshold == 0 &&
		r.AttackDelay == 0 && len(r.TierThresholds) == 0 && r.MaxTier == 0
}

// DefaultRules returns the classic ruleset: 5 errors, 5 backspaces, attack after a streak of 4.
func DefaultRules() Rules {
	return Rules{
		MaxErrors:       5,
		MaxBackspaces:   5,
		StreakThreshold: 3,
		AttackDelay:     1500 * time.Millisecond,
		TierThresholds:  DefaultTierThresholds,
	}
}

// Tracker is one player's typing state machine. It performs no I/O and is owned by a
// single session.
type Tracker struct {
	PlayerID string

	Errors        int
	Backspaces    int
	MaxErrors     int
	MaxBackspaces int

	Tier          int
	Sentence      string // empty means no sentence assigned
	PreviousInput string
	Streak        int

	IncomingAttack bool
	AttackAt       time.Time

	Eliminated          bool
	EliminationReported bool
	Ready               bool

	StartedAt time.Time // zero until the race starts

	rules Rules
}

// Assignment is the answer to a sentence request.
type Assignment struct {
	Sentence   string
	Tier       int
	Garbage    bool
	Pending    bool          // an attack is scheduled but not yet due; ask again later
	RetryAfter time.Duration // remaining wait when Pending
}

// Outcome reports the effect of one submission.
type Outcome struct {
	Correct         bool
	Completed       bool
	Errors          int
	Backspaces      int
	Eliminated      bool
	Tier            int
	Streak          int
	AttackTriggered bool
}

// NewTracker builds a tracker in the pre-game state.
func NewTracker(playerID string, rules Rules) *Tracker {
	return &Tracker{
		PlayerID:      playerID,
		MaxErrors:     rules.MaxErrors,
		MaxBackspaces: rules.MaxBackspaces,
		Tier:          1,
		rules:         rules,
	}
}

// Start stamps the race start; difficulty accrues from here.
func (t *Tracker) Start(now time.Time) {
	t.StartedAt = now
	t.Tier = 1
}

func (t *Tracker) updateTier(now time.Time) int {
	if t.StartedAt.IsZero() {
		t.Tier = 1
		return t.Tier
	}
	t.Tier = TierFor(now.Sub(t.StartedAt), t.rules.TierThresholds)
	if t.rules.MaxTier > 0 {
		t.Tier = min(t.Tier, t.rules.MaxTier)
	}
	return t.Tier
}

// ScheduleAttack arms a garbage attack that becomes due after the configured delay.
func (t *Tracker) ScheduleAttack(now time.Time) {
	t.IncomingAttack = true
	t.AttackAt = now.Add(t.rules.AttackDelay)
}

// NextSentence returns the sentence the player should type. A due attack replaces the current
// sentence with a corrupted one; an attack that is not yet due yields a Pending assignment.
func (t *Tracker) NextSentence(now time.Time, bank *SentenceBank, rng *rand.Rand) (Assignment, error) {
	tier := t.updateTier(now)
	if tier > bank.MaxTier() {
		tier = bank.MaxTier()
		t.Tier = tier
	}

	if t.IncomingAttack {
		if now.Before(t.AttackAt) {
			return Assignment{Tier: tier, Pending: true, RetryAfter: t.AttackAt.Sub(now)}, nil
		}
		garbage, err := GarbageSentence(bank, rng, tier)
		if err != nil {
			return Assignment{Tier: tier}, err
		}
		t.IncomingAttack = false
		t.AttackAt = time.Time{}
		t.assign(garbage)
		return Assignment{Sentence: t.Sentence, Tier: tier, Garbage: true}, nil
	}

	if t.Sentence == "" {
		sentence, err := bank.Pick(rng, tier)
		if err != nil {
			return Assignment{Tier: tier}, err
		}
		t.assign(sentence)
	}
	return Assignment{Sentence: t.Sentence, Tier: tier}, nil
}

func (t *Tracker) assign(sentence string) {
	t.Sentence = sentence
	t.PreviousInput = ""
}

// Submit scores the typed text against the current sentence.
//
// Errors are only counted once the backspace budget is used up, and only for the characters
// typed since the previous submission, so resubmitting a prefix never double counts.
// A completed but incorrect submission resets the streak and keeps the sentence for a retry.
func (t *Tracker) Submit(now time.Time, typed string, backspace bool) (Outcome, error) {
	if t.Sentence == "" {
		return Outcome{}, ErrNoActiveSentence
	}
	tier := t.updateTier(now)
	target := t.Sentence

	if backspace {
		t.Backspaces++
	}

	if t.Backspaces >= t.MaxBackspaces {
		t.Errors += countMismatches(target, typed, utf8.RuneCountInString(t.PreviousInput))
	}
	t.PreviousInput = typed

	correct := strings.TrimSpace(typed) == strings.TrimSpace(target)
	completed := utf8.RuneCountInString(typed) == utf8.RuneCountInString(target)

	out := Outcome{Correct: correct, Completed: completed, Tier: tier}
	if completed {
		if correct {
			t.assign("")
			t.Streak++
			if t.Streak > t.rules.StreakThreshold {
				t.Streak = 0
				out.AttackTriggered = true
			}
		} else {
			t.Streak = 0
		}
	}

	if t.Errors > t.MaxErrors || t.Backspaces > t.MaxBackspaces {
		t.Eliminated = true
	}

	out.Errors = t.Errors
	out.Backspaces = t.Backspaces
	out.Eliminated = t.Eliminated
	out.Streak = t.Streak
	return out, nil
}

// ErrorsLeft is the remaining error budget, never negative.
func (t *Tracker) ErrorsLeft() int {
	return max(t.MaxErrors-t.Errors, 0)
}

// BackspacesLeft is the remaining backspace budget, never negative.
func (t *Tracker) BackspacesLeft() int {
	return max(t.MaxBackspaces-t.Backspaces, 0)
}

// countMismatches compares typed against target over [from, min(len(typed), len(target))).
func countMismatches(target, typed string, from int) int {
	tr := []rune(target)
	ty := []rune(typed)
	end := min(len(ty), len(tr))
	n := 0
	for i := from; i < end; i++ {
		if ty[i] != tr[i] {
			n++
		}
	}
	return n
}
