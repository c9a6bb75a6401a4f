package bot

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Tuning shapes how a bot types.
type Tuning struct {
	CharsPerSecond float64
	// TypoRate is the chance that a single keystroke is wrong.
	TypoRate float64
	// ReserveBackspaces is how many backspaces the bot never spends.
	ReserveBackspaces int
}

var tunings = map[string]Tuning{
	DifficultyEasy:   {CharsPerSecond: 3, TypoRate: 0.08, ReserveBackspaces: 0},
	DifficultyMedium: {CharsPerSecond: 5, TypoRate: 0.04, ReserveBackspaces: 1},
	DifficultyHard:   {CharsPerSecond: 8, TypoRate: 0.01, ReserveBackspaces: 2},
}
