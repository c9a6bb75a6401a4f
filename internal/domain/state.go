package domain

// Phase represents the lifecycle stage of a race room.
type Phase string

const (
	// PhaseLobby is the pre-game state where players can join and ready up.
	PhaseLobby Phase = "lobby"
	// PhasePlaying is the active race.
	PhasePlaying Phase = "playing"
	// PhaseEnded is reached once a single non-eliminated player remains.
	PhaseEnded Phase = "ended"
)
