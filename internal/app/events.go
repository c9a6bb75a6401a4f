package app

import "typerace/internal/domain"

// EventKind identifies emitted session events for gateway dispatch.
type EventKind string

const (
	EventPlayerJoined     EventKind = "player_joined"
	EventPlayerLeft       EventKind = "player_left"
	EventGameStarted      EventKind = "game_started"
	EventReadyNotice      EventKind = "ready_notice"
	EventSentenceAssigned EventKind = "sentence_assigned"
	EventSubmitResult     EventKind = "submit_result"
	EventSentenceComplete EventKind = "sentence_complete"
	EventGarbageAttack    EventKind = "garbage_attack"
	EventPlayerEliminated EventKind = "player_eliminated"
	EventWinner           EventKind = "winner"
	EventTypingUpdate     EventKind = "typing_update"
)

// Event is a session event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name,omitempty"`
	Players  int    `json:"players"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
}

type GameStartedPayload struct {
	Phase   domain.Phase `json:"phase"`
	Players []string     `json:"players"`
}

type ReadyNoticePayload struct {
	PlayerID string `json:"player_id"`
	AllReady bool   `json:"all_ready"`
}

type SentenceAssignedPayload struct {
	Assignment
}

type SubmitResultPayload struct {
	SubmitResult
}

type SentenceCompletePayload struct {
	PlayerID string `json:"player_id"`
}

type GarbageAttackPayload struct {
	From string `json:"from"`
}

type PlayerEliminatedPayload struct {
	PlayerID string `json:"player_id"`
}

type WinnerPayload struct {
	PlayerID string `json:"player_id"`
}

type TypingUpdatePayload struct {
	PlayerID string `json:"player_id"`
	Text     string `json:"text"`
}
