package protocol

import "encoding/json"

// Type names a message variant inside an Envelope.
type Type string

// Inbound message types.
const (
	MsgReady        Type = "ready"
	MsgStart        Type = "start"
	MsgNextSentence Type = "next_sentence"
	MsgSubmit       Type = "submit"
	MsgTyping       Type = "typing"
	MsgPing         Type = "ping"
	MsgLeave        Type = "leave"
)

// Outbound message types. The session event kinds share these names.
const (
	MsgPlayerJoined     Type = "player_joined"
	MsgPlayerLeft       Type = "player_left"
	MsgGameStarted      Type = "game_started"
	MsgReadyNotice      Type = "ready_notice"
	MsgSentenceAssigned Type = "sentence_assigned"
	MsgSubmitResult     Type = "submit_result"
	MsgSentenceComplete Type = "sentence_complete"
	MsgGarbageAttack    Type = "garbage_attack"
	MsgPlayerEliminated Type = "player_eliminated"
	MsgWinner           Type = "winner"
	MsgTypingUpdate     Type = "typing_update"
	MsgRoomState        Type = "room_state"
	MsgPong             Type = "pong"
	MsgError            Type = "error"
)

// Envelope frames every websocket message.
type Envelope struct {
	T Type            `json:"t"`
	P json.RawMessage `json:"p"`
}
