package protocol

import "typerace/internal/app"

// Inbound payloads.

type Submit struct {
	Text      string `json:"text"`
	Backspace bool   `json:"backspace,omitempty"`
}

type Typing struct {
	Text string `json:"text"`
}

type Ping struct {
	Nonce string `json:"nonce,omitempty"`
}

// Outbound payloads that are not session events.

type Pong struct {
	Nonce string `json:"nonce,omitempty"`
}

// Welcome is the room state a player receives on joining.
type Welcome struct {
	PlayerID string           `json:"player_id"`
	Room     app.RoomSnapshot `json:"room"`
}

// Error is sent to the one player whose request failed.
type Error struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
