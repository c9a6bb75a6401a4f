package ports

import (
	"time"

	"typerace/internal/app"
)

// RoomDirectory maps opaque room ids to race sessions and owns their lifecycle.
type RoomDirectory interface {
	// CreateRoom allocates a new lobby and returns its id.
	CreateRoom() string
	// Session returns the room's session or an error of kind NotFound.
	Session(roomID string) (*app.Session, error)
	// Join registers playerID in the room under a display name.
	Join(roomID, playerID, name string) ([]app.Event, error)
	// Leave removes playerID and destroys the room once it is empty.
	Leave(roomID, playerID string) ([]app.Event, error)
	// ReapIdle deletes rooms nobody has joined within ttl of their creation.
	ReapIdle(ttl time.Duration) []string
	// Rooms lists the open rooms.
	Rooms() []app.RoomSummary
}
