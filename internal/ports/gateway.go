package ports

import "typerace/internal/app"

// Gateway delivers session events to the live connections of a room.
// Delivery is fire-and-forget: a slow or gone recipient never blocks the caller.
type Gateway interface {
	// Deliver fans out events. An event without recipients goes to every member of the room.
	Deliver(roomID string, events []app.Event)
	// SendError reports a request-scoped failure to one player only.
	SendError(roomID, playerID string, err error)
}
