package ws

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"typerace/internal/app"
	"typerace/internal/ports"
	"typerace/internal/protocol"
)

// Hub tracks live connections per room and fans out session events to them.
type Hub struct {
	mu        sync.RWMutex
	rooms     map[string]map[string]*client
	logger    runtime.Logger
	buffer    int
	pingEvery time.Duration
	dropped   atomic.Int64
}

var _ ports.Gateway = (*Hub)(nil)

// NewHub builds a hub whose per-connection queues hold buffer messages.
func NewHub(logger runtime.Logger, buffer int, pingEvery time.Duration) *Hub {
	if buffer <= 0 {
		buffer = 1
	}
	return &Hub{
		rooms:     make(map[string]map[string]*client),
		logger:    logger,
		buffer:    buffer,
		pingEvery: pingEvery,
	}
}

// Attach registers conn for the player and starts its writer. A previous connection of the
// same player is closed.
func (h *Hub) Attach(roomID, playerID string, conn Conn) *client {
	c := newClient(roomID, playerID, conn, h.buffer)

	h.mu.Lock()
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[string]*client)
		h.rooms[roomID] = members
	}
	old := members[playerID]
	members[playerID] = c
	h.mu.Unlock()

	if old != nil {
		old.close()
	}
	go c.writePump(h.pingEvery)
	return c
}

// Detach closes c and forgets it, unless the player has since reconnected.
func (h *Hub) Detach(c *client) {
	h.mu.Lock()
	if members, ok := h.rooms[c.roomID]; ok && members[c.playerID] == c {
		delete(members, c.playerID)
		if len(members) == 0 {
			delete(h.rooms, c.roomID)
		}
	}
	h.mu.Unlock()
	c.close()
}

// Connected reports how many live connections a room has.
func (h *Hub) Connected(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// IsConnected reports whether the player has a live connection.
func (h *Hub) IsConnected(roomID, playerID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[roomID][playerID]
	return ok
}

// Dropped is the number of messages discarded because a queue was full.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

func (h *Hub) Deliver(roomID string, events []app.Event) {
	for _, ev := range events {
		typ, payload := protocol.FromEvent(ev)
		h.send(roomID, typ, payload, ev.Recipients)
	}
}

func (h *Hub) SendError(roomID, playerID string, err error) {
	h.send(roomID, protocol.MsgError, protocol.ErrorFor(err), []string{playerID})
}

// Send delivers a single message to one player.
func (h *Hub) Send(roomID, playerID string, typ protocol.Type, payload any) {
	h.send(roomID, typ, payload, []string{playerID})
}

func (h *Hub) send(roomID string, typ protocol.Type, payload any, playerIDs []string) {
	b, err := protocol.Encode(typ, payload)
	if err != nil {
		h.logger.Error("hub: Failed to encode %s: %v", typ, err)
		return
	}

	h.mu.RLock()
	var targets []*client
	members := h.rooms[roomID]
	if len(playerIDs) == 0 {
		for _, c := range members {
			targets = append(targets, c)
		}
	} else {
		for _, id := range playerIDs {
			if c, ok := members[id]; ok {
				targets = append(targets, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.enqueue(b) {
			h.dropped.Add(1)
			h.logger.Warn("hub: Dropped %s for %s in room %s", typ, c.playerID, roomID)
		}
	}
}
