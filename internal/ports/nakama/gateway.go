package nakama

import (
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"

	"typerace/internal/app"
	"typerace/internal/ports"
	"typerace/internal/protocol"
)

// matchGateway delivers session events through the match dispatcher. It lives for one
// handler call.
type matchGateway struct {
	presences  map[string]runtime.Presence
	dispatcher runtime.MatchDispatcher
	logger     runtime.Logger
}

var _ ports.Gateway = (*matchGateway)(nil)

func newMatchGateway(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) *matchGateway {
	return &matchGateway{presences: state.Presences, dispatcher: dispatcher, logger: logger}
}

func (g *matchGateway) Deliver(roomID string, events []app.Event) {
	for _, ev := range events {
		typ, payload := protocol.FromEvent(ev)
		// Raw keystrokes are best effort.
		g.send(typ, payload, ev.Recipients, ev.Kind != app.EventTypingUpdate)
	}
}

func (g *matchGateway) SendError(roomID, playerID string, err error) {
	if _, ok := g.presences[playerID]; !ok {
		g.logger.Warn("Cannot send error to %s: Presence not found", playerID)
		return
	}
	g.send(protocol.MsgError, protocol.ErrorFor(err), []string{playerID}, true)
}

func (g *matchGateway) send(typ protocol.Type, payload any, userIDs []string, reliable bool) {
	opCode, ok := protocol.OpCode(typ)
	if !ok {
		g.logger.Warn("Unknown event kind: %v", typ)
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		g.logger.Error("Failed to marshal event %v: %v", typ, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(userIDs) > 0 {
		for _, uid := range userIDs {
			if p, ok := g.presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// Intended recipients that are not connected (bots, dropped players) must not turn
		// into a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	if err := g.dispatcher.BroadcastMessage(opCode, data, recipients, nil, reliable); err != nil {
		g.logger.Warn("Failed to deliver %v: %v", typ, err)
	}
}
