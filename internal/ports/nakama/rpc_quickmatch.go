package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"

	"typerace/internal/domain"
)

// quickMatchQuery finds open typerace lobbies.
const quickMatchQuery = "+label.open:T +label.game:" + GameLabel + " +label.phase:lobby"

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	limit := 10
	authoritative := true
	minSize := 1
	maxSize := defaultMaxPlayers - 1

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, quickMatchQuery)
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}

	for _, m := range matches {
		// The query index can lag behind label updates.
		if m.GetLabel() != nil {
			label, err := parseMatchLabel(m.GetLabel().GetValue())
			if err != nil || !label.Open || label.Phase != domain.PhaseLobby {
				continue
			}
		}
		b, err := json.Marshal(RoomResponse{MatchID: m.GetMatchId(), IsNew: false})
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// No open lobby; create one. Slots are assigned in MatchJoin.
	return rpcCreateRoom(ctx, logger, db, nk, payload)
}
