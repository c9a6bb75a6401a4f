package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RoomResponse is returned by the room RPCs.
type RoomResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcCreateRoom, rpcCreateRoom); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch)
}

// rpcCreateRoom creates a fresh race lobby and returns its match id.
func rpcCreateRoom(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	matchID, err := nk.MatchCreate(ctx, MatchNameTypeRace, map[string]interface{}{})
	if err != nil {
		logger.Error("rpcCreateRoom [User:%s]: Failed to create match: %v", userID, err)
		return "", err
	}
	logger.Info("rpcCreateRoom [User:%s]: Created new match %s", userID, matchID)

	b, err := json.Marshal(RoomResponse{MatchID: matchID, IsNew: true})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
