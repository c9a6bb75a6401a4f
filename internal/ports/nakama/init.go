package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"

	"typerace/internal/bot"
	"typerace/internal/config"
)

const (
	defaultGameConfigPath    = "data/game_config.json"
	defaultBotIdentitiesPath = "data/bot_identities.json"
)

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	cfgPath := defaultGameConfigPath
	if v := env[envGameConfig]; v != "" {
		cfgPath = v
	}
	if err := config.LoadGameConfig(cfgPath); err != nil {
		logger.Warn("InitModule: Could not load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()

	rosterPath := defaultBotIdentitiesPath
	if v := env[envBotIdentities]; v != "" {
		rosterPath = v
	}
	roster, err := bot.LoadRoster(rosterPath)
	if err != nil {
		logger.Warn("InitModule: Could not load bot identities, using built-in bots: %v", err)
		roster = bot.DefaultRoster()
	}
	roster.ProvisionBots(ctx, nk, logger)

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameTypeRace, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(cfg, roster), nil
	}); err != nil {
		return err
	}

	logger.Info("TypeRace Go module loaded.")
	return nil
}
