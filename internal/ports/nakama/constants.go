package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"
	// RpcCreateRoom always creates a fresh match.
	RpcCreateRoom = "create_room"

	// MatchNameTypeRace is the authoritative match handler name registered with Nakama.
	MatchNameTypeRace = "typerace_match"

	// GameLabel is the value of the label's "game" key.
	GameLabel = "typerace"
)

const (
	matchTickRate     = 5
	defaultMaxPlayers = 4
)

// Runtime env keys read from RUNTIME_CTX_ENV.
const (
	envGameConfig       = "typerace_game_config"
	envBotIdentities    = "typerace_bot_identities"
	envBotsEnabled      = "typerace_bots_enabled"
	envBotAutoFillDelay = "typerace_bot_auto_fill_delay_sec"
	envMaxPlayers       = "typerace_max_players"
)
