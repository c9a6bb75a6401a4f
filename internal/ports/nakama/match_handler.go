package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"maps"
	"math/rand"
	"slices"
	"strconv"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"typerace/internal/app"
	"typerace/internal/bot"
	"typerace/internal/config"
	"typerace/internal/domain"
	"typerace/internal/protocol"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	RoomID               string                      `json:"room_id"`
	Tick                 int64                       `json:"tick"`
	MaxPlayers           int                         `json:"max_players"`
	Presences            map[string]runtime.Presence `json:"-"` // Map UserId -> Presence for targeted messaging
	Session              *app.Session                `json:"-"`
	BotsEnabled          bool                        `json:"bots_enabled"`
	BotAutoFillDelay     time.Duration               `json:"bot_auto_fill_delay"`     // Wait before adding a bot to a solo human lobby
	LastSinglePlayerTick int64                       `json:"last_single_player_tick"` // Tick when a single player started waiting
	Bots                 map[string]*bot.Agent       `json:"-"`
	rng                  *rand.Rand
	labelPhase           domain.Phase
}

// GetHumanPlayerCount counts connected humans.
func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for userID := range ms.Presences {
		if _, isBot := ms.Bots[userID]; !isBot {
			count++
		}
	}
	return count
}

// openSlots is the number of players that can still join the lobby.
func (ms *MatchState) openSlots() int {
	if ms.Session.Phase() != domain.PhaseLobby {
		return 0
	}
	return max(ms.MaxPlayers-ms.Session.PlayerCount(), 0)
}

type matchHandler struct {
	cfg    *config.GameConfig
	roster *bot.Roster
}

func newMatchHandler(cfg *config.GameConfig, roster *bot.Roster) *matchHandler {
	if cfg == nil {
		cfg = config.DefaultGameConfig()
	}
	if roster == nil {
		roster = bot.DefaultRoster()
	}
	return &matchHandler{cfg: cfg, roster: roster}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	roomID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	bank, err := mh.cfg.SentenceBank()
	if err != nil {
		logger.Warn("MatchInit: Could not load sentences, using built-in corpus: %v", err)
		bank = domain.DefaultSentenceBank()
	}

	state := &MatchState{
		RoomID:           roomID,
		MaxPlayers:       defaultMaxPlayers,
		Presences:        make(map[string]runtime.Presence),
		BotsEnabled:      mh.cfg.BotsEnabled,
		BotAutoFillDelay: mh.cfg.BotAutoFillDelay(),
		Bots:             make(map[string]*bot.Agent),
		rng:              rng,
		Session: app.NewSession(roomID, app.Options{
			Rules: mh.cfg.Rules(),
			Bank:  bank,
			Rng:   rand.New(rand.NewSource(rng.Int63())),
		}),
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env[envBotsEnabled]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env[envBotAutoFillDelay]; ok {
		if i, err := strconv.Atoi(val); err == nil && i >= 0 {
			state.BotAutoFillDelay = time.Duration(i) * time.Second
		}
	}
	if val, ok := env[envMaxPlayers]; ok {
		if i, err := strconv.Atoi(val); err == nil && i >= app.MinPlayersToStartGame {
			state.MaxPlayers = i
		}
	}

	label, err := mh.label(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	state.labelPhase = domain.PhaseLobby

	return state, matchTickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Bot accounts are driven by the server only.
	if mh.roster.IsBot(presence.GetUserId()) {
		return state, false, "Reserved account"
	}
	// Rejoining an existing tracker is always allowed.
	if matchState.Session.HasPlayer(presence.GetUserId()) {
		return state, true, ""
	}
	if matchState.Session.Phase() != domain.PhaseLobby {
		return state, false, "Race in progress"
	}
	if matchState.openSlots() <= 0 && len(matchState.Bots) == 0 {
		return state, false, "Match full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}
	gw := newMatchGateway(matchState, dispatcher, logger)

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if !matchState.Session.HasPlayer(userID) && matchState.openSlots() <= 0 {
			mh.replaceBot(matchState, gw, logger, userID)
		}

		events, err := matchState.Session.AddNamedPlayer(userID, p.GetUsername())
		if err != nil {
			logger.Warn("MatchJoin: User %s could not join: %v", userID, err)
			gw.SendError(matchState.RoomID, userID, err)
			delete(matchState.Presences, userID)
			continue
		}
		gw.Deliver(matchState.RoomID, events)
		mh.sendRoomState(matchState, gw, userID)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// replaceBot frees a lobby slot held by a bot for the joining human.
func (mh *matchHandler) replaceBot(state *MatchState, gw *matchGateway, logger runtime.Logger, userID string) {
	ids := slices.Sorted(maps.Keys(state.Bots))
	if len(ids) == 0 {
		return
	}
	botID := ids[0]
	logger.Info("MatchJoin: Replacing bot %s with human %s", botID, userID)
	delete(state.Bots, botID)
	events, err := state.Session.RemovePlayer(botID)
	if err != nil {
		logger.Warn("MatchJoin: Failed to remove bot %s: %v", botID, err)
		return
	}
	gw.Deliver(state.RoomID, events)
}

// MatchLeave is called when one or more players disconnect. Trackers are kept so a player can
// rejoin; the explicit leave opcode removes them.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)
		gw := newMatchGateway(matchState, dispatcher, logger)

		events, err := matchState.Session.Disconnect(userID)
		if errors.Is(err, app.ErrUnknownPlayer) {
			continue // already left explicitly
		}
		if err != nil {
			logger.Warn("MatchLeave: Disconnect of %s failed: %v", userID, err)
			continue
		}
		logger.Debug("MatchLeave: User %s disconnected.", userID)
		gw.Deliver(matchState.RoomID, events)
	}

	if matchState.GetHumanPlayerCount() == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Tick = tick

	for _, msg := range messages {
		mh.handleMessage(matchState, dispatcher, logger, msg)
	}

	if matchState.BotsEnabled {
		mh.processBots(matchState, dispatcher, logger)
	}

	if matchState.Session.Phase() != matchState.labelPhase {
		mh.updateLabel(matchState, dispatcher, logger)
	}
	return matchState
}

func (mh *matchHandler) handleMessage(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	gw := newMatchGateway(state, dispatcher, logger)

	typ, ok := protocol.TypeOf(msg.GetOpCode())
	if !ok {
		logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		gw.SendError(state.RoomID, senderID, protocol.ErrUnknownType)
		return
	}
	env := protocol.Envelope{T: typ, P: msg.GetData()}

	switch typ {
	case protocol.MsgPing:
		ping, err := protocol.DecodePayload[protocol.Ping](env)
		if err != nil {
			gw.SendError(state.RoomID, senderID, err)
			return
		}
		gw.send(protocol.MsgPong, protocol.Pong{Nonce: ping.Nonce}, []string{senderID}, true)

	case protocol.MsgLeave:
		events, err := state.Session.RemovePlayer(senderID)
		if err != nil {
			gw.SendError(state.RoomID, senderID, err)
			return
		}
		gw.Deliver(state.RoomID, events)
		if p, ok := state.Presences[senderID]; ok {
			if err := dispatcher.MatchKick([]runtime.Presence{p}); err != nil {
				logger.Warn("handleLeave: Failed to kick %s: %v", senderID, err)
			}
		}

	default:
		events, err := protocol.Apply(state.Session, senderID, env)
		if err != nil {
			logger.Debug("handleMessage: %s from %s rejected: %v", typ, senderID, err)
			gw.SendError(state.RoomID, senderID, err)
			return
		}
		gw.Deliver(state.RoomID, events)
	}
}

func (mh *matchHandler) processBots(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	gw := newMatchGateway(state, dispatcher, logger)

	// 1. Auto-fill a solo human lobby with one bot after the delay.
	if state.Session.Phase() == domain.PhaseLobby {
		if state.GetHumanPlayerCount() == 1 && len(state.Bots) == 0 && state.openSlots() > 0 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}
			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay/(time.Second/matchTickRate)) {
				mh.addBot(state, gw, logger)
				state.LastSinglePlayerTick = 0
				mh.updateLabel(state, dispatcher, logger)
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	// 2. Let bots type during the race.
	dt := time.Second / matchTickRate
	for _, id := range slices.Sorted(maps.Keys(state.Bots)) {
		events, err := state.Bots[id].Step(state.Session, dt)
		if err != nil {
			logger.Error("processBots: Bot %s failed to act: %v", id, err)
			continue
		}
		gw.Deliver(state.RoomID, events)
	}
}

func (mh *matchHandler) addBot(state *MatchState, gw *matchGateway, logger runtime.Logger) {
	identity := mh.roster.Identity(len(state.Bots))
	for i := 1; state.Session.HasPlayer(identity.UserID) && i <= state.MaxPlayers; i++ {
		identity = mh.roster.Identity(len(state.Bots) + i)
	}

	agent, err := bot.NewAgent(identity, rand.New(rand.NewSource(state.rng.Int63())))
	if err != nil {
		logger.Error("Failed to create bot agent for %s: %v", identity.UserID, err)
		return
	}
	name := mh.roster.DisplayName(identity.UserID)
	if name == "" {
		name = identity.DisplayName
	}
	events, err := state.Session.AddNamedPlayer(identity.UserID, name)
	if err != nil {
		logger.Warn("processBots: Bot %s could not join: %v", identity.UserID, err)
		return
	}
	state.Bots[identity.UserID] = agent
	gw.Deliver(state.RoomID, events)

	allReady, readyEvents, err := state.Session.MarkReady(identity.UserID)
	if err != nil {
		logger.Warn("processBots: Bot %s could not ready up: %v", identity.UserID, err)
		return
	}
	gw.Deliver(state.RoomID, readyEvents)
	logger.Info("processBots: Added bot %s (%s)", agent.Name, identity.UserID)

	if allReady {
		started, err := state.Session.StartGame()
		if err != nil {
			logger.Warn("processBots: Failed to start race: %v", err)
			return
		}
		gw.Deliver(state.RoomID, started)
	}
}

func (mh *matchHandler) sendRoomState(state *MatchState, gw *matchGateway, userID string) {
	welcome := protocol.Welcome{PlayerID: userID, Room: state.Session.Snapshot()}
	gw.send(protocol.MsgRoomState, welcome, []string{userID}, true)
}

func (mh *matchHandler) label(state *MatchState) (string, error) {
	phase := state.Session.Phase()
	return MatchLabel{
		Game:    GameLabel,
		Phase:   phase,
		Open:    state.openSlots() > 0,
		Players: state.Session.PlayerCount(),
	}.marshal()
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := mh.label(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
		return
	}
	state.labelPhase = state.Session.Phase()
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

// MatchSignal answers any signal with the room snapshot as JSON.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}
	b, err := json.Marshal(matchState.Session.Snapshot())
	if err != nil {
		logger.Error("MatchSignal: Failed to marshal snapshot: %v", err)
		return state, ""
	}
	return state, string(b)
}
