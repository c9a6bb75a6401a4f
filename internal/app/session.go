package app

import (
	"math/rand"
	"slices"
	"sync"
	"time"

	"typerace/internal/domain"
)

// Options configures a Session. Zero values fall back to the defaults.
type Options struct {
	Rules domain.Rules
	Bank  *domain.SentenceBank
	Rng   *rand.Rand
	Now   func() time.Time
}

// Session is the authoritative engine for one race room. Every exported method takes the
// session lock, so a room is never mutated by two players at once.
type Session struct {
	mu sync.Mutex

	id        string
	rules     domain.Rules
	bank      *domain.SentenceBank
	rng       *rand.Rand
	now       func() time.Time
	players   map[string]*domain.Tracker
	names     map[string]string
	ready     map[string]struct{}
	phase     domain.Phase
	startedAt time.Time
	winner    string
	createdAt time.Time
}

// Assignment is the sentence handed to a player, or a pending notice while an attack lands.
type Assignment struct {
	PlayerID       string `json:"player_id"`
	Sentence       string `json:"sentence,omitempty"`
	Difficulty     int    `json:"difficulty"`
	Garbage        bool   `json:"garbage,omitempty"`
	Pending        bool   `json:"pending,omitempty"`
	RetryAfterMs   int64  `json:"retry_after_ms,omitempty"`
	ErrorsLeft     int    `json:"errors_left"`
	BackspacesLeft int    `json:"backspaces_left"`
}

// SubmitResult merges a tracker outcome with room level fields.
type SubmitResult struct {
	PlayerID       string   `json:"player_id"`
	Correct        bool     `json:"correct"`
	Completed      bool     `json:"completed"`
	Errors         int      `json:"errors"`
	Backspaces     int      `json:"backspaces"`
	MaxErrors      int      `json:"max_errors"`
	MaxBackspaces  int      `json:"max_backspaces"`
	Eliminated     bool     `json:"eliminated"`
	Difficulty     int      `json:"difficulty"`
	Streak         int      `json:"streak"`
	IncomingAttack bool     `json:"incoming_garbage"`
	GarbageTargets []string `json:"garbage_targets"`
	Winner         string   `json:"winner,omitempty"`
}

// PlayerSnapshot is a read-only view of one tracker.
type PlayerSnapshot struct {
	PlayerID   string `json:"player_id"`
	Name       string `json:"name,omitempty"`
	Ready      bool   `json:"ready"`
	Eliminated bool   `json:"eliminated"`
	Errors     int    `json:"errors"`
	Backspaces int    `json:"backspaces"`
	Streak     int    `json:"streak"`
	Difficulty int    `json:"difficulty"`
}

// RoomSnapshot is a read-only view of the room.
type RoomSnapshot struct {
	RoomID  string           `json:"room_id"`
	Phase   domain.Phase     `json:"phase"`
	Winner  string           `json:"winner,omitempty"`
	Players []PlayerSnapshot `json:"players"`
}

// NewSession constructs a lobby-phase session.
func NewSession(id string, opts Options) *Session {
	if opts.Rules.IsZero() {
		opts.Rules = domain.DefaultRules()
	}
	if opts.Bank == nil {
		opts.Bank = domain.DefaultSentenceBank()
	}
	// Difficulty never outgrows the corpus.
	if opts.Rules.MaxTier == 0 || opts.Rules.MaxTier > opts.Bank.MaxTier() {
		opts.Rules.MaxTier = opts.Bank.MaxTier()
	}
	if opts.Rng == nil {
		opts.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		id:        id,
		rules:     opts.Rules,
		bank:      opts.Bank,
		rng:       opts.Rng,
		now:       opts.Now,
		players:   make(map[string]*domain.Tracker),
		names:     make(map[string]string),
		ready:     make(map[string]struct{}),
		phase:     domain.PhaseLobby,
		createdAt: opts.Now(),
	}
}

// ID returns the room id.
func (s *Session) ID() string {
	return s.id
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// PlayerCount returns the number of registered trackers, connected or not.
func (s *Session) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// HasPlayer reports whether the player has a tracker in this room.
func (s *Session) HasPlayer(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.players[playerID]
	return ok
}

// CreatedAt is when the room was opened.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Winner returns the decided winner, or "" while the race is undecided.
func (s *Session) Winner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.winner
}

// AddPlayer registers a tracker. New players may only join in the lobby; a player who already
// owns a tracker can always rejoin.
func (s *Session) AddPlayer(playerID string) ([]Event, error) {
	return s.AddNamedPlayer(playerID, "")
}

// AddNamedPlayer is AddPlayer with a display name shown to the other players. A rejoin with an
// empty name keeps the old one.
func (s *Session) AddNamedPlayer(playerID, name string) ([]Event, error) {
	if playerID == "" {
		return nil, ErrEmptyPlayerID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[playerID]; !ok {
		if s.phase != domain.PhaseLobby {
			return nil, ErrGameInProgress
		}
		s.players[playerID] = domain.NewTracker(playerID, s.rules)
	}
	if name != "" {
		s.names[playerID] = name
	}

	return []Event{{
		Kind:    EventPlayerJoined,
		Payload: PlayerJoinedPayload{PlayerID: playerID, Name: s.names[playerID], Players: len(s.players)},
	}}, nil
}

// RemovePlayer destroys the player's tracker after an explicit leave. During a race the
// winner is re-evaluated.
func (s *Session) RemovePlayer(playerID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[playerID]; !ok {
		return nil, ErrUnknownPlayer
	}
	delete(s.players, playerID)
	delete(s.names, playerID)
	delete(s.ready, playerID)

	events := []Event{{Kind: EventPlayerLeft, Payload: PlayerLeftPayload{PlayerID: playerID}}}
	if s.phase == domain.PhasePlaying {
		if winner, decided := s.decideWinner(); decided {
			events = append(events, Event{Kind: EventWinner, Payload: WinnerPayload{PlayerID: winner}})
		}
	}
	return events, nil
}

// Disconnect reports a dropped connection. The tracker survives until an explicit leave.
func (s *Session) Disconnect(playerID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[playerID]; !ok {
		return nil, ErrUnknownPlayer
	}
	others := s.others(playerID)
	if len(others) == 0 {
		return nil, nil
	}
	return []Event{{
		Kind:       EventPlayerLeft,
		Payload:    PlayerLeftPayload{PlayerID: playerID},
		Recipients: others,
	}}, nil
}

// MarkReady flags the player as ready and reports whether every player (at least two) is
// ready. Starting is left to the caller.
func (s *Session) MarkReady(playerID string) (bool, []Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr, ok := s.players[playerID]
	if !ok {
		return false, nil, ErrUnknownPlayer
	}
	if s.phase != domain.PhaseLobby {
		return false, nil, ErrAlreadyStarted
	}
	tr.Ready = true
	s.ready[playerID] = struct{}{}

	allReady := s.allReady()
	return allReady, []Event{{
		Kind:    EventReadyNotice,
		Payload: ReadyNoticePayload{PlayerID: playerID, AllReady: allReady},
	}}, nil
}

func (s *Session) allReady() bool {
	if len(s.players) < MinPlayersToStartGame {
		return false
	}
	for id := range s.players {
		if _, ok := s.ready[id]; !ok {
			return false
		}
	}
	return true
}

// StartGame moves the room from lobby to playing. It can succeed only once.
func (s *Session) StartGame() ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseLobby {
		return nil, ErrAlreadyStarted
	}
	if len(s.players) < MinPlayersToStartGame {
		return nil, ErrTooFewPlayers
	}

	now := s.now()
	s.phase = domain.PhasePlaying
	s.startedAt = now
	for _, tr := range s.players {
		tr.Start(now)
	}

	return []Event{{
		Kind:    EventGameStarted,
		Payload: GameStartedPayload{Phase: s.phase, Players: s.playerIDs()},
	}}, nil
}

// NextSentence hands the player their current sentence, assigning one when needed. While an
// attack is scheduled but not due the assignment is Pending and the caller should ask again.
func (s *Session) NextSentence(playerID string) (Assignment, []Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr, ok := s.players[playerID]
	if !ok {
		return Assignment{}, nil, ErrUnknownPlayer
	}
	if s.phase == domain.PhaseLobby {
		return Assignment{}, nil, ErrNotStarted
	}

	a, err := tr.NextSentence(s.now(), s.bank, s.rng)
	if err != nil {
		return Assignment{}, nil, err
	}
	out := Assignment{
		PlayerID:       playerID,
		Sentence:       a.Sentence,
		Difficulty:     a.Tier,
		Garbage:        a.Garbage,
		Pending:        a.Pending,
		RetryAfterMs:   a.RetryAfter.Milliseconds(),
		ErrorsLeft:     tr.ErrorsLeft(),
		BackspacesLeft: tr.BackspacesLeft(),
	}
	return out, []Event{{
		Kind:       EventSentenceAssigned,
		Payload:    SentenceAssignedPayload{Assignment: out},
		Recipients: []string{playerID},
	}}, nil
}

// SubmitTyping scores a submission and applies the room level consequences: garbage attacks
// on opponents, elimination and winner detection.
func (s *Session) SubmitTyping(playerID, typed string, backspace bool) (SubmitResult, []Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr, ok := s.players[playerID]
	if !ok {
		return SubmitResult{}, nil, ErrUnknownPlayer
	}

	now := s.now()
	out, err := tr.Submit(now, typed, backspace)
	if err != nil {
		return SubmitResult{}, nil, err
	}

	result := SubmitResult{
		PlayerID:       playerID,
		Correct:        out.Correct,
		Completed:      out.Completed,
		Errors:         out.Errors,
		Backspaces:     out.Backspaces,
		MaxErrors:      tr.MaxErrors,
		MaxBackspaces:  tr.MaxBackspaces,
		Eliminated:     out.Eliminated,
		Difficulty:     out.Tier,
		Streak:         out.Streak,
		IncomingAttack: tr.IncomingAttack,
		GarbageTargets: []string{},
	}

	if out.AttackTriggered {
		for _, id := range s.others(playerID) {
			victim := s.players[id]
			if victim.Eliminated {
				continue
			}
			victim.ScheduleAttack(now)
			result.GarbageTargets = append(result.GarbageTargets, id)
		}
	}

	var eliminatedNow bool
	if tr.Eliminated && !tr.EliminationReported {
		tr.EliminationReported = true
		eliminatedNow = true
	}

	winner, decided := s.decideWinner()
	if winner != "" {
		result.Winner = winner
	}

	events := []Event{{
		Kind:       EventSubmitResult,
		Payload:    SubmitResultPayload{SubmitResult: result},
		Recipients: []string{playerID},
	}}
	if out.Completed && out.Correct {
		if others := s.others(playerID); len(others) > 0 {
			events = append(events, Event{
				Kind:       EventSentenceComplete,
				Payload:    SentenceCompletePayload{PlayerID: playerID},
				Recipients: others,
			})
		}
	}
	for _, target := range result.GarbageTargets {
		events = append(events, Event{
			Kind:       EventGarbageAttack,
			Payload:    GarbageAttackPayload{From: playerID},
			Recipients: []string{target},
		})
	}
	if eliminatedNow {
		events = append(events, Event{Kind: EventPlayerEliminated, Payload: PlayerEliminatedPayload{PlayerID: playerID}})
	}
	if decided {
		events = append(events, Event{Kind: EventWinner, Payload: WinnerPayload{PlayerID: winner}})
	}
	return result, events, nil
}

// RelayTyping forwards raw keystrokes to the other players without validation.
func (s *Session) RelayTyping(playerID, text string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[playerID]; !ok {
		return nil, ErrUnknownPlayer
	}
	others := s.others(playerID)
	if len(others) == 0 {
		return nil, nil
	}
	return []Event{{
		Kind:       EventTypingUpdate,
		Payload:    TypingUpdatePayload{PlayerID: playerID, Text: text},
		Recipients: others,
	}}, nil
}

// Snapshot returns a read-only view of the room.
func (s *Session) Snapshot() RoomSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := RoomSnapshot{RoomID: s.id, Phase: s.phase, Winner: s.winner}
	for _, id := range s.playerIDs() {
		tr := s.players[id]
		snap.Players = append(snap.Players, PlayerSnapshot{
			PlayerID:   id,
			Name:       s.names[id],
			Ready:      tr.Ready,
			Eliminated: tr.Eliminated,
			Errors:     tr.Errors,
			Backspaces: tr.Backspaces,
			Streak:     tr.Streak,
			Difficulty: tr.Tier,
		})
	}
	return snap
}

// decideWinner returns the sole non-eliminated player of a started room with at least two
// players. decided is true only on the call that ends the race.
func (s *Session) decideWinner() (winner string, decided bool) {
	if s.phase == domain.PhaseLobby || len(s.players) < MinPlayersToStartGame {
		return s.winner, false
	}
	var alive []string
	for id, tr := range s.players {
		if !tr.Eliminated {
			alive = append(alive, id)
		}
	}
	if len(alive) != 1 {
		return s.winner, false
	}
	if s.winner != "" {
		return s.winner, false
	}
	s.winner = alive[0]
	s.phase = domain.PhaseEnded
	return s.winner, true
}

func (s *Session) playerIDs() []string {
	ids := make([]string, 0, len(s.players))
	for id := range s.players {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *Session) others(playerID string) []string {
	ids := s.playerIDs()
	return slices.DeleteFunc(ids, func(id string) bool { return id == playerID })
}
