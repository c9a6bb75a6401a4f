package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "easy", "medium", "hard"
}

var defaultIdentities = []BotIdentity{
	{UserID: "bot-quill", Username: "quill", DisplayName: "Quill", Difficulty: DifficultyEasy},
	{UserID: "bot-ribbon", Username: "ribbon", DisplayName: "Ribbon", Difficulty: DifficultyMedium},
	{UserID: "bot-platen", Username: "platen", DisplayName: "Platen", Difficulty: DifficultyHard},
}

// Roster is the pool of bot identities available to fill lobbies.
type Roster struct {
	mu         sync.RWMutex
	identities []BotIdentity
	byID       map[string]BotIdentity
	provision  sync.Once
}

// NewRoster indexes identities. Entries without a user id are kept for provisioning.
func NewRoster(identities []BotIdentity) *Roster {
	r := &Roster{byID: make(map[string]BotIdentity)}
	for _, identity := range identities {
		r.add(identity)
	}
	return r
}

// DefaultRoster returns the built-in bots.
func DefaultRoster() *Roster {
	return NewRoster(defaultIdentities)
}

// LoadRoster loads the bot profiles from the given path.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot identities: %w", err)
	}
	var identities []BotIdentity
	if err := json.Unmarshal(data, &identities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bot identities: %w", err)
	}
	if len(identities) == 0 {
		return nil, fmt.Errorf("bot identities file %s is empty", path)
	}
	return NewRoster(identities), nil
}

func (r *Roster) add(identity BotIdentity) {
	r.identities = append(r.identities, identity)
	if identity.UserID != "" {
		r.byID[identity.UserID] = identity
	}
}

// ProvisionBots ensures that bot accounts with a device id exist in Nakama and carry the is_bot
// metadata. It runs once per roster.
func (r *Roster) ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	r.provision.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		for i := range r.identities {
			identity := &r.identities[i]
			if identity.DeviceID == "" {
				continue
			}

			userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
				continue
			}
			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":     true,
				"difficulty": identity.Difficulty,
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
			}

			r.byID[userID] = *identity
			logger.Info("ProvisionBots: Bot %s (%s) is ready. Difficulty: %s", identity.DisplayName, userID, identity.Difficulty)
		}
	})
}

// Identity returns an identity by index (mod pool size). Identities that never got a user id
// are skipped.
func (r *Roster) Identity(index int) BotIdentity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var usable []BotIdentity
	for _, identity := range r.identities {
		if identity.UserID != "" {
			usable = append(usable, identity)
		}
	}
	if len(usable) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("bot-%d", index),
			Username:    fmt.Sprintf("bot%d", index),
			DisplayName: fmt.Sprintf("AI Typist %d", index),
			Difficulty:  DifficultyMedium,
		}
	}
	return usable[index%len(usable)]
}

// IsBot reports whether the given user ID belongs to the bot pool.
func (r *Roster) IsBot(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[userID]
	return ok
}

// DisplayName returns the display name for a bot ID, or an empty string if not a bot.
func (r *Roster) DisplayName(userID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.byID[userID]
	if !ok {
		return ""
	}
	if identity.DisplayName == "" {
		return identity.Username
	}
	return identity.DisplayName
}
