package app

import (
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"typerace/internal/domain"
)

// RoomSummary is a lobby listing entry.
type RoomSummary struct {
	RoomID  string       `json:"room_id"`
	Phase   domain.Phase `json:"phase"`
	Players int          `json:"players"`
}

// Directory maps room ids to sessions. Rooms are deleted once their last player leaves.
type Directory struct {
	mu    sync.RWMutex
	rooms map[string]*Session
	opts  Options
	newID func() string
}

// NewDirectory builds an empty directory. opts is applied to every session it creates; a
// shared Rng only seeds the per-room generators.
func NewDirectory(opts Options) *Directory {
	return &Directory{
		rooms: make(map[string]*Session),
		opts:  opts,
		newID: uuid.NewString,
	}
}

// CreateRoom allocates a new lobby and returns its id.
func (d *Directory) CreateRoom() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.newID()
	for d.rooms[id] != nil {
		id = d.newID()
	}
	opts := d.opts
	if opts.Rng != nil {
		opts.Rng = rand.New(rand.NewSource(opts.Rng.Int63()))
	}
	d.rooms[id] = NewSession(id, opts)
	return id
}

// Session returns the session for roomID.
func (d *Directory) Session(roomID string) (*Session, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s, ok := d.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return s, nil
}

// Join adds playerID to the room under name. The directory lock is held across the join so a
// concurrent Leave cannot delete the room in between.
func (d *Directory) Join(roomID, playerID, name string) ([]Event, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s, ok := d.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return s.AddNamedPlayer(playerID, name)
}

// Leave removes playerID from the room and deletes the room when it becomes empty.
func (d *Directory) Leave(roomID, playerID string) ([]Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	events, err := s.RemovePlayer(playerID)
	if err != nil {
		return nil, err
	}
	if s.PlayerCount() == 0 {
		delete(d.rooms, roomID)
	}
	return events, nil
}

// ReapIdle deletes rooms that have had no player for at least ttl since they were created and
// returns their ids in order.
func (d *Directory) ReapIdle(ttl time.Duration) []string {
	now := time.Now()
	if d.opts.Now != nil {
		now = d.opts.Now()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var reaped []string
	for id, s := range d.rooms {
		if s.PlayerCount() == 0 && now.Sub(s.CreatedAt()) >= ttl {
			delete(d.rooms, id)
			reaped = append(reaped, id)
		}
	}
	slices.Sort(reaped)
	return reaped
}

// Rooms lists the current rooms ordered by id.
func (d *Directory) Rooms() []RoomSummary {
	d.mu.RLock()
	sessions := make([]*Session, 0, len(d.rooms))
	for _, s := range d.rooms {
		sessions = append(sessions, s)
	}
	d.mu.RUnlock()

	out := make([]RoomSummary, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, RoomSummary{RoomID: s.ID(), Phase: s.Phase(), Players: s.PlayerCount()})
	}
	slices.SortFunc(out, func(a, b RoomSummary) int { return strings.Compare(a.RoomID, b.RoomID) })
	return out
}
