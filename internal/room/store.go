package room

import (
	"errors"
	"slices"

	"github.com/mateus-s-a/jokenpo/internal/engine"
)

var ErrRoomNotFound = errors.New("room not found")
var ErrRoomFull = errors.New("room is full")
var ErrMatchStarted = errors.New("match already started")

// Store is the in-memory room registry. It is owned by the coordinator
// goroutine; nothing here locks.
type Store struct {
	rooms  map[string]*Room
	byConn map[string]string // connection id -> room id
	order  []string          // room ids, insertion order
}

func NewStore() *Store {
	return &Store{
		rooms:  make(map[string]*Room),
		byConn: make(map[string]string),
	}
}

// Create makes a room owned by ownerID with the owner as sole occupant.
// The room id is the creator's connection id, which is unique because a
// connection belongs to at most one room at a time.
func (s *Store) Create(ownerID, playerName string, mode Mode) *Room {
	r := &Room{
		ID:           ownerID,
		Name:         DerivedRoomName(playerName),
		Mode:         mode,
		TimerSeconds: 5,
		HostID:       ownerID,
		State:        StateWaiting,
		Players: map[string]*Player{
			ownerID: {ID: ownerID, Name: playerName, Choice: engine.MoveNone},
		},
	}
	s.rooms[r.ID] = r
	s.byConn[ownerID] = r.ID
	s.order = append(s.order, r.ID)
	return r
}

func (s *Store) Get(roomID string) (*Room, bool) {
	r, ok := s.rooms[roomID]
	return r, ok
}

// ByConn resolves the room a connection currently occupies.
func (s *Store) ByConn(connID string) (*Room, bool) {
	id, ok := s.byConn[connID]
	if !ok {
		return nil, false
	}
	return s.Get(id)
}

// Join adds a player to an existing waiting room.
func (s *Store) Join(roomID, connID, playerName string) (*Room, error) {
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if r.State != StateWaiting {
		return nil, ErrMatchStarted
	}
	if len(r.Players) >= 2 {
		return nil, ErrRoomFull
	}
	r.Players[connID] = &Player{ID: connID, Name: playerName, Choice: engine.MoveNone}
	s.byConn[connID] = r.ID
	return r, nil
}

// FindJoinable picks the oldest waiting quick-play room of the given
// mode holding exactly one player. Password-protected rooms never
// match; lobby rooms are joined by id instead.
func (s *Store) FindJoinable(mode Mode) (*Room, bool) {
	for _, id := range s.order {
		r := s.rooms[id]
		if r == nil || !r.QuickPlay {
			continue
		}
		if r.State == StateWaiting && len(r.Players) == 1 && r.Mode == mode && !r.HasPassword {
			return r, true
		}
	}
	return nil, false
}

// Detach drops a player from their room without removing the room.
func (s *Store) Detach(connID string) (*Room, bool) {
	r, ok := s.ByConn(connID)
	if !ok {
		return nil, false
	}
	delete(r.Players, connID)
	delete(s.byConn, connID)
	return r, true
}

// Remove deletes a room and all occupancy records pointing at it.
func (s *Store) Remove(roomID string) {
	r, ok := s.rooms[roomID]
	if !ok {
		return
	}
	for connID := range r.Players {
		delete(s.byConn, connID)
	}
	delete(s.rooms, roomID)
	if i := slices.Index(s.order, roomID); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

// List returns rooms in creation order.
func (s *Store) List() []*Room {
	out := make([]*Room, 0, len(s.rooms))
	for _, id := range s.order {
		if r, ok := s.rooms[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) Len() int { return len(s.rooms) }
