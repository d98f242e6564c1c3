// Package ws tracks live WebSocket sessions and their room membership, and
// fans payloads out to every session in a room. A room is keyed by role and
// actor id ("doctor:<id>", "patient:<id>"); a user with several tabs open
// holds several sessions in the same room, and each one receives every
// fanned-out payload. Delivery is best effort: the durable record lives in
// the database and clients pull history on reconnect.
package ws

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Role identifies what kind of actor a session belongs to.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// ParseRole validates a role string against the known set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RoleDoctor, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown session role %q", s)
	}
}

// RoomKey builds the fanout room key for an actor.
func RoomKey(role Role, actorID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", role, actorID)
}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Session is one live connection bound to an authenticated user.
type Session struct {
	ID          string
	UserID      uuid.UUID
	Role        Role
	ActorID     uuid.UUID
	Room        string
	ConnectedAt time.Time

	send chan []byte
	conn Conn
}

// Send exposes the session's outbound channel for the write pump.
func (s *Session) Send() <-chan []byte { return s.send }

// Registry owns all live sessions and their room membership. It is purely
// in-memory; nothing else in the process may mutate sessions.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[*Session]struct{}
	byID  map[string]*Session
	log   zerolog.Logger
}

// NewRegistry creates an empty session registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		rooms: make(map[string]map[*Session]struct{}),
		byID:  make(map[string]*Session),
		log:   log,
	}
}

// NewSession builds an unregistered session for the given identity.
func NewSession(userID uuid.UUID, role Role, actorID uuid.UUID, conn Conn) *Session {
	return &Session{
		ID:          uuid.New().String(),
		UserID:      userID,
		Role:        role,
		ActorID:     actorID,
		Room:        RoomKey(role, actorID),
		ConnectedAt: time.Now(),
		send:        make(chan []byte, 256),
		conn:        conn,
	}
}

// Register adds the session to its room. Registering the same session id
// twice leaves exactly one membership.
func (r *Registry) Register(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[s.ID]; ok {
		return
	}
	r.byID[s.ID] = s

	if r.rooms[s.Room] == nil {
		r.rooms[s.Room] = make(map[*Session]struct{})
	}
	r.rooms[s.Room][s] = struct{}{}

	r.log.Debug().
		Str("session_id", s.ID).
		Str("room", s.Room).
		Msg("session registered")
}

// Unregister removes the session and closes its send channel. Calling it
// with an unknown or already-removed id is a no-op.
func (r *Registry) Unregister(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[sessionID]
	if !ok {
		return
	}
	delete(r.byID, sessionID)

	if members, ok := r.rooms[s.Room]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(r.rooms, s.Room)
		}
	}
	close(s.send)

	r.log.Debug().
		Str("session_id", sessionID).
		Str("room", s.Room).
		Msg("session unregistered")
}

// SessionsInRoom returns the live sessions currently in a room.
func (r *Registry) SessionsInRoom(room string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[room]
	out := make([]*Session, 0, len(members))
	for s := range members {
		out = append(out, s)
	}
	return out
}

// Fanout marshals the payload once and pushes it to every session in the
// room. A session whose buffer is full is skipped so one slow client never
// blocks the others. Returns the number of sessions the payload was queued
// for.
func (r *Registry) Fanout(room string, payload interface{}) int {
	data, err := json.Marshal(payload)
	if err != nil {
		r.log.Error().Err(err).Str("room", room).Msg("fanout marshal failed")
		return 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for s := range r.rooms[room] {
		select {
		case s.send <- data:
			delivered++
		default:
			// Buffer full; the client catches up from alert history.
		}
	}
	return delivered
}

// SessionCount returns the number of live sessions.
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// RoomCount returns the number of sessions in a room.
func (r *Registry) RoomCount(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}
