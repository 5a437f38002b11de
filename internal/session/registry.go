package session

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultName is used when a client never set a name or set an empty one.
const DefaultName = "Player"

// MaxNameLen caps display names.
const MaxNameLen = 16

type entry struct {
	conn     *Conn
	name     string
	roomCode string
}

// Registry maps each live connection to its display name and current room.
// It owns nothing beyond that mapping: rooms reference connections weakly
// and the registry never outlives a disconnect.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*entry)}
}

// Register records a freshly accepted connection with the default name and
// no room.
func (r *Registry) Register(conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[conn.ID] = &entry{conn: conn, name: DefaultName}
}

// CleanName applies the display-name rules: clamp to MaxNameLen, trim
// whitespace, fall back to the default when nothing is left.
func CleanName(name string) string {
	if runes := []rune(name); len(runes) > MaxNameLen {
		name = string(runes[:MaxNameLen])
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName
	}
	return name
}

// SetName updates the session's display name and returns the cleaned value.
// Unknown ids still get the cleaned name back so callers need not care.
func (r *Registry) SetName(id uuid.UUID, name string) string {
	name = CleanName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		e.name = name
	}
	return name
}

// Name returns the session's display name, or the default for unknown ids.
func (r *Registry) Name(id uuid.UUID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		return e.name
	}
	return DefaultName
}

// SetRoom records which room the session currently occupies; empty clears
// it.
func (r *Registry) SetRoom(id uuid.UUID, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		e.roomCode = code
	}
}

// Room returns the session's current room code, empty when roomless or
// unknown.
func (r *Registry) Room(id uuid.UUID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		return e.roomCode
	}
	return ""
}

// Send queues msg on the session's connection. Unknown ids are ignored: the
// peer already disconnected and its room slot is being vacated.
func (r *Registry) Send(id uuid.UUID, msg any) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		e.conn.Write(msg)
	}
}

// Forget drops the session on disconnect.
func (r *Registry) Forget(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Count reports how many connections are live.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
