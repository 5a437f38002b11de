// Package game holds the room state machine and the match coordinator: the
// only parts of the server with real lifecycle and consistency concerns.
// Everything a client reports about its own game (score, lives, block
// layout) is trusted and relayed verbatim, never validated.
package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/hexfall/hexfall/internal/protocol"
)

// Room lifecycle phases.
const (
	PhaseWaiting   = "waiting"
	PhaseCountdown = "countdown"
	PhasePlaying   = "playing"
	PhaseFinished  = "finished"
)

// Match modes.
const (
	ModeBattle   = "battle"
	ModeSurvival = "survival"
)

// codeAlphabet omits easily confused characters (I, O, 0, 1).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 5

// PlayerState is one roster entry: the per-player live fields of a match.
type PlayerState struct {
	ID         uuid.UUID
	Name       string
	Ready      bool
	Score      int
	Lives      int
	Alive      bool
	LastUpdate time.Time
}

// Room is the state machine for one match instance. Roster order is join
// order; the first entry is the host unless reassigned after the host
// leaves. All access is serialized by the owning coordinator's mutex.
type Room struct {
	Code       string
	Host       uuid.UUID
	Mode       string
	MaxPlayers int
	Phase      string
	Players    []*PlayerState
	Settings   protocol.Settings
	CreatedAt  time.Time
	StartedAt  time.Time
}

// DefaultSettings are the match settings applied when the creator supplies
// none.
func DefaultSettings() protocol.Settings {
	return protocol.Settings{
		PenaltyEnabled:    true,
		PenaltyMultiplier: 1,
		StartSpeed:        1,
		LivesCount:        3,
	}
}

// NewRoom builds a waiting room with default settings and an empty roster.
func NewRoom(code string, host uuid.UUID, mode string, maxPlayers int) *Room {
	return &Room{
		Code:       code,
		Host:       host,
		Mode:       mode,
		MaxPlayers: maxPlayers,
		Phase:      PhaseWaiting,
		Settings:   DefaultSettings(),
		CreatedAt:  time.Now(),
	}
}

// GenerateCode returns a fresh room code, rejection-sampling until it does
// not collide with any live room.
func GenerateCode(exists func(string) bool) string {
	for {
		b := make([]byte, codeLength)
		for i := range b {
			b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
		}
		code := string(b)
		if !exists(code) {
			return code
		}
	}
}

// ApplySettings overlays client-supplied settings on the defaults. Zero
// numeric values are treated as "not provided"; lives are clamped to 1..5.
func (r *Room) ApplySettings(p *protocol.SettingsPayload) {
	if p == nil {
		return
	}
	if p.PenaltyEnabled != nil {
		r.Settings.PenaltyEnabled = *p.PenaltyEnabled
	}
	if p.PenaltyMultiplier != nil && *p.PenaltyMultiplier != 0 {
		r.Settings.PenaltyMultiplier = *p.PenaltyMultiplier
	}
	if p.StartSpeed != nil && *p.StartSpeed != 0 {
		r.Settings.StartSpeed = *p.StartSpeed
	}
	if p.LivesCount != nil && *p.LivesCount != 0 {
		lives := *p.LivesCount
		if lives < 1 {
			lives = 1
		}
		if lives > 5 {
			lives = 5
		}
		r.Settings.LivesCount = lives
	}
}

// AddPlayer appends a player to the roster. It refuses once the roster is
// full or the room has left the waiting phase.
func (r *Room) AddPlayer(id uuid.UUID, name string) bool {
	if len(r.Players) >= r.MaxPlayers {
		return false
	}
	if r.Phase != PhaseWaiting {
		return false
	}
	r.Players = append(r.Players, &PlayerState{
		ID:         id,
		Name:       name,
		Lives:      r.Settings.LivesCount,
		Alive:      true,
		LastUpdate: time.Now(),
	})
	return true
}

// RemovePlayer drops a player from the roster and returns the remaining
// count. If the host left, the earliest-joined remaining player is
// promoted.
func (r *Room) RemovePlayer(id uuid.UUID) int {
	for i, p := range r.Players {
		if p.ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			break
		}
	}
	if id == r.Host {
		if len(r.Players) > 0 {
			r.Host = r.Players[0].ID
		} else {
			r.Host = uuid.Nil
		}
	}
	return len(r.Players)
}

// Player returns the roster entry for id, or nil.
func (r *Room) Player(id uuid.UUID) *PlayerState {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// AllReady reports whether the start condition holds: at least two players,
// every one of them ready.
func (r *Room) AllReady() bool {
	if len(r.Players) < 2 {
		return false
	}
	for _, p := range r.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// AlivePlayers returns the roster entries still alive, in join order.
func (r *Room) AlivePlayers() []*PlayerState {
	var alive []*PlayerState
	for _, p := range r.Players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

// Snapshot renders the public view of the room.
func (r *Room) Snapshot() protocol.RoomSnapshot {
	snap := protocol.RoomSnapshot{
		ID:          r.Code,
		Mode:        r.Mode,
		PlayerCount: len(r.Players),
		MaxPlayers:  r.MaxPlayers,
		State:       r.Phase,
		Host:        "Unknown",
		Players:     make([]protocol.PlayerSnapshot, 0, len(r.Players)),
	}
	for _, p := range r.Players {
		if p.ID == r.Host {
			snap.Host = p.Name
		}
		snap.Players = append(snap.Players, protocol.PlayerSnapshot{
			ID:    p.ID.String(),
			Name:  p.Name,
			Ready: p.Ready,
			Score: p.Score,
			Lives: p.Lives,
			Alive: p.Alive,
		})
	}
	return snap
}
