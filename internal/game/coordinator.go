package game

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hexfall/hexfall/internal/protocol"
	"github.com/hexfall/hexfall/internal/rating"
	"github.com/hexfall/hexfall/internal/store"
)

// Directory resolves connection identity: display names, current room, and
// outbound delivery. *session.Registry satisfies it; tests use a mock.
type Directory interface {
	Name(id uuid.UUID) string
	Room(id uuid.UUID) string
	SetRoom(id uuid.UUID, code string)
	Send(id uuid.UUID, msg any)
}

// Config holds the coordinator's timing constants. They are configuration,
// not protocol; tests shrink them.
type Config struct {
	CountdownTick   time.Duration
	SweepInterval   time.Duration
	EmptyRoomTTL    time.Duration
	FinishedRoomTTL time.Duration
}

// DefaultConfig mirrors the production timings: 1s countdown ticks, a 60s
// sweep, empty rooms kept 30 minutes, finished rooms 5 minutes.
func DefaultConfig() Config {
	return Config{
		CountdownTick:   time.Second,
		SweepInterval:   time.Minute,
		EmptyRoomTTL:    30 * time.Minute,
		FinishedRoomTTL: 5 * time.Minute,
	}
}

// Coordinator owns the room registry and the matchmaking queue. A single
// mutex serializes every mutation, standing in for the source event loop:
// message handlers run to completion before the next one touches shared
// state.
type Coordinator struct {
	mu    sync.Mutex
	cfg   Config
	log   *logrus.Logger
	dir   Directory
	store *store.Store
	rooms map[string]*Room
	queue []*Ticket
}

// NewCoordinator wires the coordinator to its collaborators.
func NewCoordinator(cfg Config, dir Directory, st *store.Store, logger *logrus.Logger) *Coordinator {
	return &Coordinator{
		cfg:   cfg,
		log:   logger,
		dir:   dir,
		store: st,
		rooms: make(map[string]*Room),
	}
}

// Run starts the periodic stale-room sweep until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

// CreateRoom builds a room with the requester as host and first player.
func (c *Coordinator) CreateRoom(connID uuid.UUID, p protocol.CreateRoomPayload) string {
	mode := p.Mode
	if mode == "" {
		mode = ModeBattle
	}
	maxPlayers := 2
	if mode != ModeBattle {
		maxPlayers = p.MaxPlayers
		if maxPlayers == 0 {
			maxPlayers = 4
		}
		if maxPlayers < 2 {
			maxPlayers = 2
		}
		if maxPlayers > 4 {
			maxPlayers = 4
		}
	}

	name := c.dir.Name(connID)

	c.mu.Lock()
	defer c.mu.Unlock()

	code := c.newCode()
	room := NewRoom(code, connID, mode, maxPlayers)
	room.AddPlayer(connID, name)
	room.ApplySettings(p.Settings)
	c.rooms[code] = room
	c.dir.SetRoom(connID, code)

	c.dir.Send(connID, protocol.RoomCreated{
		Type:   protocol.EvtRoomCreated,
		RoomID: code,
		Room:   room.Snapshot(),
	})
	c.log.WithFields(logrus.Fields{"room": code, "player": name, "mode": mode}).Info("room created")
	return code
}

// JoinRoom adds the requester to an existing waiting room. Failures are
// reported to the requester and returned for callers that care.
func (c *Coordinator) JoinRoom(connID uuid.UUID, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	name := c.dir.Name(connID)

	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms[code]
	if !ok {
		c.dir.Send(connID, protocol.NewError(ErrRoomNotFound.Error()))
		return ErrRoomNotFound
	}
	if room.Phase != PhaseWaiting {
		c.dir.Send(connID, protocol.NewError(ErrRoomNotJoinable.Error()))
		return ErrRoomNotJoinable
	}
	if !room.AddPlayer(connID, name) {
		c.dir.Send(connID, protocol.NewError(ErrRoomFull.Error()))
		return ErrRoomFull
	}

	c.dir.SetRoom(connID, code)
	snap := room.Snapshot()
	c.dir.Send(connID, protocol.RoomJoined{Type: protocol.EvtRoomJoined, RoomID: code, Room: snap})
	c.broadcastExcept(room, connID, protocol.PlayerJoined{
		Type:     protocol.EvtPlayerJoined,
		PlayerID: connID.String(),
		Name:     name,
		Room:     snap,
	})
	c.log.WithFields(logrus.Fields{"room": code, "player": name}).Info("player joined room")
	return nil
}

// ToggleReady flips the requester's ready flag and starts the countdown
// once everyone in a 2+ roster is ready.
func (c *Coordinator) ToggleReady(connID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room := c.roomOf(connID)
	if room == nil {
		return
	}
	p := room.Player(connID)
	if p == nil {
		return
	}

	p.Ready = !p.Ready
	c.broadcast(room, protocol.RoomUpdate{Type: protocol.EvtRoomUpdate, Room: room.Snapshot()})

	if room.AllReady() && room.Phase == PhaseWaiting {
		c.startCountdown(room)
	}
}

// startCountdown flips the room to countdown and announces 3, 2, 1 at the
// configured tick before starting the game. Each tick re-checks that the
// room still exists in this registry and is still counting down, so a room
// emptied mid-countdown simply silences the timer. Caller holds the lock.
func (c *Coordinator) startCountdown(room *Room) {
	room.Phase = PhaseCountdown
	c.broadcast(room, protocol.Countdown{Type: protocol.EvtCountdown, Seconds: 3})

	go func() {
		ticker := time.NewTicker(c.cfg.CountdownTick)
		defer ticker.Stop()
		count := 3
		for range ticker.C {
			count--
			c.mu.Lock()
			if cur, ok := c.rooms[room.Code]; !ok || cur != room || room.Phase != PhaseCountdown {
				c.mu.Unlock()
				return
			}
			if count > 0 {
				c.broadcast(room, protocol.Countdown{Type: protocol.EvtCountdown, Seconds: count})
				c.mu.Unlock()
				continue
			}
			c.startGame(room)
			c.mu.Unlock()
			return
		}
	}()
}

// startGame resets every player for a fresh match and flips the room to
// playing. Caller holds the lock.
func (c *Coordinator) startGame(room *Room) {
	room.Phase = PhasePlaying
	room.StartedAt = time.Now()

	for _, p := range room.Players {
		p.Score = 0
		p.Lives = room.Settings.LivesCount
		p.Alive = true
		p.Ready = false
	}

	c.broadcast(room, protocol.GameStart{
		Type:      protocol.EvtGameStart,
		Room:      room.Snapshot(),
		Settings:  room.Settings,
		Timestamp: room.StartedAt.UnixMilli(),
	})
	c.log.WithField("room", room.Code).Info("game started")
}

// ReportState records the sender's latest snapshot and relays it to every
// other occupant. The payload is trusted as-is. No-op outside playing.
func (c *Coordinator) ReportState(connID uuid.UUID, p protocol.GameStatePayload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room := c.roomOf(connID)
	if room == nil || room.Phase != PhasePlaying {
		return
	}

	name := "Unknown"
	if ps := room.Player(connID); ps != nil {
		ps.Score = p.Score
		ps.Lives = p.Lives
		ps.LastUpdate = time.Now()
		name = ps.Name
	}

	c.broadcastExcept(room, connID, protocol.OpponentState{
		Type:        protocol.EvtOpponentState,
		PlayerID:    connID.String(),
		Name:        name,
		Score:       p.Score,
		Lives:       p.Lives,
		Blocks:      p.Blocks,
		HexRotation: p.HexRotation,
		GameState:   p.GameState,
	})
}

// ReportEvent relays an out-of-band gameplay event to the other occupants.
func (c *Coordinator) ReportEvent(connID uuid.UUID, p protocol.GameEventPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room := c.roomOf(connID)
	if room == nil || room.Phase != PhasePlaying {
		return
	}
	c.broadcastExcept(room, connID, protocol.OpponentEvent{
		Type:     protocol.EvtOpponentEvent,
		PlayerID: connID.String(),
		Event:    p.Event,
		Data:     p.Data,
	})
}

// ReportPenalty converts the sender's clears into penalty blocks for one or
// all opponents. No-op unless the room is playing with penalties enabled.
func (c *Coordinator) ReportPenalty(connID uuid.UUID, p protocol.SendPenaltyPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room := c.roomOf(connID)
	if room == nil || room.Phase != PhasePlaying || !room.Settings.PenaltyEnabled {
		return
	}

	senderName := "Unknown"
	if ps := room.Player(connID); ps != nil {
		senderName = ps.Name
	}
	combo := p.ComboMultiplier
	if combo == 0 {
		combo = 1
	}
	msg := protocol.PenaltyIncoming{
		Type:            protocol.EvtPenaltyIncoming,
		SenderID:        connID.String(),
		SenderName:      senderName,
		BlocksCleared:   p.BlocksCleared,
		ComboMultiplier: combo,
		PenaltyBlocks:   int(math.Floor(float64(p.BlocksCleared) * room.Settings.PenaltyMultiplier * 0.5)),
	}

	if p.TargetID != "" {
		if target, err := uuid.Parse(p.TargetID); err == nil {
			c.dir.Send(target, msg)
		}
		return
	}
	c.broadcastExcept(room, connID, msg)
}

// ReportElimination marks the sender dead and ends the game once at most
// one player remains alive.
func (c *Coordinator) ReportElimination(connID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room := c.roomOf(connID)
	if room == nil || room.Phase != PhasePlaying {
		return
	}

	name := "Unknown"
	if ps := room.Player(connID); ps != nil {
		ps.Alive = false
		ps.Lives = 0
		name = ps.Name
	}

	c.broadcast(room, protocol.PlayerOut{
		Type:     protocol.EvtPlayerOut,
		PlayerID: connID.String(),
		Name:     name,
	})
	c.checkWinCondition(room)
}

// checkWinCondition ends the game when at most one player is alive, with
// the survivor (if any) as winner. Caller holds the lock.
func (c *Coordinator) checkWinCondition(room *Room) {
	alive := room.AlivePlayers()
	if len(alive) > 1 {
		return
	}
	winner := uuid.Nil
	if len(alive) == 1 {
		winner = alive[0].ID
	}
	c.endGame(room, winner)
}

// endGame settles a match: final standings, profile and leaderboard
// updates, rating recomputation for 2-player battles, and the gameEnd
// broadcast. Idempotent through the finished-phase check alone; a second
// trigger from a racing elimination/leave path is a no-op. Caller holds the
// lock.
func (c *Coordinator) endGame(room *Room, winnerID uuid.UUID) {
	if room.Phase == PhaseFinished {
		return
	}
	room.Phase = PhaseFinished

	results := make([]protocol.PlayerResult, 0, len(room.Players))
	for _, p := range room.Players {
		results = append(results, protocol.PlayerResult{
			PlayerID: p.ID.String(),
			Name:     p.Name,
			Score:    p.Score,
			Lives:    p.Lives,
			Alive:    p.Alive,
			IsWinner: p.ID == winnerID,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	for _, r := range results {
		c.store.RecordResult(r.Name, r.Score, r.IsWinner)
		c.store.AddEntry(r.Name, r.Score, room.Mode)
	}

	// Ratings move only for head-to-head battles, driven by the score as
	// the outcome signal.
	if room.Mode == ModeBattle && len(results) == 2 {
		p1 := c.store.GetOrCreateProfile(results[0].Name)
		p2 := c.store.GetOrCreateProfile(results[1].Name)
		r1 := rating.Elo(p1.Rating, p2.Rating, results[0].Score, results[1].Score, rating.DefaultK)
		r2 := rating.Elo(p2.Rating, p1.Rating, results[1].Score, results[0].Score, rating.DefaultK)
		c.store.SetRating(results[0].Name, r1)
		c.store.SetRating(results[1].Name, r2)
	}

	c.store.SaveProfiles()

	end := protocol.GameEnd{Type: protocol.EvtGameEnd, Results: results}
	if winnerID != uuid.Nil {
		end.WinnerID = winnerID.String()
		if ps := room.Player(winnerID); ps != nil {
			end.WinnerName = ps.Name
		}
	}
	c.broadcast(room, end)
	c.log.WithFields(logrus.Fields{"room": room.Code, "winner": end.WinnerName}).Info("game ended")
}

// Leave vacates the requester's room slot immediately. During active play
// the leaver is first marked dead and the win condition re-evaluated with
// them still on the roster, so a settlement triggered by the departure
// records their final standing too. An empty roster destroys the room;
// otherwise remaining occupants are notified.
func (c *Coordinator) Leave(connID uuid.UUID) {
	name := c.dir.Name(connID)

	c.mu.Lock()
	defer c.mu.Unlock()

	room := c.roomOf(connID)
	if room == nil {
		return
	}

	if room.Phase == PhasePlaying {
		if ps := room.Player(connID); ps != nil {
			ps.Alive = false
			ps.Lives = 0
		}
		c.checkWinCondition(room)
	}

	remaining := room.RemovePlayer(connID)
	c.dir.SetRoom(connID, "")

	if remaining == 0 {
		delete(c.rooms, room.Code)
		c.log.WithField("room", room.Code).Info("room deleted")
		return
	}

	c.broadcast(room, protocol.PlayerLeft{
		Type:     protocol.EvtPlayerLeft,
		PlayerID: connID.String(),
		Name:     name,
		Room:     room.Snapshot(),
	})
}

// Disconnect handles a dropped transport: the matchmaking ticket and the
// room slot are vacated synchronously, with no grace period.
func (c *Coordinator) Disconnect(connID uuid.UUID) {
	c.removeTicket(connID)
	c.Leave(connID)
}

// Rename propagates a display-name change into the requester's current
// roster entry and pushes the updated room to all occupants.
func (c *Coordinator) Rename(connID uuid.UUID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room := c.roomOf(connID)
	if room == nil {
		return
	}
	p := room.Player(connID)
	if p == nil {
		return
	}
	p.Name = name
	c.broadcast(room, protocol.RoomUpdate{Type: protocol.EvtRoomUpdate, Room: room.Snapshot()})
}

// Chat broadcasts a trimmed, length-capped chat line to the whole room,
// sender included.
func (c *Coordinator) Chat(connID uuid.UUID, message string) {
	if runes := []rune(message); len(runes) > 200 {
		message = string(runes[:200])
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	name := c.dir.Name(connID)

	c.mu.Lock()
	defer c.mu.Unlock()

	room := c.roomOf(connID)
	if room == nil {
		return
	}
	c.broadcast(room, protocol.ChatMessage{
		Type:      protocol.EvtChatMessage,
		PlayerID:  connID.String(),
		Name:      name,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	})
}

// OpenRooms lists rooms a client could join right now: waiting phase with a
// free slot.
func (c *Coordinator) OpenRooms() []protocol.RoomSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := []protocol.RoomSnapshot{}
	for _, room := range c.rooms {
		if room.Phase == PhaseWaiting && len(room.Players) < room.MaxPlayers {
			out = append(out, room.Snapshot())
		}
	}
	return out
}

// WaitingRooms lists every waiting room, full or not, for the HTTP surface.
func (c *Coordinator) WaitingRooms() []protocol.RoomSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := []protocol.RoomSnapshot{}
	for _, room := range c.rooms {
		if room.Phase == PhaseWaiting {
			out = append(out, room.Snapshot())
		}
	}
	return out
}

// RoomCount reports how many rooms are live in any phase.
func (c *Coordinator) RoomCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rooms)
}

// sweep garbage-collects stale rooms: empty ones past the creation TTL and
// finished ones past the game-start TTL.
func (c *Coordinator) sweep() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for code, room := range c.rooms {
		if len(room.Players) == 0 && now.Sub(room.CreatedAt) > c.cfg.EmptyRoomTTL {
			delete(c.rooms, code)
			c.log.WithField("room", code).Info("swept empty room")
			continue
		}
		if room.Phase == PhaseFinished && !room.StartedAt.IsZero() && now.Sub(room.StartedAt) > c.cfg.FinishedRoomTTL {
			delete(c.rooms, code)
			c.log.WithField("room", code).Info("swept finished room")
		}
	}
}

// roomOf resolves the requester's current room, nil when roomless or the
// room is gone. Caller holds the lock.
func (c *Coordinator) roomOf(connID uuid.UUID) *Room {
	code := c.dir.Room(connID)
	if code == "" {
		return nil
	}
	return c.rooms[code]
}

// newCode generates a room code unique among live rooms. Caller holds the
// lock.
func (c *Coordinator) newCode() string {
	return GenerateCode(func(code string) bool {
		_, exists := c.rooms[code]
		return exists
	})
}

// broadcast sends msg to every occupant. Caller holds the lock; delivery is
// a non-blocking queue write, so this never stalls the coordinator.
func (c *Coordinator) broadcast(room *Room, msg any) {
	for _, p := range room.Players {
		c.dir.Send(p.ID, msg)
	}
}

// broadcastExcept sends msg to every occupant but one.
func (c *Coordinator) broadcastExcept(room *Room, except uuid.UUID, msg any) {
	for _, p := range room.Players {
		if p.ID != except {
			c.dir.Send(p.ID, msg)
		}
	}
}
