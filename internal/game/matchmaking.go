package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hexfall/hexfall/internal/protocol"
)

// Ticket is one waiting matchmaking entry.
type Ticket struct {
	ConnID   uuid.UUID
	Name     string
	Mode     string
	JoinedAt time.Time
}

// Enqueue adds the requester to the quick-match pool and immediately
// attempts a pairing pass for the requested mode. A connection holds at
// most one live ticket.
func (c *Coordinator) Enqueue(connID uuid.UUID, mode string) error {
	if mode == "" {
		mode = ModeBattle
	}
	name := c.dir.Name(connID)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range c.queue {
		if t.ConnID == connID {
			c.dir.Send(connID, protocol.NewError(ErrAlreadyQueued.Error()))
			return ErrAlreadyQueued
		}
	}

	c.queue = append(c.queue, &Ticket{
		ConnID:   connID,
		Name:     name,
		Mode:     mode,
		JoinedAt: time.Now(),
	})
	c.dir.Send(connID, protocol.Matchmaking{
		Type:      protocol.EvtMatchmaking,
		Status:    "searching",
		QueueSize: len(c.queue),
	})

	c.tryMatch(mode)
	return nil
}

// CancelQueue removes the requester's ticket, if any, and confirms the
// cancellation either way.
func (c *Coordinator) CancelQueue(connID uuid.UUID) {
	c.removeTicket(connID)
	c.dir.Send(connID, protocol.Matchmaking{Type: protocol.EvtMatchmaking, Status: "cancelled"})
}

// QueueSize reports the number of live tickets.
func (c *Coordinator) QueueSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// removeTicket drops any ticket held by connID.
func (c *Coordinator) removeTicket(connID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, t := range c.queue {
		if t.ConnID == connID {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return
		}
	}
}

// tryMatch pairs the two oldest tickets of the given mode into a fresh
// room. Pairing always takes exactly two tickets, even for modes whose
// rooms hold more; larger quick-match parties were never supported. Caller
// holds the lock.
func (c *Coordinator) tryMatch(mode string) {
	var matched []*Ticket
	for _, t := range c.queue {
		if t.Mode == mode {
			matched = append(matched, t)
			if len(matched) == 2 {
				break
			}
		}
	}
	if len(matched) < 2 {
		return
	}

	maxPlayers := 2
	if mode != ModeBattle {
		maxPlayers = 4
	}
	code := c.newCode()
	room := NewRoom(code, matched[0].ConnID, mode, maxPlayers)

	for _, t := range matched {
		room.AddPlayer(t.ConnID, t.Name)
		c.dir.SetRoom(t.ConnID, code)
		for i, q := range c.queue {
			if q.ConnID == t.ConnID {
				c.queue = append(c.queue[:i], c.queue[i+1:]...)
				break
			}
		}
	}
	c.rooms[code] = room

	snap := room.Snapshot()
	for _, t := range matched {
		c.dir.Send(t.ConnID, protocol.MatchFound{
			Type:   protocol.EvtMatchFound,
			RoomID: code,
			Room:   snap,
		})
	}
	c.log.WithFields(logrus.Fields{
		"room":    code,
		"mode":    mode,
		"players": []string{matched[0].Name, matched[1].Name},
	}).Info("quick match created")
}
