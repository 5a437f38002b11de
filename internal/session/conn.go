// Package session tracks live connections: the join table between
// transport-layer identity (one websocket) and game-layer identity
// (display name plus current room).
package session

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hexfall/hexfall/internal/protocol"
)

// Conn is the outbound half of one live connection. Messages are queued on
// Out and drained by the connection's write pump; Cancel tears down the
// pump goroutines.
type Conn struct {
	ID     uuid.UUID
	Cancel func()
	Out    chan any

	log *logrus.Logger
}

// NewConn allocates a connection with a buffered outbound queue.
func NewConn(id uuid.UUID, logger *logrus.Logger) *Conn {
	return &Conn{
		ID:  id,
		Out: make(chan any, 32),
		log: logger,
	}
}

// Write queues msg without blocking. A full or closed queue drops the
// message; state sync is most-recent-wins, so a dropped snapshot is
// superseded by the next one.
func (c *Conn) Write(msg any) {
	select {
	case c.Out <- msg:
	default:
		c.log.Warnf("session %s: outbound queue full, dropping message", c.ID)
	}
}

// WriteError queues a user-visible error message.
func (c *Conn) WriteError(msg string) {
	c.Write(protocol.NewError(msg))
}
