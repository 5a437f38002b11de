package handlers

import (
	"context"
	"encoding/json"
	"time"

	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/hexfall/hexfall/internal/middleware"
	"github.com/hexfall/hexfall/internal/session"
)

// Subprotocol is the WebSocket subprotocol clients must speak.
const Subprotocol = "hexfall"

// handleWS upgrades the connection, registers the session, and runs the
// message loop until the client goes away. Disconnection is an immediate
// state transition: the queue ticket and room slot are vacated before the
// handler returns, with no grace period.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{Subprotocol},
		OriginPatterns: []string{"*"}, // Adjust in production.
	})
	if err != nil {
		s.log.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	if c.Subprotocol() != Subprotocol {
		c.Close(BadSubprotocolError, "client must speak the hexfall subprotocol")
		return
	}

	connID := uuid.New()
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn := session.NewConn(connID, s.log)
	conn.Cancel = cancel
	s.registry.Register(conn)
	middleware.LogWebSocketConnect(s.log, r.RemoteAddr, r.URL.Path)

	go s.writePump(ctx, c, conn)

	readErr := s.readLoop(ctx, c, conn)

	// Vacate the room slot and ticket synchronously, then drop the session.
	s.coord.Disconnect(connID)
	s.registry.Forget(connID)
	middleware.LogWebSocketDisconnect(s.log, r.RemoteAddr, r.URL.Path, readErr)
}

// readLoop reads client messages until the connection closes and hands
// each one to the dispatcher.
func (s *Server) readLoop(ctx context.Context, c *websocket.Conn, conn *session.Conn) error {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			continue
		}
		s.dispatch(conn, msg)
	}
}

// writePump drains the session's outbound queue onto the wire and pings
// periodically so dead peers are detected.
func (s *Server) writePump(ctx context.Context, c *websocket.Conn, conn *session.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-conn.Out:
			data, err := json.Marshal(msg)
			if err != nil {
				s.log.Warnf("session %s: failed to marshal outgoing message: %v", conn.ID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
