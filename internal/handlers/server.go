// Package handlers exposes the two external surfaces: the WebSocket relay
// endpoint clients play over, and a small read-only HTTP API.
package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/hexfall/hexfall/internal/game"
	"github.com/hexfall/hexfall/internal/middleware"
	"github.com/hexfall/hexfall/internal/session"
	"github.com/hexfall/hexfall/internal/store"
)

// Server bundles the collaborators every handler needs.
type Server struct {
	log      *logrus.Logger
	registry *session.Registry
	coord    *game.Coordinator
	store    *store.Store
}

// NewServer wires the handler layer to its collaborators.
func NewServer(logger *logrus.Logger, registry *session.Registry, coord *game.Coordinator, st *store.Store) *Server {
	return &Server{
		log:      logger,
		registry: registry,
		coord:    coord,
		store:    st,
	}
}

// Routes assembles the full mux: the game websocket plus the read-only API.
func (s *Server) Routes() http.Handler {
	logged := middleware.LogMiddleware(s.log)

	mux := http.NewServeMux()
	mux.Handle("/ws", http.HandlerFunc(s.handleWS))
	mux.Handle("/api/leaderboard", logged(http.HandlerFunc(s.apiLeaderboard)))
	mux.Handle("/api/rooms", logged(http.HandlerFunc(s.apiRooms)))
	mux.Handle("/api/profile/", logged(http.HandlerFunc(s.apiProfile)))
	mux.Handle("/api/stats", logged(http.HandlerFunc(s.apiStats)))
	return mux
}
