package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/hexfall/hexfall/internal/protocol"
	"github.com/hexfall/hexfall/internal/store"
)

// serverStats is the aggregate snapshot served by /api/stats.
type serverStats struct {
	OnlinePlayers int `json:"onlinePlayers"`
	ActiveRooms   int `json:"activeRooms"`
	QueueSize     int `json:"queueSize"`
	TotalGames    int `json:"totalGames"`
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warnf("failed to encode response: %v", err)
	}
}

// apiLeaderboard serves GET /api/leaderboard?mode=&limit=.
func (s *Server) apiLeaderboard(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	s.writeJSON(w, map[string][]store.Entry{
		"entries": s.store.Leaderboard(mode, limit),
	})
}

// apiRooms serves GET /api/rooms: every waiting room, full or not.
func (s *Server) apiRooms(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string][]protocol.RoomSnapshot{
		"rooms": s.coord.WaitingRooms(),
	})
}

// apiProfile serves GET /api/profile/{name}. Profiles are created on first
// reference, so an unknown name answers with a fresh default profile.
func (s *Server) apiProfile(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/profile/")
	if name == "" {
		http.Error(w, "missing profile name", http.StatusBadRequest)
		return
	}
	s.writeJSON(w, s.store.GetOrCreateProfile(name))
}

// apiStats serves GET /api/stats.
func (s *Server) apiStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, serverStats{
		OnlinePlayers: s.registry.Count(),
		ActiveRooms:   s.coord.RoomCount(),
		QueueSize:     s.coord.QueueSize(),
		TotalGames:    s.store.EntryCount(),
	})
}
