package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/hexfall/hexfall/internal/protocol"
	"github.com/hexfall/hexfall/internal/session"
)

// decode unmarshals a payload, tolerating an absent one so messages
// without parameters need no data field.
func decode[T any](data json.RawMessage) (T, error) {
	var v T
	if len(data) == 0 {
		return v, nil
	}
	err := json.Unmarshal(data, &v)
	return v, err
}

// dispatch validates one inbound envelope and routes it to the right
// coordinator operation. Every failure is answered on the sender's own
// connection; nothing here can take the process down.
func (s *Server) dispatch(conn *session.Conn, raw []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		conn.WriteError("Invalid JSON format")
		return
	}
	connID := conn.ID

	switch env.Type {
	case protocol.MsgSetName:
		p, err := decode[protocol.SetNamePayload](env.Data)
		if err != nil {
			conn.WriteError("Invalid payload for setName")
			return
		}
		name := s.registry.SetName(connID, p.Name)
		s.coord.Rename(connID, name)
		conn.Write(protocol.ProfileData{
			Type:    protocol.EvtProfileData,
			Profile: s.store.GetOrCreateProfile(name),
		})

	case protocol.MsgCreateRoom:
		p, err := decode[protocol.CreateRoomPayload](env.Data)
		if err != nil {
			conn.WriteError("Invalid payload for createRoom")
			return
		}
		s.coord.CreateRoom(connID, p)

	case protocol.MsgJoinRoom:
		p, err := decode[protocol.JoinRoomPayload](env.Data)
		if err != nil {
			conn.WriteError("Invalid payload for joinRoom")
			return
		}
		// Failures are already reported to the requester.
		_ = s.coord.JoinRoom(connID, p.RoomID)

	case protocol.MsgQuickMatch:
		p, err := decode[protocol.QuickMatchPayload](env.Data)
		if err != nil {
			conn.WriteError("Invalid payload for quickMatch")
			return
		}
		_ = s.coord.Enqueue(connID, p.Mode)

	case protocol.MsgCancelQuickMatch:
		s.coord.CancelQueue(connID)

	case protocol.MsgPlayerReady:
		s.coord.ToggleReady(connID)

	case protocol.MsgGameState:
		p, err := decode[protocol.GameStatePayload](env.Data)
		if err != nil {
			conn.WriteError("Invalid payload for gameState")
			return
		}
		s.coord.ReportState(connID, p)

	case protocol.MsgGameEvent:
		p, err := decode[protocol.GameEventPayload](env.Data)
		if err != nil {
			conn.WriteError("Invalid payload for gameEvent")
			return
		}
		s.coord.ReportEvent(connID, p)

	case protocol.MsgSendPenalty:
		p, err := decode[protocol.SendPenaltyPayload](env.Data)
		if err != nil {
			conn.WriteError("Invalid payload for sendPenalty")
			return
		}
		s.coord.ReportPenalty(connID, p)

	case protocol.MsgPlayerEliminated:
		s.coord.ReportElimination(connID)

	case protocol.MsgChatMessage:
		p, err := decode[protocol.ChatPayload](env.Data)
		if err != nil {
			conn.WriteError("Invalid payload for chatMessage")
			return
		}
		s.coord.Chat(connID, p.Message)

	case protocol.MsgLeaveRoom:
		s.coord.Leave(connID)

	case protocol.MsgGetRooms:
		conn.Write(protocol.RoomList{
			Type:  protocol.EvtRoomList,
			Rooms: s.coord.OpenRooms(),
		})

	case protocol.MsgGetLeaderboard:
		p, err := decode[protocol.LeaderboardQuery](env.Data)
		if err != nil {
			conn.WriteError("Invalid payload for getLeaderboard")
			return
		}
		conn.Write(protocol.LeaderboardData{
			Type:    protocol.EvtLeaderboardData,
			Entries: s.store.Leaderboard(p.Mode, p.Limit),
		})

	case protocol.MsgGetProfile:
		p, err := decode[protocol.ProfileQuery](env.Data)
		if err != nil {
			conn.WriteError("Invalid payload for getProfile")
			return
		}
		name := p.Name
		if name == "" {
			name = s.registry.Name(connID)
		}
		conn.Write(protocol.ProfileData{
			Type:    protocol.EvtProfileData,
			Profile: s.store.GetOrCreateProfile(name),
		})

	default:
		conn.WriteError(fmt.Sprintf("Unknown action type: %s", env.Type))
	}
}
