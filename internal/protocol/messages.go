// Package protocol defines the message contract between connected clients
// and the match coordinator. Inbound messages arrive as a tagged envelope
// and are decoded into a per-type payload at the boundary before dispatch;
// outbound messages are concrete structs carrying their own type tag.
package protocol

import "encoding/json"

// Inbound message types.
const (
	MsgSetName          = "setName"
	MsgCreateRoom       = "createRoom"
	MsgJoinRoom         = "joinRoom"
	MsgQuickMatch       = "quickMatch"
	MsgCancelQuickMatch = "cancelQuickMatch"
	MsgPlayerReady      = "playerReady"
	MsgGameState        = "gameState"
	MsgGameEvent        = "gameEvent"
	MsgSendPenalty      = "sendPenalty"
	MsgPlayerEliminated = "playerEliminated"
	MsgChatMessage      = "chatMessage"
	MsgLeaveRoom        = "leaveRoom"
	MsgGetRooms         = "getRooms"
	MsgGetLeaderboard   = "getLeaderboard"
	MsgGetProfile       = "getProfile"
)

// Envelope is the outer frame of every client message. Data holds the
// type-specific payload and may be absent for messages without one.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// SetNamePayload carries the requested display name.
type SetNamePayload struct {
	Name string `json:"name"`
}

// CreateRoomPayload carries room creation parameters. Settings fields left
// unset fall back to the room defaults.
type CreateRoomPayload struct {
	Mode       string           `json:"mode"`
	MaxPlayers int              `json:"maxPlayers,omitempty"`
	Settings   *SettingsPayload `json:"settings,omitempty"`
}

// SettingsPayload is the client-supplied subset of match settings. Pointer
// fields distinguish "not provided" from zero values.
type SettingsPayload struct {
	PenaltyEnabled    *bool    `json:"penaltyEnabled,omitempty"`
	PenaltyMultiplier *float64 `json:"penaltyMultiplier,omitempty"`
	StartSpeed        *float64 `json:"startSpeed,omitempty"`
	LivesCount        *int     `json:"livesCount,omitempty"`
}

// JoinRoomPayload carries the room code to join.
type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

// QuickMatchPayload carries the requested matchmaking mode.
type QuickMatchPayload struct {
	Mode string `json:"mode"`
}

// GameStatePayload is a periodic state snapshot from a playing client. The
// block layout and rotation are relayed verbatim; the server never
// interprets them.
type GameStatePayload struct {
	Score       int             `json:"score"`
	Lives       int             `json:"lives"`
	Blocks      json.RawMessage `json:"blocks,omitempty"`
	HexRotation float64         `json:"hexRotation"`
	GameState   string          `json:"gameState,omitempty"`
}

// GameEventPayload is an out-of-band gameplay event relayed to opponents.
type GameEventPayload struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// SendPenaltyPayload reports cleared blocks that translate into penalty
// blocks for one or all opponents.
type SendPenaltyPayload struct {
	BlocksCleared   int     `json:"blocksCleared"`
	ComboMultiplier float64 `json:"comboMultiplier,omitempty"`
	TargetID        string  `json:"targetId,omitempty"`
}

// ChatPayload carries a room chat message.
type ChatPayload struct {
	Message string `json:"message"`
}

// LeaderboardQuery filters the leaderboard request.
type LeaderboardQuery struct {
	Mode  string `json:"mode,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// ProfileQuery names the profile to fetch; empty means the caller's own.
type ProfileQuery struct {
	Name string `json:"name,omitempty"`
}
