package protocol

import "encoding/json"

// Outbound message types.
const (
	EvtRoomCreated     = "roomCreated"
	EvtRoomJoined      = "roomJoined"
	EvtRoomUpdate      = "roomUpdate"
	EvtPlayerJoined    = "playerJoined"
	EvtPlayerLeft      = "playerLeft"
	EvtRoomList        = "roomList"
	EvtMatchmaking     = "matchmaking"
	EvtMatchFound      = "matchFound"
	EvtCountdown       = "countdown"
	EvtGameStart       = "gameStart"
	EvtOpponentState   = "opponentState"
	EvtOpponentEvent   = "opponentEvent"
	EvtPenaltyIncoming = "penaltyIncoming"
	EvtPlayerOut       = "playerOut"
	EvtGameEnd         = "gameEnd"
	EvtChatMessage     = "chatMessage"
	EvtProfileData     = "profileData"
	EvtLeaderboardData = "leaderboardData"
	EvtError           = "error"
)

// Settings are the effective match settings of a room, echoed back to
// clients on game start.
type Settings struct {
	PenaltyEnabled    bool    `json:"penaltyEnabled"`
	PenaltyMultiplier float64 `json:"penaltyMultiplier"`
	StartSpeed        float64 `json:"startSpeed"`
	LivesCount        int     `json:"livesCount"`
}

// PlayerSnapshot is one roster entry in a public room snapshot.
type PlayerSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
	Score int    `json:"score"`
	Lives int    `json:"lives"`
	Alive bool   `json:"alive"`
}

// RoomSnapshot is the public view of a room, safe to send to any client.
type RoomSnapshot struct {
	ID          string           `json:"id"`
	Mode        string           `json:"mode"`
	PlayerCount int              `json:"playerCount"`
	MaxPlayers  int              `json:"maxPlayers"`
	State       string           `json:"state"`
	Host        string           `json:"host"`
	Players     []PlayerSnapshot `json:"players"`
}

// RoomCreated confirms room creation to the requester.
type RoomCreated struct {
	Type   string       `json:"type"`
	RoomID string       `json:"roomId"`
	Room   RoomSnapshot `json:"room"`
}

// RoomJoined confirms a successful join to the requester.
type RoomJoined struct {
	Type   string       `json:"type"`
	RoomID string       `json:"roomId"`
	Room   RoomSnapshot `json:"room"`
}

// RoomUpdate pushes a fresh room snapshot to every occupant.
type RoomUpdate struct {
	Type string       `json:"type"`
	Room RoomSnapshot `json:"room"`
}

// PlayerJoined notifies existing occupants of a new player.
type PlayerJoined struct {
	Type     string       `json:"type"`
	PlayerID string       `json:"playerId"`
	Name     string       `json:"name"`
	Room     RoomSnapshot `json:"room"`
}

// PlayerLeft notifies remaining occupants that a player left.
type PlayerLeft struct {
	Type     string       `json:"type"`
	PlayerID string       `json:"playerId"`
	Name     string       `json:"name"`
	Room     RoomSnapshot `json:"room"`
}

// RoomList answers a getRooms request with joinable rooms.
type RoomList struct {
	Type  string         `json:"type"`
	Rooms []RoomSnapshot `json:"rooms"`
}

// Matchmaking reports queue status to the requester.
type Matchmaking struct {
	Type      string `json:"type"`
	Status    string `json:"status"`
	QueueSize int    `json:"queueSize,omitempty"`
}

// MatchFound delivers the paired room to each matched player.
type MatchFound struct {
	Type   string       `json:"type"`
	RoomID string       `json:"roomId"`
	Room   RoomSnapshot `json:"room"`
}

// Countdown announces the remaining seconds before game start.
type Countdown struct {
	Type    string `json:"type"`
	Seconds int    `json:"seconds"`
}

// GameStart announces the transition to playing.
type GameStart struct {
	Type      string       `json:"type"`
	Room      RoomSnapshot `json:"room"`
	Settings  Settings     `json:"settings"`
	Timestamp int64        `json:"timestamp"`
}

// OpponentState relays another player's periodic state snapshot.
type OpponentState struct {
	Type        string          `json:"type"`
	PlayerID    string          `json:"playerId"`
	Name        string          `json:"name"`
	Score       int             `json:"score"`
	Lives       int             `json:"lives"`
	Blocks      json.RawMessage `json:"blocks,omitempty"`
	HexRotation float64         `json:"hexRotation"`
	GameState   string          `json:"gameState,omitempty"`
}

// OpponentEvent relays an out-of-band gameplay event.
type OpponentEvent struct {
	Type     string          `json:"type"`
	PlayerID string          `json:"playerId"`
	Event    string          `json:"event"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// PenaltyIncoming delivers penalty blocks caused by an opponent's clears.
type PenaltyIncoming struct {
	Type            string  `json:"type"`
	SenderID        string  `json:"senderId"`
	SenderName      string  `json:"senderName"`
	BlocksCleared   int     `json:"blocksCleared"`
	ComboMultiplier float64 `json:"comboMultiplier"`
	PenaltyBlocks   int     `json:"penaltyBlocks"`
}

// PlayerOut announces an elimination.
type PlayerOut struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// PlayerResult is one row of the final standings, sorted by score
// descending.
type PlayerResult struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Lives    int    `json:"lives"`
	Alive    bool   `json:"alive"`
	IsWinner bool   `json:"isWinner"`
}

// GameEnd carries the final standings of a finished match.
type GameEnd struct {
	Type       string         `json:"type"`
	Results    []PlayerResult `json:"results"`
	WinnerID   string         `json:"winnerId,omitempty"`
	WinnerName string         `json:"winnerName,omitempty"`
}

// ChatMessage broadcasts a chat line to the whole room, sender included.
type ChatMessage struct {
	Type      string `json:"type"`
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// ProfileData answers a profile request. Profile is the persistent profile
// document, marshaled as-is.
type ProfileData struct {
	Type    string `json:"type"`
	Profile any    `json:"profile"`
}

// LeaderboardData answers a leaderboard request.
type LeaderboardData struct {
	Type    string `json:"type"`
	Entries any    `json:"entries"`
}

// Error surfaces a user-visible failure to the originating connection only.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewError builds an error message.
func NewError(msg string) Error {
	return Error{Type: EvtError, Message: msg}
}
