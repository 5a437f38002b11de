package game

import "errors"

// Failures surfaced to the originating connection as user-visible error
// messages. None of them is ever fatal to the server.
var (
	ErrRoomNotFound    = errors.New("Room not found")
	ErrRoomNotJoinable = errors.New("Game already in progress")
	ErrRoomFull        = errors.New("Room is full")
	ErrAlreadyQueued   = errors.New("Already in queue")
)
