// Package battle implements real-time 1v1 quiz battles: FIFO matchmaking,
// private rooms, and the per-room question/scoring state machine.
package battle

import (
	"errors"

	"github.com/google/uuid"
)

// Room lifecycle states.
const (
	StatusWaiting   = "waiting"
	StatusCountdown = "countdown"
	StatusActive    = "active"
	StatusFinished  = "finished"
)

// Scoring and reward constants.
const (
	// BaseScore is awarded for any correct answer; the speed bonus adds
	// floor(timeRemaining/2) on top.
	BaseScore = 10
	// XPWinner is granted to the winning player.
	XPWinner = 100
	// XPDraw is granted to both players on a draw.
	XPDraw = 50
	// NoAnswer marks a server-synthesized answer for a silent player.
	NoAnswer = -1
)

// Identity is the client-supplied player identity attached to a connection.
type Identity struct {
	UserID      string
	DisplayName string
	Level       int
}

// Player is one seat in a battle room.
type Player struct {
	ConnID   uuid.UUID
	Identity Identity
	Score    int
	Answered int
	Ready    bool
}

// AnswerRecord is one player's recorded answer for one question index.
type AnswerRecord struct {
	Chosen    int
	IsCorrect bool
	Points    int
}

// PlayerResult is a player's final standing.
type PlayerResult struct {
	UserID      string
	DisplayName string
	Score       int
}

// Outcome is the terminal result of a battle.
type Outcome struct {
	WinnerIndex int // -1 on draw
	IsDraw      bool
	Forfeit     bool
	Players     [2]PlayerResult
	XPReward    int
}

var (
	ErrNotRegistered   = errors.New("connection not registered")
	ErrRoomNotFound    = errors.New("room not found")
	ErrNotParticipant  = errors.New("not a participant in this room")
	ErrRoomNotWaiting  = errors.New("room is not waiting for ready signals")
	ErrRoomNotActive   = errors.New("room is not active")
	ErrStaleAnswer     = errors.New("answer targets a stale question index")
	ErrDuplicateAnswer = errors.New("answer already recorded for this question")
	ErrTicketNotFound  = errors.New("room code not found or expired")
	ErrSelfJoin        = errors.New("cannot join your own room")
)
