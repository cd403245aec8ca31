package ws

import "encoding/json"

// MessageType constants for the battle WebSocket protocol.
const (
	// Client -> Server
	TypeRegister          = "register"
	TypeJoinQueue         = "join_queue"
	TypeLeaveQueue        = "leave_queue"
	TypeCreatePrivateRoom = "create_private_room"
	TypeJoinPrivateRoom   = "join_private_room"
	TypePlayerReady       = "player_ready"
	TypeSubmitAnswer      = "submit_answer"

	// Server -> Client
	TypeRegistered           = "registered"
	TypeQueueJoined          = "queue_joined"
	TypeQueueLeft            = "queue_left"
	TypePrivateRoomCreated   = "private_room_created"
	TypeMatchFound           = "match_found"
	TypeOpponentInfo         = "opponent_info"
	TypePlayerReadyUpdate    = "player_ready_update"
	TypeCountdown            = "countdown"
	TypeBattleStart          = "battle_start"
	TypeAnswerSubmitted      = "answer_submitted"
	TypeNextQuestion         = "next_question"
	TypeBattleEnd            = "battle_end"
	TypeOpponentDisconnected = "opponent_disconnected"
	TypeError                = "error"
)

// Message wraps all WebSocket payloads with a type tag.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage marshals payload into a typed envelope.
func NewMessage(msgType string, payload interface{}) Message {
	msg := Message{Type: msgType}
	if payload != nil {
		msg.Payload, _ = json.Marshal(payload)
	}
	return msg
}

// Client Messages (incoming)

type RegisterPayload struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Level       int    `json:"level"`
}

type JoinPrivateRoomPayload struct {
	RoomCode string `json:"room_code"`
}

type PlayerReadyPayload struct {
	RoomID string `json:"room_id"`
}

type SubmitAnswerPayload struct {
	RoomID        string `json:"room_id"`
	QuestionIndex int    `json:"question_index"`
	Answer        int    `json:"answer"`
	TimeRemaining int    `json:"time_remaining"`
}

// Server Messages (outgoing)

type RegisteredPayload struct {
	ConnectionID string `json:"connection_id"`
}

type QueueJoinedPayload struct {
	Position int `json:"position"`
}

type PrivateRoomCreatedPayload struct {
	RoomCode       string `json:"room_code"`
	ExpiresSeconds int    `json:"expires_seconds"`
}

type MatchFoundPayload struct {
	RoomID        string            `json:"room_id"`
	Ranked        bool              `json:"ranked"`
	PlayerIndex   int               `json:"player_index"`
	Questions     []QuestionPayload `json:"questions"`
	QuestionCount int               `json:"question_count"`
}

// QuestionPayload is the client-facing question snapshot. The correct option
// index never leaves the server before the answer reveal.
type QuestionPayload struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Subject string   `json:"subject,omitempty"`
}

type OpponentInfoPayload struct {
	DisplayName string `json:"display_name"`
	Level       int    `json:"level"`
}

type PlayerReadyUpdatePayload struct {
	RoomID       string `json:"room_id"`
	Player1Ready bool   `json:"player1_ready"`
	Player2Ready bool   `json:"player2_ready"`
}

type CountdownPayload struct {
	RoomID string `json:"room_id"`
	Count  int    `json:"count"`
}

type BattleStartPayload struct {
	RoomID          string `json:"room_id"`
	QuestionIndex   int    `json:"question_index"`
	TimePerQuestion int    `json:"time_per_question"`
}

type AnswerSubmittedPayload struct {
	RoomID        string       `json:"room_id"`
	PlayerIndex   int          `json:"player_index"`
	QuestionIndex int          `json:"question_index"`
	IsCorrect     bool         `json:"is_correct"`
	CorrectAnswer int          `json:"correct_answer"`
	Explanation   string       `json:"explanation,omitempty"`
	Scores        []ScoreState `json:"scores"`
}

type ScoreState struct {
	Score    int `json:"score"`
	Answered int `json:"answered"`
}

type NextQuestionPayload struct {
	RoomID          string `json:"room_id"`
	QuestionIndex   int    `json:"question_index"`
	TimePerQuestion int    `json:"time_per_question"`
}

type BattleEndPayload struct {
	RoomID      string        `json:"room_id"`
	Winner      *WinnerResult `json:"winner"` // nil on draw
	IsDraw      bool          `json:"is_draw"`
	Forfeit     bool          `json:"forfeit"`
	FinalScores []FinalScore  `json:"final_scores"`
	XPReward    int           `json:"xp_reward"`
}

type WinnerResult struct {
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
}

type FinalScore struct {
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
}

type OpponentDisconnectedPayload struct {
	RoomID string `json:"room_id"`
	Winner string `json:"winner"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
