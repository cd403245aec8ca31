package battle

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medarena/medquiz/internal/question"
)

// answerKey identifies one player's answer slot for one question index.
// Keying the answers map on (connection, index) makes duplicate submissions
// idempotent by construction.
type answerKey struct {
	conn  uuid.UUID
	index int
}

// Room is the per-match state machine: waiting -> countdown -> active ->
// finished. The question sequence is fixed at creation and identical for both
// players. All transitions are serialized by the room mutex, so each event is
// handled run-to-completion relative to other events on the same room.
type Room struct {
	mu sync.Mutex

	id             string
	ranked         bool
	perQuestionSec int
	players        [2]*Player
	questions      []question.BattleQuestion
	current        int
	status         string
	startedAt      time.Time
	answers        map[answerKey]AnswerRecord
}

// NewRoom creates a room in the waiting state.
func NewRoom(id string, p1, p2 Player, questions []question.BattleQuestion, ranked bool, perQuestionSec int) *Room {
	return &Room{
		id:             id,
		ranked:         ranked,
		perQuestionSec: perQuestionSec,
		players:        [2]*Player{&p1, &p2},
		questions:      questions,
		status:         StatusWaiting,
		answers:        make(map[answerKey]AnswerRecord),
	}
}

// ID returns the room identifier.
func (r *Room) ID() string { return r.id }

// Ranked reports whether the room came from the matchmaking queue.
func (r *Room) Ranked() bool { return r.ranked }

// Status returns the current lifecycle state.
func (r *Room) Status() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// CurrentIndex returns the 0-based index of the question in play.
func (r *Room) CurrentIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Questions returns the fixed question sequence.
func (r *Room) Questions() []question.BattleQuestion {
	return r.questions
}

// PlayerIndex returns the seat (0 or 1) for a connection, or -1.
func (r *Room) PlayerIndex(connID uuid.UUID) int {
	for i, p := range r.players {
		if p.ConnID == connID {
			return i
		}
	}
	return -1
}

// Seat returns a snapshot of the player in the given seat.
func (r *Room) Seat(i int) Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.players[i]
}

// MarkReady records a player's ready signal. When both players are ready the
// room transitions to countdown and bothReady is true.
func (r *Room) MarkReady(connID uuid.UUID) (bothReady bool, states [2]bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusWaiting {
		return false, states, ErrRoomNotWaiting
	}
	idx := r.PlayerIndex(connID)
	if idx == -1 {
		return false, states, ErrNotParticipant
	}

	r.players[idx].Ready = true
	states[0] = r.players[0].Ready
	states[1] = r.players[1].Ready

	if states[0] && states[1] {
		r.status = StatusCountdown
		return true, states, nil
	}
	return false, states, nil
}

// Activate transitions countdown -> active and records the start time.
func (r *Room) Activate(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusCountdown {
		return false
	}
	r.status = StatusActive
	r.startedAt = now
	return true
}

// SubmitResult describes a recorded answer for broadcasting.
type SubmitResult struct {
	PlayerIndex   int
	QuestionIndex int
	IsCorrect     bool
	CorrectOption int
	Explanation   string
	Points        int
	Scores        [2]ScoreSnapshot
	BothAnswered  bool
}

// ScoreSnapshot is a player's running score state.
type ScoreSnapshot struct {
	Score    int
	Answered int
}

// Submit records an answer for the question at index. A correct answer scores
// BaseScore plus floor(timeRemaining/2); timeRemaining is clamped to
// [0, perQuestionSec] since it is client-reported. Duplicate submissions for
// the same (player, index) return ErrDuplicateAnswer; submissions for an
// index other than the current one return ErrStaleAnswer.
func (r *Room) Submit(connID uuid.UUID, index, chosen, timeRemaining int) (SubmitResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive {
		return SubmitResult{}, ErrRoomNotActive
	}
	idx := r.PlayerIndex(connID)
	if idx == -1 {
		return SubmitResult{}, ErrNotParticipant
	}
	if index != r.current {
		return SubmitResult{}, ErrStaleAnswer
	}
	key := answerKey{conn: connID, index: index}
	if _, dup := r.answers[key]; dup {
		return SubmitResult{}, ErrDuplicateAnswer
	}

	if timeRemaining < 0 {
		timeRemaining = 0
	}
	if timeRemaining > r.perQuestionSec {
		timeRemaining = r.perQuestionSec
	}

	q := r.questions[index]
	isCorrect := chosen == q.Correct
	points := 0
	if isCorrect {
		points = BaseScore + timeRemaining/2
	}

	r.answers[key] = AnswerRecord{Chosen: chosen, IsCorrect: isCorrect, Points: points}
	r.players[idx].Answered++
	if isCorrect {
		r.players[idx].Score += points
	}

	return SubmitResult{
		PlayerIndex:   idx,
		QuestionIndex: index,
		IsCorrect:     isCorrect,
		CorrectOption: q.Correct,
		Explanation:   q.Explanation,
		Points:        points,
		Scores:        r.scoresLocked(),
		BothAnswered:  r.bothAnsweredLocked(index),
	}, nil
}

// ForceNoAnswers synthesizes a zero-point "no answer" for every player who
// has not answered the question at index. Used by the server-side deadline so
// a silent player cannot stall the room. Returns the seats that were filled
// and whether the index is now fully answered.
func (r *Room) ForceNoAnswers(index int) (forced []int, complete bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive || index != r.current {
		return nil, false
	}

	for i, p := range r.players {
		key := answerKey{conn: p.ConnID, index: index}
		if _, answered := r.answers[key]; answered {
			continue
		}
		r.answers[key] = AnswerRecord{Chosen: NoAnswer}
		p.Answered++
		forced = append(forced, i)
	}
	return forced, r.bothAnsweredLocked(index)
}

// AdvanceFrom moves past the question at index once both answers are in.
// Returns the next index, or a terminal Outcome when that was the last
// question. The index guard makes a racing deadline/reveal pair harmless:
// only one of them can observe the matching current index.
func (r *Room) AdvanceFrom(index int) (next int, outcome *Outcome, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive || index != r.current || !r.bothAnsweredLocked(index) {
		return 0, nil, false
	}

	if index >= len(r.questions)-1 {
		o := r.finishLocked(false, -1)
		return 0, &o, true
	}
	r.current++
	return r.current, nil, true
}

// Forfeit finishes a not-yet-finished room with the remaining player as
// winner. Returns false when the room is already finished or the connection
// is not a participant.
func (r *Room) Forfeit(disconnected uuid.UUID) (Outcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == StatusFinished {
		return Outcome{}, false
	}
	idx := r.PlayerIndex(disconnected)
	if idx == -1 {
		return Outcome{}, false
	}
	return r.finishLocked(true, 1-idx), true
}

// Scores returns the current running scores.
func (r *Room) Scores() [2]ScoreSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scoresLocked()
}

func (r *Room) scoresLocked() [2]ScoreSnapshot {
	return [2]ScoreSnapshot{
		{Score: r.players[0].Score, Answered: r.players[0].Answered},
		{Score: r.players[1].Score, Answered: r.players[1].Answered},
	}
}

func (r *Room) bothAnsweredLocked(index int) bool {
	for _, p := range r.players {
		if _, ok := r.answers[answerKey{conn: p.ConnID, index: index}]; !ok {
			return false
		}
	}
	return true
}

// finishLocked transitions to finished and computes the outcome. When forced,
// winnerIdx names the forfeit winner; otherwise the strictly higher score
// wins and equal scores draw.
func (r *Room) finishLocked(forfeit bool, winnerIdx int) Outcome {
	r.status = StatusFinished

	outcome := Outcome{
		WinnerIndex: winnerIdx,
		Forfeit:     forfeit,
	}
	for i, p := range r.players {
		outcome.Players[i] = PlayerResult{
			UserID:      p.Identity.UserID,
			DisplayName: p.Identity.DisplayName,
			Score:       p.Score,
		}
	}

	if !forfeit {
		switch {
		case r.players[0].Score > r.players[1].Score:
			outcome.WinnerIndex = 0
		case r.players[1].Score > r.players[0].Score:
			outcome.WinnerIndex = 1
		default:
			outcome.WinnerIndex = -1
			outcome.IsDraw = true
		}
	}

	if outcome.IsDraw {
		outcome.XPReward = XPDraw
	} else {
		outcome.XPReward = XPWinner
	}
	return outcome
}
