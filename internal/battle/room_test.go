package battle

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medarena/medquiz/internal/question"
)

func battleQuestions(n int) []question.BattleQuestion {
	qs := make([]question.BattleQuestion, n)
	for i := range qs {
		qs[i] = question.BattleQuestion{
			ID:          fmt.Sprintf("q%d", i+1),
			Prompt:      fmt.Sprintf("prompt %d", i+1),
			Options:     []string{"a", "b", "c", "d"},
			Correct:     i % 4,
			Subject:     "anatomy",
			Explanation: "because",
		}
	}
	return qs
}

func newTestRoom(t *testing.T, n int) (*Room, uuid.UUID, uuid.UUID) {
	t.Helper()
	c1, c2 := uuid.New(), uuid.New()
	room := NewRoom("room-1",
		Player{ConnID: c1, Identity: Identity{UserID: "u1", DisplayName: "Asha"}},
		Player{ConnID: c2, Identity: Identity{UserID: "u2", DisplayName: "Bram"}},
		battleQuestions(n), true, 15)
	return room, c1, c2
}

func startRoom(t *testing.T, room *Room, c1, c2 uuid.UUID) {
	t.Helper()
	both, _, err := room.MarkReady(c1)
	require.NoError(t, err)
	require.False(t, both)
	both, _, err = room.MarkReady(c2)
	require.NoError(t, err)
	require.True(t, both)
	require.True(t, room.Activate(time.Now()))
}

func TestRoomLifecycle(t *testing.T) {
	room, c1, c2 := newTestRoom(t, 2)
	assert.Equal(t, StatusWaiting, room.Status())

	startRoom(t, room, c1, c2)
	assert.Equal(t, StatusActive, room.Status())

	// Activation only fires from the countdown state.
	assert.False(t, room.Activate(time.Now()))
}

func TestMarkReadyRejectsOutsiders(t *testing.T) {
	room, _, _ := newTestRoom(t, 2)
	_, _, err := room.MarkReady(uuid.New())
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestSubmitScoring(t *testing.T) {
	room, c1, c2 := newTestRoom(t, 1)
	startRoom(t, room, c1, c2)

	// Question 0 has correct option 0. Ten seconds left earns 10 + 5.
	res, err := room.Submit(c1, 0, 0, 10)
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 15, res.Points)
	assert.Equal(t, 15, res.Scores[0].Score)
	assert.False(t, res.BothAnswered)

	// A wrong answer scores nothing regardless of speed.
	res, err = room.Submit(c2, 0, 3, 14)
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 0, res.Points)
	assert.Equal(t, 0, res.Scores[1].Score)
	assert.True(t, res.BothAnswered)
}

func TestSubmitClampsReportedTime(t *testing.T) {
	room, c1, c2 := newTestRoom(t, 2)
	startRoom(t, room, c1, c2)

	// A claimed 999 seconds remaining caps at the per-question limit.
	res, err := room.Submit(c1, 0, 0, 999)
	require.NoError(t, err)
	assert.Equal(t, BaseScore+15/2, res.Points)

	res, err = room.Submit(c2, 0, 0, -5)
	require.NoError(t, err)
	assert.Equal(t, BaseScore, res.Points)
}

func TestSubmitDuplicateAndStale(t *testing.T) {
	room, c1, c2 := newTestRoom(t, 2)
	startRoom(t, room, c1, c2)

	_, err := room.Submit(c1, 0, 0, 10)
	require.NoError(t, err)

	_, err = room.Submit(c1, 0, 1, 10)
	assert.ErrorIs(t, err, ErrDuplicateAnswer)

	_, err = room.Submit(c2, 1, 0, 10)
	assert.ErrorIs(t, err, ErrStaleAnswer)

	_, err = room.Submit(uuid.New(), 0, 0, 10)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestSubmitRequiresActiveRoom(t *testing.T) {
	room, c1, _ := newTestRoom(t, 1)
	_, err := room.Submit(c1, 0, 0, 10)
	assert.ErrorIs(t, err, ErrRoomNotActive)
}

func TestAdvanceFrom(t *testing.T) {
	room, c1, c2 := newTestRoom(t, 2)
	startRoom(t, room, c1, c2)

	// Advancing before both answers are in is refused.
	_, _, ok := room.AdvanceFrom(0)
	assert.False(t, ok)

	_, err := room.Submit(c1, 0, 0, 10)
	require.NoError(t, err)
	_, err = room.Submit(c2, 0, 0, 5)
	require.NoError(t, err)

	next, outcome, ok := room.AdvanceFrom(0)
	require.True(t, ok)
	assert.Nil(t, outcome)
	assert.Equal(t, 1, next)

	// A second advance for the same index is a no-op, so a racing deadline
	// timer cannot skip a question.
	_, _, ok = room.AdvanceFrom(0)
	assert.False(t, ok)
}

func TestFinalQuestionProducesOutcome(t *testing.T) {
	room, c1, c2 := newTestRoom(t, 1)
	startRoom(t, room, c1, c2)

	_, err := room.Submit(c1, 0, 0, 14) // 10 + 7
	require.NoError(t, err)
	_, err = room.Submit(c2, 0, 0, 2) // 10 + 1
	require.NoError(t, err)

	_, outcome, ok := room.AdvanceFrom(0)
	require.True(t, ok)
	require.NotNil(t, outcome)

	assert.Equal(t, StatusFinished, room.Status())
	assert.Equal(t, 0, outcome.WinnerIndex)
	assert.False(t, outcome.IsDraw)
	assert.False(t, outcome.Forfeit)
	assert.Equal(t, 17, outcome.Players[0].Score)
	assert.Equal(t, 11, outcome.Players[1].Score)
	assert.Equal(t, XPWinner, outcome.XPReward)
}

func TestEqualScoresDraw(t *testing.T) {
	room, c1, c2 := newTestRoom(t, 1)
	startRoom(t, room, c1, c2)

	_, err := room.Submit(c1, 0, 0, 8)
	require.NoError(t, err)
	_, err = room.Submit(c2, 0, 0, 8)
	require.NoError(t, err)

	_, outcome, ok := room.AdvanceFrom(0)
	require.True(t, ok)
	require.NotNil(t, outcome)
	assert.True(t, outcome.IsDraw)
	assert.Equal(t, -1, outcome.WinnerIndex)
	assert.Equal(t, XPDraw, outcome.XPReward)
}

func TestForceNoAnswers(t *testing.T) {
	room, c1, c2 := newTestRoom(t, 2)
	startRoom(t, room, c1, c2)

	_, err := room.Submit(c1, 0, 0, 10)
	require.NoError(t, err)

	forced, complete := room.ForceNoAnswers(0)
	assert.Equal(t, []int{1}, forced)
	assert.True(t, complete)

	// The forced seat scores nothing and cannot answer afterwards.
	_, err = room.Submit(c2, 0, 0, 10)
	assert.ErrorIs(t, err, ErrDuplicateAnswer)
	assert.Equal(t, 0, room.Scores()[1].Score)

	// Stale index is ignored.
	forced, _ = room.ForceNoAnswers(5)
	assert.Empty(t, forced)
}

func TestForfeit(t *testing.T) {
	room, c1, c2 := newTestRoom(t, 2)
	startRoom(t, room, c1, c2)

	_, err := room.Submit(c1, 0, 0, 10)
	require.NoError(t, err)

	outcome, ok := room.Forfeit(c1)
	require.True(t, ok)
	assert.True(t, outcome.Forfeit)
	assert.Equal(t, 1, outcome.WinnerIndex)
	assert.Equal(t, "Bram", outcome.Players[1].DisplayName)
	assert.Equal(t, XPWinner, outcome.XPReward)
	assert.Equal(t, StatusFinished, room.Status())

	// A finished room cannot be forfeited again.
	_, ok = room.Forfeit(c2)
	assert.False(t, ok)
}

func TestForfeitIgnoresOutsiders(t *testing.T) {
	room, c1, c2 := newTestRoom(t, 2)
	startRoom(t, room, c1, c2)

	_, ok := room.Forfeit(uuid.New())
	assert.False(t, ok)
	assert.Equal(t, StatusActive, room.Status())
}
