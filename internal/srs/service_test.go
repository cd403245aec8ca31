package srs

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory RecordStore for tests.
type memStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]Record)}
}

func (m *memStore) key(userID, questionID string) string {
	return fmt.Sprintf("%s/%s", userID, questionID)
}

func (m *memStore) Get(_ context.Context, userID, questionID string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[m.key(userID, questionID)]; ok {
		copied := r
		return &copied, nil
	}
	return nil, nil
}

func (m *memStore) Put(_ context.Context, record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[m.key(record.UserID, record.QuestionID)] = record
	return nil
}

func (m *memStore) ListByUser(_ context.Context, userID string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTestService(store RecordStore, now time.Time) *Service {
	return NewService(store, ServiceOptions{
		AvgAnswerMs:  15000,
		SessionLimit: 20,
		Now:          func() time.Time { return now },
	}, zerolog.Nop())
}

func TestRecordAnswerProgression(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store, testToday)
	day := DateOnly(testToday)

	// Very fast correct answer -> quality 5.
	res, err := svc.RecordAnswer(ctx, "u1", "q1", true, 7000)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Interval)
	assert.Equal(t, day.AddDate(0, 0, 1), res.NextReview)

	// Fast correct answer -> quality 4.
	res, err = svc.RecordAnswer(ctx, "u1", "q1", true, 10500)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Interval)

	// Slow correct answer -> quality 3.
	res, err = svc.RecordAnswer(ctx, "u1", "q1", true, 20000)
	require.NoError(t, err)
	assert.Equal(t, 15, res.Interval)
	assert.Equal(t, 2.46, res.EaseFactor)
	assert.Equal(t, day.AddDate(0, 0, 15), res.NextReview)

	record, err := store.Get(ctx, "u1", "q1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 3, record.Repetition)
	assert.Len(t, record.Attempts, 3)
	require.NotNil(t, record.LastAttempt)
}

func TestRecordAnswerLapse(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore(), testToday)

	_, err := svc.RecordAnswer(ctx, "u1", "q1", true, 7000)
	require.NoError(t, err)
	_, err = svc.RecordAnswer(ctx, "u1", "q1", true, 7000)
	require.NoError(t, err)

	res, err := svc.RecordAnswer(ctx, "u1", "q1", false, 30000)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Interval)
	assert.Equal(t, DateOnly(testToday).AddDate(0, 0, 1), res.NextReview)
}

func TestAttemptHistoryIsBounded(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store, testToday)

	for i := 0; i < 15; i++ {
		_, err := svc.RecordAnswer(ctx, "u1", "q1", i%2 == 0, 9000)
		require.NoError(t, err)
	}

	record, err := store.Get(ctx, "u1", "q1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Len(t, record.Attempts, maxAttemptHistory)
}

func TestInitBatchIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore(), testToday)

	added, err := svc.InitBatch(ctx, "u1", []string{"q1", "q2"})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = svc.InitBatch(ctx, "u1", []string{"q1", "q2", "q3"})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	stats, err := svc.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.New)
}

func TestDueQuestionsThroughService(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore(), testToday)

	_, err := svc.InitBatch(ctx, "u1", []string{"q1", "q2"})
	require.NoError(t, err)

	// Answering q1 schedules it for tomorrow; q2 stays due.
	_, err = svc.RecordAnswer(ctx, "u1", "q1", true, 7000)
	require.NoError(t, err)

	due, err := svc.DueQuestions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "q2", due[0].QuestionID)
}
