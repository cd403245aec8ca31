package battle

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePairsOldestFirst(t *testing.T) {
	q := NewQueue()
	now := time.Now()

	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	pos, pair := q.Join(a, now)
	assert.Equal(t, 1, pos)
	assert.Nil(t, pair)

	_, pair = q.Join(b, now.Add(time.Second))
	require.NotNil(t, pair)
	assert.Equal(t, [2]uuid.UUID{a, b}, *pair)
	assert.Equal(t, 0, q.Len())

	_, pair = q.Join(c, now.Add(2*time.Second))
	assert.Nil(t, pair)
	_, pair = q.Join(d, now.Add(3*time.Second))
	require.NotNil(t, pair)
	assert.Equal(t, [2]uuid.UUID{c, d}, *pair)
}

func TestQueueRejoinIsIdempotent(t *testing.T) {
	q := NewQueue()
	now := time.Now()
	a := uuid.New()

	pos, pair := q.Join(a, now)
	assert.Equal(t, 1, pos)
	assert.Nil(t, pair)

	// Joining again must not pair the connection with itself.
	pos, pair = q.Join(a, now.Add(time.Second))
	assert.Equal(t, 1, pos)
	assert.Nil(t, pair)
	assert.Equal(t, 1, q.Len())
}

func TestQueueLeave(t *testing.T) {
	q := NewQueue()
	now := time.Now()
	a, b := uuid.New(), uuid.New()

	q.Join(a, now)
	assert.True(t, q.Leave(a))
	assert.False(t, q.Leave(a))
	assert.Equal(t, 0, q.Len())

	// After a leaves, b waits alone.
	_, pair := q.Join(b, now)
	assert.Nil(t, pair)
}
