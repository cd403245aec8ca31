package battle

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// queueEntry is one waiting connection.
type queueEntry struct {
	ConnID   uuid.UUID
	JoinedAt time.Time
}

// Queue is the FIFO matchmaking queue: the two longest-waiting connections
// are paired first. All operations are serialized by the internal mutex, so
// pairing decisions never race.
type Queue struct {
	mu      sync.Mutex
	waiting []queueEntry
}

// NewQueue creates an empty matchmaking queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Join enqueues a connection. A stale entry for the same connection is
// removed first, so re-joining is idempotent. When two or more connections
// are waiting after the append, the two oldest are dequeued and returned as
// a pair; otherwise the caller gets the 1-based queue position.
func (q *Queue) Join(connID uuid.UUID, now time.Time) (position int, pair *[2]uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.removeLocked(connID)
	q.waiting = append(q.waiting, queueEntry{ConnID: connID, JoinedAt: now})

	if len(q.waiting) >= 2 {
		matched := [2]uuid.UUID{q.waiting[0].ConnID, q.waiting[1].ConnID}
		q.waiting = append([]queueEntry(nil), q.waiting[2:]...)
		return 0, &matched
	}
	return len(q.waiting), nil
}

// Leave removes a connection from the queue. No-op when absent.
func (q *Queue) Leave(connID uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(connID)
}

// Len returns the number of waiting connections.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

func (q *Queue) removeLocked(connID uuid.UUID) bool {
	for i, e := range q.waiting {
		if e.ConnID == connID {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			return true
		}
	}
	return false
}
