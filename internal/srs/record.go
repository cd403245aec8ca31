package srs

import "time"

// maxAttemptHistory bounds the diagnostic attempt log per record.
const maxAttemptHistory = 10

// Record tracks one user's scheduling state for one question. Records are
// created on first answer (or batch initialization) and never deleted; the
// bounded attempt history is the only growth.
type Record struct {
	UserID      string     `json:"user_id"`
	QuestionID  string     `json:"question_id"`
	Repetition  int        `json:"repetition"`
	EaseFactor  float64    `json:"ease_factor"`
	Interval    int        `json:"interval"`
	NextReview  time.Time  `json:"next_review"`
	LastAttempt *time.Time `json:"last_attempt,omitempty"`
	Attempts    []Attempt  `json:"attempts,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Attempt is a diagnostic entry; the scheduler itself never reads it.
type Attempt struct {
	Correct bool      `json:"correct"`
	TimeMs  int64     `json:"time_ms"`
	Quality int       `json:"quality"`
	At      time.Time `json:"at"`
}

// NewRecord returns a fresh record due today.
func NewRecord(userID, questionID string, now time.Time) Record {
	return Record{
		UserID:     userID,
		QuestionID: questionID,
		Repetition: 0,
		EaseFactor: InitialEaseFactor,
		Interval:   0,
		NextReview: DateOnly(now),
		CreatedAt:  now,
	}
}

// Apply merges a scheduler result into a copy of the record and appends the
// attempt to the bounded history. The receiver is not mutated.
func (r Record) Apply(review Review, correct bool, timeMs int64, now time.Time) Record {
	r.Repetition = review.Repetition
	r.EaseFactor = review.EaseFactor
	r.Interval = review.Interval
	r.NextReview = review.NextReview
	r.LastAttempt = &now

	attempts := r.Attempts
	if len(attempts) >= maxAttemptHistory {
		attempts = attempts[len(attempts)-maxAttemptHistory+1:]
	}
	r.Attempts = append(append([]Attempt(nil), attempts...), Attempt{
		Correct: correct,
		TimeMs:  timeMs,
		Quality: review.Quality,
		At:      now,
	})
	return r
}
