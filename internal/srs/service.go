package srs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/medarena/medquiz/internal/metrics"
)

// ServiceOptions configures the SRS service.
type ServiceOptions struct {
	AvgAnswerMs  int64            // default 15000
	SessionLimit int              // default 20, applied by the HTTP layer
	Now          func() time.Time // injectable clock for tests
}

// Service orchestrates the quality estimator, the scheduler and the record
// store. The pure pieces never touch I/O; this is the one place that does.
type Service struct {
	store        RecordStore
	logger       zerolog.Logger
	avgAnswerMs  int64
	sessionLimit int
	now          func() time.Time

	// Serializes read-modify-write cycles so duplicate or retried
	// submissions for the same (user, question) pair cannot interleave.
	mu sync.Mutex
}

// NewService constructs the SRS service.
func NewService(store RecordStore, opts ServiceOptions, logger zerolog.Logger) *Service {
	avg := opts.AvgAnswerMs
	if avg <= 0 {
		avg = DefaultAvgAnswerMs
	}
	limit := opts.SessionLimit
	if limit <= 0 {
		limit = 20
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:        store,
		logger:       logger,
		avgAnswerMs:  avg,
		sessionLimit: limit,
		now:          now,
	}
}

// AnswerResult summarizes the scheduling outcome returned to the client.
type AnswerResult struct {
	NextReview time.Time `json:"next_review"`
	Interval   int       `json:"interval"`
	EaseFactor float64   `json:"ease_factor"`
}

// RecordAnswer grades an answer and updates the (user, question) record:
// estimate quality from correctness and latency, run the scheduler, persist
// the updated record. Creates the record on first answer.
func (s *Service) RecordAnswer(ctx context.Context, userID, questionID string, correct bool, timeMs int64) (AnswerResult, error) {
	if timeMs <= 0 {
		timeMs = s.avgAnswerMs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.store.Get(ctx, userID, questionID)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("load record: %w", err)
	}

	now := s.now()
	if record == nil {
		fresh := NewRecord(userID, questionID, now)
		record = &fresh
	}

	quality := EstimateQuality(correct, timeMs, s.avgAnswerMs)
	review := ComputeNextReview(quality, record.Repetition, record.EaseFactor, record.Interval, now)
	updated := record.Apply(review, correct, timeMs, now)

	if err := s.store.Put(ctx, updated); err != nil {
		return AnswerResult{}, fmt.Errorf("store record: %w", err)
	}

	metrics.ReviewsRecorded.Inc()
	s.logger.Debug().
		Str("user_id", userID).
		Str("question_id", questionID).
		Int("quality", quality).
		Int("interval", updated.Interval).
		Msg("answer recorded")

	return AnswerResult{
		NextReview: updated.NextReview,
		Interval:   updated.Interval,
		EaseFactor: updated.EaseFactor,
	}, nil
}

// DueQuestions returns the full prioritized due set for the user.
func (s *Service) DueQuestions(ctx context.Context, userID string) ([]Record, error) {
	records, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return Due(records, s.now()), nil
}

// Stats aggregates the user's records into mastery buckets.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	records, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return Stats{}, fmt.Errorf("list records: %w", err)
	}
	return ComputeStats(records, s.now()), nil
}

// InitBatch creates fresh records for any question the user is not yet
// tracking. Existing records are left untouched. Returns the number added.
func (s *Service) InitBatch(ctx context.Context, userID string, questionIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, questionID := range questionIDs {
		existing, err := s.store.Get(ctx, userID, questionID)
		if err != nil {
			return added, fmt.Errorf("check record %s: %w", questionID, err)
		}
		if existing != nil {
			continue
		}
		if err := s.store.Put(ctx, NewRecord(userID, questionID, s.now())); err != nil {
			return added, fmt.Errorf("init record %s: %w", questionID, err)
		}
		added++
	}
	return added, nil
}

// SessionLimit is the suggested per-session cap on due questions.
func (s *Service) SessionLimit() int {
	return s.sessionLimit
}
