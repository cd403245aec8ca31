// Package srs implements spaced-repetition review scheduling (SM-2 variant)
// over per-user question records.
//
// Quality ratings:
//
//	0 - complete blackout
//	1 - incorrect, but remembered upon seeing the answer
//	2 - incorrect, but the answer seemed easy to recall
//	3 - correct with serious difficulty
//	4 - correct after hesitation
//	5 - perfect response
package srs

import (
	"math"
	"time"
)

const (
	// InitialEaseFactor is assigned to freshly tracked questions.
	InitialEaseFactor = 2.5
	// MinEaseFactor is the floor below which ease never drops.
	MinEaseFactor = 1.3
)

// Review is the scheduler output for a single graded attempt.
type Review struct {
	Repetition int       `json:"repetition"`
	Interval   int       `json:"interval"` // days until next review
	EaseFactor float64   `json:"ease_factor"`
	NextReview time.Time `json:"next_review"` // day granularity, UTC midnight
	Quality    int       `json:"quality"`
}

// ComputeNextReview applies the SM-2 update to a record's scheduling triple.
//
// A failed review (quality < 3) resets the repetition streak and schedules the
// question for tomorrow; the ease factor is left untouched so a single lapse
// does not permanently slow interval growth. A successful review grows the
// ease factor by up to 0.1 (floored at MinEaseFactor) and advances the
// interval through the fixed 1-day / 6-day openers before multiplying the
// previous interval by the new ease.
//
// The function is pure; "today" is injected by the caller.
func ComputeNextReview(quality, repetition int, easeFactor float64, interval int, today time.Time) Review {
	if quality < 0 {
		quality = 0
	}
	if quality > 5 {
		quality = 5
	}

	var newRepetition, newInterval int
	newEase := easeFactor

	if quality < 3 {
		newRepetition = 0
		newInterval = 1
	} else {
		newRepetition = repetition + 1

		q := float64(quality)
		newEase = easeFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
		if newEase < MinEaseFactor {
			newEase = MinEaseFactor
		}

		switch newRepetition {
		case 1:
			newInterval = 1
		case 2:
			newInterval = 6
		default:
			// Half-away-from-zero rounding, applied to the previous
			// interval and the updated (unrounded) ease.
			newInterval = int(math.Round(float64(interval) * newEase))
		}
	}

	return Review{
		Repetition: newRepetition,
		Interval:   newInterval,
		// Stored at two decimals; the interval above already used the
		// full-precision value, so rounding never compounds within a call.
		EaseFactor: math.Round(newEase*100) / 100,
		NextReview: DateOnly(today).AddDate(0, 0, newInterval),
		Quality:    quality,
	}
}

// DateOnly truncates a timestamp to UTC day granularity.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
