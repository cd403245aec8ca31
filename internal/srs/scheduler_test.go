package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func TestEaseFactorNeverDropsBelowFloor(t *testing.T) {
	for quality := 3; quality <= 5; quality++ {
		ease := 1.3
		repetition := 0
		interval := 0
		for i := 0; i < 25; i++ {
			review := ComputeNextReview(quality, repetition, ease, interval, testToday)
			assert.GreaterOrEqual(t, review.EaseFactor, MinEaseFactor,
				"quality %d iteration %d", quality, i)
			ease = review.EaseFactor
			repetition = review.Repetition
			interval = review.Interval
		}
	}
}

func TestLapseResetsRepetitionNotEase(t *testing.T) {
	for quality := 0; quality <= 2; quality++ {
		review := ComputeNextReview(quality, 5, 2.17, 42, testToday)
		assert.Equal(t, 0, review.Repetition)
		assert.Equal(t, 1, review.Interval)
		assert.Equal(t, 2.17, review.EaseFactor, "ease is not punished on lapse")
		assert.Equal(t, DateOnly(testToday).AddDate(0, 0, 1), review.NextReview)
	}
}

func TestFirstTwoSuccessesUseFixedIntervals(t *testing.T) {
	first := ComputeNextReview(5, 0, InitialEaseFactor, 0, testToday)
	assert.Equal(t, 1, first.Repetition)
	assert.Equal(t, 1, first.Interval)

	second := ComputeNextReview(5, first.Repetition, first.EaseFactor, first.Interval, testToday)
	assert.Equal(t, 2, second.Repetition)
	assert.Equal(t, 6, second.Interval)
}

func TestIntervalGrowthIsMonotonic(t *testing.T) {
	prev := 0
	for _, interval := range []int{6, 9, 15, 24, 40} {
		review := ComputeNextReview(4, 3, 2.0, interval, testToday)
		assert.GreaterOrEqual(t, review.Interval, prev)
		prev = review.Interval
	}
}

func TestIntervalRoundsHalfAwayFromZero(t *testing.T) {
	// 5 * 2.5 = 12.5 rounds up, not to even. Quality 4 leaves ease at 2.5.
	review := ComputeNextReview(4, 2, 2.5, 5, testToday)
	require.Equal(t, 3, review.Repetition)
	assert.Equal(t, 13, review.Interval)
}

func TestEaseFactorStoredAtTwoDecimals(t *testing.T) {
	review := ComputeNextReview(3, 0, 2.5, 0, testToday)
	assert.Equal(t, 2.36, review.EaseFactor)

	review = ComputeNextReview(4, 0, 2.5, 0, testToday)
	assert.Equal(t, 2.5, review.EaseFactor)
}

func TestQualityIsClamped(t *testing.T) {
	high := ComputeNextReview(9, 1, 2.5, 1, testToday)
	assert.Equal(t, 5, high.Quality)
	assert.Equal(t, 2, high.Repetition)

	low := ComputeNextReview(-3, 1, 2.5, 1, testToday)
	assert.Equal(t, 0, low.Quality)
	assert.Equal(t, 0, low.Repetition)
	assert.Equal(t, 1, low.Interval)
}

func TestReviewProgressionScenario(t *testing.T) {
	day := DateOnly(testToday)

	// Fresh record, perfect recall.
	first := ComputeNextReview(5, 0, 2.5, 0, testToday)
	require.Equal(t, 1, first.Repetition)
	require.Equal(t, 1, first.Interval)
	require.Equal(t, 2.6, first.EaseFactor)
	require.Equal(t, day.AddDate(0, 0, 1), first.NextReview)

	// Second success after hesitation.
	second := ComputeNextReview(4, first.Repetition, first.EaseFactor, first.Interval, testToday)
	require.Equal(t, 2, second.Repetition)
	require.Equal(t, 6, second.Interval)
	require.Equal(t, 2.6, second.EaseFactor)

	// Third success with difficulty: interval = round(6 * 2.46) = 15.
	third := ComputeNextReview(3, second.Repetition, second.EaseFactor, second.Interval, testToday)
	require.Equal(t, 3, third.Repetition)
	require.Equal(t, 2.46, third.EaseFactor)
	require.Equal(t, 15, third.Interval)
	require.Equal(t, day.AddDate(0, 0, 15), third.NextReview)
}
