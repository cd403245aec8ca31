package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewedRecord(questionID string, repetition int, ease float64, interval int, nextReview time.Time) Record {
	attempt := nextReview.AddDate(0, 0, -interval)
	return Record{
		UserID:      "u1",
		QuestionID:  questionID,
		Repetition:  repetition,
		EaseFactor:  ease,
		Interval:    interval,
		NextReview:  DateOnly(nextReview),
		LastAttempt: &attempt,
	}
}

func TestDueSetCompleteness(t *testing.T) {
	day := DateOnly(testToday)
	records := []Record{
		reviewedRecord("overdue", 2, 2.5, 6, day.AddDate(0, 0, -1)),
		NewRecord("u1", "never-attempted", testToday),
		reviewedRecord("tomorrow", 2, 2.5, 6, day.AddDate(0, 0, 1)),
	}

	due := Due(records, testToday)
	ids := make([]string, 0, len(due))
	for _, r := range due {
		ids = append(ids, r.QuestionID)
	}

	assert.Contains(t, ids, "overdue")
	assert.Contains(t, ids, "never-attempted")
	assert.NotContains(t, ids, "tomorrow")
}

func TestDueSetOrdering(t *testing.T) {
	day := DateOnly(testToday)
	records := []Record{
		reviewedRecord("today-easy", 3, 2.8, 10, day),
		reviewedRecord("today-hard", 3, 1.5, 10, day),
		reviewedRecord("overdue", 4, 2.5, 10, day.AddDate(0, 0, -3)),
		NewRecord("u1", "brand-new", testToday),
	}

	due := Due(records, testToday)
	require.Len(t, due, 4)
	assert.Equal(t, "brand-new", due[0].QuestionID, "repetition 0 sorts first")
	assert.Equal(t, "overdue", due[1].QuestionID, "strictly overdue before due today")
	assert.Equal(t, "today-hard", due[2].QuestionID, "lower ease surfaces first")
	assert.Equal(t, "today-easy", due[3].QuestionID)
}

func TestDueDoesNotMutateInput(t *testing.T) {
	day := DateOnly(testToday)
	records := []Record{
		reviewedRecord("b", 3, 2.0, 10, day),
		NewRecord("u1", "a", testToday),
	}

	_ = Due(records, testToday)
	assert.Equal(t, "b", records[0].QuestionID)
	assert.Equal(t, "a", records[1].QuestionID)
}

func TestComputeStats(t *testing.T) {
	day := DateOnly(testToday)
	records := []Record{
		NewRecord("u1", "new", testToday),
		reviewedRecord("learning", 1, 2.5, 1, day.AddDate(0, 0, 1)),
		reviewedRecord("learning2", 2, 2.5, 6, day.AddDate(0, 0, -2)),
		reviewedRecord("review", 3, 2.3, 14, day),
		reviewedRecord("mastered", 5, 2.6, 35, day.AddDate(0, 0, 20)),
	}

	stats := ComputeStats(records, testToday)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 1, stats.New)
	assert.Equal(t, 2, stats.Learning)
	assert.Equal(t, 1, stats.Review)
	assert.Equal(t, 1, stats.Mastered)
	// new (never attempted), overdue learning2, due-today review
	assert.Equal(t, 3, stats.DueToday)
	assert.Equal(t, 1, stats.Overdue)
}
