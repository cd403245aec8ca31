package srs

import (
	"sort"
	"time"
)

// Due filters records that are ready for review and orders them for a study
// session. A record is due when its next-review date has arrived or passed,
// or when it has never been attempted.
//
// Ordering, stable: brand-new or just-failed records (repetition 0) first,
// then strictly overdue before due-today, ties broken by ascending ease so
// the hardest material surfaces first. The input slice is not mutated; the
// caller truncates to its session limit.
func Due(records []Record, today time.Time) []Record {
	day := DateOnly(today)

	due := make([]Record, 0, len(records))
	for _, r := range records {
		if r.LastAttempt == nil || !r.NextReview.After(day) {
			due = append(due, r)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i], due[j]
		if (a.Repetition == 0) != (b.Repetition == 0) {
			return a.Repetition == 0
		}
		aOverdue := a.NextReview.Before(day)
		bOverdue := b.NextReview.Before(day)
		if aOverdue != bOverdue {
			return aOverdue
		}
		return a.EaseFactor < b.EaseFactor
	})

	return due
}

// Stats aggregates a user's records into mastery buckets.
type Stats struct {
	Total    int `json:"total"`
	New      int `json:"new"`
	Learning int `json:"learning"`
	Review   int `json:"review"`
	Mastered int `json:"mastered"`
	DueToday int `json:"due_today"`
	Overdue  int `json:"overdue"`
}

// ComputeStats categorizes each record into exactly one of new (repetition 0),
// learning (repetition 1-2), mastered (interval >= 21 days) or review, and
// counts due/overdue records using the same test as Due.
func ComputeStats(records []Record, today time.Time) Stats {
	day := DateOnly(today)

	stats := Stats{Total: len(records)}
	for _, r := range records {
		switch {
		case r.Repetition == 0:
			stats.New++
		case r.Repetition < 3:
			stats.Learning++
		case r.Interval >= 21:
			stats.Mastered++
		default:
			stats.Review++
		}

		if r.LastAttempt == nil || !r.NextReview.After(day) {
			stats.DueToday++
			if r.LastAttempt != nil && r.NextReview.Before(day) {
				stats.Overdue++
			}
		}
	}
	return stats
}
