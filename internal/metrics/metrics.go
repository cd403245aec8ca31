// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReviewsRecorded counts SRS answers graded through the scheduler.
	ReviewsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "medquiz",
		Subsystem: "srs",
		Name:      "reviews_recorded_total",
		Help:      "Number of answers graded by the spaced-repetition scheduler.",
	})

	// BattlesActive tracks rooms that have been created and not yet evicted.
	BattlesActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "medquiz",
		Subsystem: "battle",
		Name:      "rooms_active",
		Help:      "Number of battle rooms currently held in memory.",
	})

	// BattlesFinished counts completed battles by outcome.
	BattlesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medquiz",
		Subsystem: "battle",
		Name:      "finished_total",
		Help:      "Number of battles finished, labeled by outcome.",
	}, []string{"outcome"})

	// QueueDepth tracks players waiting in the matchmaking queue.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "medquiz",
		Subsystem: "battle",
		Name:      "queue_depth",
		Help:      "Number of connections waiting in the matchmaking queue.",
	})
)
