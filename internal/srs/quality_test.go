package srs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateQuality(t *testing.T) {
	const avg = int64(15000)

	tests := []struct {
		name    string
		correct bool
		timeMs  int64
		want    int
	}{
		{"correct very fast", true, int64(float64(avg) * 0.49), 5},
		{"correct fast", true, int64(float64(avg) * 0.79), 4},
		{"correct normal", true, int64(float64(avg) * 1.19), 3},
		{"correct slow still floors at 3", true, avg * 2, 3},
		{"incorrect but quick", false, avg / 2, 1},
		{"incorrect and slow", false, avg * 3 / 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateQuality(tt.correct, tt.timeMs, avg))
		})
	}
}

func TestEstimateQualityDefaultsAverage(t *testing.T) {
	// 7000ms against the implicit 15000ms average is a fast recall.
	assert.Equal(t, 5, EstimateQuality(true, 7000, 0))
	assert.Equal(t, 1, EstimateQuality(false, 7000, 0))
}
