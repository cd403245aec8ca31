package srs

// DefaultAvgAnswerMs is the assumed average response time when no per-question
// average is available.
const DefaultAvgAnswerMs int64 = 15000

// EstimateQuality maps a correctness signal and response latency to an SM-2
// quality rating.
//
// Incorrect answers rate 1 when given quickly (the reviewer almost knew it)
// and 0 otherwise. Correct answers rate by speed relative to the average,
// never dropping below 3: a correct answer is at worst "correct with serious
// difficulty".
func EstimateQuality(correct bool, timeMs, avgTimeMs int64) int {
	if avgTimeMs <= 0 {
		avgTimeMs = DefaultAvgAnswerMs
	}

	if !correct {
		if timeMs < avgTimeMs {
			return 1
		}
		return 0
	}

	speedRatio := float64(timeMs) / float64(avgTimeMs)
	switch {
	case speedRatio < 0.5:
		return 5
	case speedRatio < 0.8:
		return 4
	default:
		return 3
	}
}
