package spaced_repetition

import (
	"math"

	"github.com/example/memorizer/pkg/models"
)

const (
	// DefaultDifficulty is assigned to new records and to pairs without a record.
	DefaultDifficulty = 0.5
	// MemorizedDifficulty is forced when a pair is marked memorized.
	MemorizedDifficulty = 0.1

	// ResponseTimeCapMs is the response time at which the speed component saturates.
	ResponseTimeCapMs = 30000

	accuracyWeight = 0.7
	speedWeight    = 0.3
)

// RecomputeDifficulty derives a difficulty score in [0, 1] from the accuracy
// so far and the response time of the latest attempt. Higher accuracy and
// faster answers both lower the score.
func RecomputeDifficulty(correctAttempts, attempts int, responseTimeMs int64) float64 {
	accuracy := 0.0
	if attempts > 0 {
		accuracy = float64(correctAttempts) / float64(attempts)
	}

	timeScore := math.Min(math.Max(float64(responseTimeMs), 0)/ResponseTimeCapMs, 1)
	difficulty := 1 - (accuracy*accuracyWeight + (1-timeScore)*speedWeight)

	return clamp(difficulty)
}

// ScoreAfterAttempt returns the difficulty a record should carry once its
// counters include the latest attempt. Memorized records keep the fixed low
// score so they stay at the back of the queue.
func ScoreAfterAttempt(record *models.MemorizationRecord, responseTimeMs int64) float64 {
	if record.IsMemorized {
		return MemorizedDifficulty
	}
	return RecomputeDifficulty(record.CorrectAttempts, record.Attempts, responseTimeMs)
}

// EffectiveDifficulty is the score used for ranking; a missing record
// counts as DefaultDifficulty.
func EffectiveDifficulty(record *models.MemorizationRecord) float64 {
	if record == nil {
		return DefaultDifficulty
	}
	return record.DifficultyScore
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
