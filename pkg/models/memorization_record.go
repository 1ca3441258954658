package models

import "time"

// MemorizationRecord tracks study progress for a single sentence pair
type MemorizationRecord struct {
	ID              int64      `json:"id" db:"id"`
	SentencePairID  int64      `json:"sentence_pair_id" db:"sentence_pair_id"`
	Attempts        int        `json:"attempts" db:"attempts"`
	CorrectAttempts int        `json:"correct_attempts" db:"correct_attempts"`
	ExposureCount   int        `json:"exposure_count" db:"exposure_count"`
	IsMemorized     bool       `json:"is_memorized" db:"is_memorized"`
	MemorizedAt     *time.Time `json:"memorized_at,omitempty" db:"memorized_at"`
	LastAttemptAt   *time.Time `json:"last_attempt_at,omitempty" db:"last_attempt_at"` // nil until the first scored attempt
	DifficultyScore float64    `json:"difficulty_score" db:"difficulty_score"`         // 0-1, higher is shown more often
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Accuracy returns the share of correct attempts, or 0 if there were none
func (r *MemorizationRecord) Accuracy() float64 {
	if r.Attempts == 0 {
		return 0
	}
	return float64(r.CorrectAttempts) / float64(r.Attempts)
}

// AttemptLog is one scored submission
type AttemptLog struct {
	ID             int64     `json:"id" db:"id"`
	SentencePairID int64     `json:"sentence_pair_id" db:"sentence_pair_id"`
	IsCorrect      bool      `json:"is_correct" db:"is_correct"`
	ResponseTimeMs int64     `json:"response_time_ms" db:"response_time_ms"`
	AttemptedAt    time.Time `json:"attempted_at" db:"attempted_at"`
}
