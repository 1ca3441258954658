package models

import (
	"math"
	"time"
)

// Statistics is an aggregate view over all memorization records
type Statistics struct {
	TotalSentences     int        `json:"total_sentences"`
	MemorizedSentences int        `json:"memorized_sentences"`
	AverageAccuracy    float64    `json:"average_accuracy"` // 0-1, mean over records with attempts
	StreakDays         int        `json:"streak_days"`
	TotalStudySeconds  int64      `json:"total_study_seconds"`
	AttemptsToday      int        `json:"attempts_today"`
	LastStudyDate      *time.Time `json:"last_study_date,omitempty"`
}

// AccuracyPercent returns AverageAccuracy as a rounded percentage
func (s *Statistics) AccuracyPercent() int {
	return int(math.Round(s.AverageAccuracy * 100))
}
