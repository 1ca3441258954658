package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/memorizer/internal/apperr"
	"github.com/example/memorizer/internal/spaced_repetition"
	"github.com/example/memorizer/pkg/models"
)

// streakWindow bounds how far back attempt history is loaded for the streak.
const streakWindow = 400 * 24 * time.Hour

// StatisticsRepository aggregates study progress
type StatisticsRepository struct {
	db *DB
}

// NewStatisticsRepository creates a new repository instance
func NewStatisticsRepository(db *DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// Summary returns overall progress. Calendar days (today, streak) are
// evaluated in loc.
func (r *StatisticsRepository) Summary(ctx context.Context, loc *time.Location) (*models.Statistics, error) {
	if loc == nil {
		loc = time.UTC
	}

	var stats models.Statistics

	if err := r.db.GetContext(ctx, &stats.TotalSentences, `SELECT COUNT(*) FROM sentence_pairs`); err != nil {
		return nil, apperr.Storage("count sentence pairs", err)
	}

	memorized := r.db.Rebind(`SELECT COUNT(*) FROM memorization_records WHERE is_memorized = ?`)
	if err := r.db.GetContext(ctx, &stats.MemorizedSentences, memorized, true); err != nil {
		return nil, apperr.Storage("count memorized", err)
	}

	accuracy := `
		SELECT COALESCE(AVG(CAST(correct_attempts AS DOUBLE PRECISION) / attempts), 0)
		FROM memorization_records
		WHERE attempts > 0
	`
	if err := r.db.GetContext(ctx, &stats.AverageAccuracy, accuracy); err != nil {
		return nil, apperr.Storage("average accuracy", err)
	}

	// ORDER BY instead of MAX() keeps the column type so the driver returns a time
	var last time.Time
	err := r.db.GetContext(ctx, &last, `
		SELECT last_attempt_at FROM memorization_records
		WHERE last_attempt_at IS NOT NULL
		ORDER BY last_attempt_at DESC
		LIMIT 1
	`)
	switch {
	case err == nil:
		stats.LastStudyDate = &last
	case !errors.Is(err, sql.ErrNoRows):
		return nil, apperr.Storage("last study date", err)
	}

	var totalMs int64
	if err := r.db.GetContext(ctx, &totalMs, `SELECT COALESCE(SUM(response_time_ms), 0) FROM attempt_log`); err != nil {
		return nil, apperr.Storage("total study time", err)
	}
	stats.TotalStudySeconds = totalMs / 1000

	now := r.db.now().In(loc)
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	if stats.AttemptsToday, err = r.countAttemptsSince(ctx, startOfToday); err != nil {
		return nil, err
	}

	var attemptTimes []time.Time
	history := r.db.Rebind(`SELECT attempted_at FROM attempt_log WHERE attempted_at >= ? ORDER BY attempted_at DESC`)
	if err := r.db.SelectContext(ctx, &attemptTimes, history, now.Add(-streakWindow).UTC()); err != nil {
		return nil, apperr.Storage("attempt history", err)
	}
	stats.StreakDays = spaced_repetition.Streak(spaced_repetition.DistinctDays(attemptTimes, loc), now)

	return &stats, nil
}

func (r *StatisticsRepository) countAttemptsSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM attempt_log WHERE attempted_at >= ?`)
	if err := r.db.GetContext(ctx, &count, query, since.UTC()); err != nil {
		return 0, apperr.Storage("count attempts", err)
	}
	return count, nil
}
