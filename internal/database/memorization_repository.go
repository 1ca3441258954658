package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/memorizer/internal/apperr"
	"github.com/example/memorizer/internal/spaced_repetition"
	"github.com/example/memorizer/pkg/models"
)

const recordColumns = `id, sentence_pair_id, attempts, correct_attempts, exposure_count,
	is_memorized, memorized_at, last_attempt_at, difficulty_score, created_at, updated_at`

// MemorizationRepository handles database operations for memorization records.
// Every write runs as one transaction so counters never diverge.
type MemorizationRepository struct {
	db *DB
}

// NewMemorizationRepository creates a new repository instance
func NewMemorizationRepository(db *DB) *MemorizationRepository {
	return &MemorizationRepository{db: db}
}

// GetByPair returns the record of a pair without creating it
func (r *MemorizationRepository) GetByPair(ctx context.Context, pairID int64) (*models.MemorizationRecord, error) {
	var record models.MemorizationRecord
	query := r.db.Rebind(`SELECT ` + recordColumns + ` FROM memorization_records WHERE sentence_pair_id = ?`)
	err := r.db.GetContext(ctx, &record, query, pairID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("no memorization record for sentence pair %d", pairID)
	}
	if err != nil {
		return nil, apperr.Storage("get memorization record", err)
	}
	return &record, nil
}

// GetOrCreate returns the record of a pair, creating a fresh one on first use.
// It fails with NotFound when the pair itself does not exist.
func (r *MemorizationRepository) GetOrCreate(ctx context.Context, pairID int64) (*models.MemorizationRecord, error) {
	var record *models.MemorizationRecord
	err := r.db.withTx(ctx, "get or create memorization record", func(tx *sqlx.Tx) error {
		var err error
		record, err = r.getOrCreate(ctx, tx, pairID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// RecordAttempt applies one scored submission: counters, last attempt time,
// difficulty and the attempt log are written together.
func (r *MemorizationRepository) RecordAttempt(ctx context.Context, pairID int64, isCorrect bool, responseTimeMs int64) (*models.MemorizationRecord, error) {
	if responseTimeMs < 0 {
		return nil, apperr.InvalidInput("response time must not be negative")
	}

	var record *models.MemorizationRecord
	err := r.db.withTx(ctx, "record attempt", func(tx *sqlx.Tx) error {
		var err error
		record, err = r.getOrCreate(ctx, tx, pairID)
		if err != nil {
			return err
		}

		now := r.db.now()
		record.Attempts++
		if isCorrect {
			record.CorrectAttempts++
		}
		record.ExposureCount++
		record.LastAttemptAt = &now
		record.DifficultyScore = spaced_repetition.ScoreAfterAttempt(record, responseTimeMs)
		record.UpdatedAt = now

		update := tx.Rebind(`
			UPDATE memorization_records SET
				attempts = ?,
				correct_attempts = ?,
				exposure_count = ?,
				last_attempt_at = ?,
				difficulty_score = ?,
				updated_at = ?
			WHERE id = ?
		`)
		if _, err := tx.ExecContext(ctx, update,
			record.Attempts,
			record.CorrectAttempts,
			record.ExposureCount,
			record.LastAttemptAt,
			record.DifficultyScore,
			record.UpdatedAt,
			record.ID,
		); err != nil {
			return apperr.Storage("update memorization record", err)
		}

		logEntry := tx.Rebind(`
			INSERT INTO attempt_log (sentence_pair_id, is_correct, response_time_ms, attempted_at)
			VALUES (?, ?, ?, ?)
		`)
		if _, err := tx.ExecContext(ctx, logEntry, pairID, isCorrect, responseTimeMs, now); err != nil {
			return apperr.Storage("append attempt log", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// MarkMemorized flags a pair as memorized and drops its difficulty to the
// memorized floor. Attempt counters are left alone.
func (r *MemorizationRepository) MarkMemorized(ctx context.Context, pairID int64) (*models.MemorizationRecord, error) {
	var record *models.MemorizationRecord
	err := r.db.withTx(ctx, "mark memorized", func(tx *sqlx.Tx) error {
		var err error
		record, err = r.getOrCreate(ctx, tx, pairID)
		if err != nil {
			return err
		}

		now := r.db.now()
		record.IsMemorized = true
		record.MemorizedAt = &now
		record.DifficultyScore = spaced_repetition.MemorizedDifficulty
		record.UpdatedAt = now

		update := tx.Rebind(`
			UPDATE memorization_records SET
				is_memorized = ?,
				memorized_at = ?,
				difficulty_score = ?,
				updated_at = ?
			WHERE id = ?
		`)
		if _, err := tx.ExecContext(ctx, update,
			record.IsMemorized,
			record.MemorizedAt,
			record.DifficultyScore,
			record.UpdatedAt,
			record.ID,
		); err != nil {
			return apperr.Storage("mark memorized", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// History returns the most recent attempts on a pair, newest first.
// A limit of zero or less returns every attempt.
func (r *MemorizationRepository) History(ctx context.Context, pairID int64, limit int) ([]models.AttemptLog, error) {
	query := `
		SELECT id, sentence_pair_id, is_correct, response_time_ms, attempted_at
		FROM attempt_log
		WHERE sentence_pair_id = ?
		ORDER BY attempted_at DESC, id DESC
	`
	args := []any{pairID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	attempts := []models.AttemptLog{}
	if err := r.db.SelectContext(ctx, &attempts, r.db.Rebind(query), args...); err != nil {
		return nil, apperr.Storage("attempt history", err)
	}
	return attempts, nil
}

type candidateRow struct {
	models.SentencePair
	RecordID        sql.NullInt64   `db:"record_id"`
	Attempts        sql.NullInt64   `db:"attempts"`
	CorrectAttempts sql.NullInt64   `db:"correct_attempts"`
	ExposureCount   sql.NullInt64   `db:"exposure_count"`
	IsMemorized     sql.NullBool    `db:"is_memorized"`
	MemorizedAt     sql.NullTime    `db:"memorized_at"`
	LastAttemptAt   sql.NullTime    `db:"last_attempt_at"`
	DifficultyScore sql.NullFloat64 `db:"difficulty_score"`
	RecordCreatedAt sql.NullTime    `db:"record_created_at"`
	RecordUpdatedAt sql.NullTime    `db:"record_updated_at"`
}

func (row candidateRow) candidate() models.Candidate {
	c := models.Candidate{Pair: row.SentencePair}
	if !row.RecordID.Valid {
		return c
	}

	c.Record = &models.MemorizationRecord{
		ID:              row.RecordID.Int64,
		SentencePairID:  row.ID,
		Attempts:        int(row.Attempts.Int64),
		CorrectAttempts: int(row.CorrectAttempts.Int64),
		ExposureCount:   int(row.ExposureCount.Int64),
		IsMemorized:     row.IsMemorized.Bool,
		MemorizedAt:     nullTime(row.MemorizedAt),
		LastAttemptAt:   nullTime(row.LastAttemptAt),
		DifficultyScore: row.DifficultyScore.Float64,
		CreatedAt:       row.RecordCreatedAt.Time,
		UpdatedAt:       row.RecordUpdatedAt.Time,
	}
	return c
}

// ListCandidates returns every sentence pair joined with its record, if any
func (r *MemorizationRepository) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	query := `
		SELECT p.id, p.english, p.korean, p.created_at, p.updated_at,
			m.id AS record_id, m.attempts, m.correct_attempts, m.exposure_count,
			m.is_memorized, m.memorized_at, m.last_attempt_at, m.difficulty_score,
			m.created_at AS record_created_at, m.updated_at AS record_updated_at
		FROM sentence_pairs p
		LEFT JOIN memorization_records m ON m.sentence_pair_id = p.id
		ORDER BY p.id
	`
	var rows []candidateRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, apperr.Storage("list candidates", err)
	}

	candidates := make([]models.Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, row.candidate())
	}
	return candidates, nil
}

// getOrCreate loads the record inside tx, inserting it first if missing.
// Concurrent callers race on the unique sentence_pair_id; the loser's insert
// is a no-op and both read the same row.
func (r *MemorizationRepository) getOrCreate(ctx context.Context, tx *sqlx.Tx, pairID int64) (*models.MemorizationRecord, error) {
	selectRecord := tx.Rebind(`SELECT ` + recordColumns + ` FROM memorization_records WHERE sentence_pair_id = ?` + r.db.lockClause())

	var record models.MemorizationRecord
	err := tx.GetContext(ctx, &record, selectRecord, pairID)
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Storage("get memorization record", err)
	}

	var exists int64
	err = tx.GetContext(ctx, &exists, tx.Rebind(`SELECT id FROM sentence_pairs WHERE id = ?`), pairID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("sentence pair %d not found", pairID)
	}
	if err != nil {
		return nil, apperr.Storage("get sentence pair", err)
	}

	now := r.db.now()
	insert := tx.Rebind(`
		INSERT INTO memorization_records (sentence_pair_id, difficulty_score, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (sentence_pair_id) DO NOTHING
	`)
	if _, err := tx.ExecContext(ctx, insert, pairID, spaced_repetition.DefaultDifficulty, now, now); err != nil {
		return nil, apperr.Storage("create memorization record", err)
	}

	if err := tx.GetContext(ctx, &record, selectRecord, pairID); err != nil {
		return nil, apperr.Storage("get memorization record", err)
	}
	return &record, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
