package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/example/memorizer/internal/apperr"
	"github.com/example/memorizer/pkg/models"
)

const sentencePairColumns = `id, english, korean, created_at, updated_at`

// SentencePairRepository handles database operations for sentence pairs
type SentencePairRepository struct {
	db *DB
}

// NewSentencePairRepository creates a new repository instance
func NewSentencePairRepository(db *DB) *SentencePairRepository {
	return &SentencePairRepository{db: db}
}

// Create inserts a new sentence pair. Both texts are required.
func (r *SentencePairRepository) Create(ctx context.Context, english, korean string) (*models.SentencePair, error) {
	english, korean, err := cleanTexts(english, korean)
	if err != nil {
		return nil, err
	}

	now := r.db.now()
	pair := &models.SentencePair{
		English:   english,
		Korean:    korean,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := r.db.Rebind(`
		INSERT INTO sentence_pairs (english, korean, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	if err := r.db.GetContext(ctx, &pair.ID, query, pair.English, pair.Korean, pair.CreatedAt, pair.UpdatedAt); err != nil {
		return nil, apperr.Storage("create sentence pair", err)
	}

	return pair, nil
}

// GetByID returns a sentence pair by ID
func (r *SentencePairRepository) GetByID(ctx context.Context, id int64) (*models.SentencePair, error) {
	var pair models.SentencePair
	query := r.db.Rebind(`SELECT ` + sentencePairColumns + ` FROM sentence_pairs WHERE id = ?`)
	err := r.db.GetContext(ctx, &pair, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("sentence pair %d not found", id)
	}
	if err != nil {
		return nil, apperr.Storage("get sentence pair", err)
	}
	return &pair, nil
}

// List returns all sentence pairs, newest first
func (r *SentencePairRepository) List(ctx context.Context) ([]models.SentencePair, error) {
	pairs := []models.SentencePair{}
	query := `SELECT ` + sentencePairColumns + ` FROM sentence_pairs ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &pairs, query); err != nil {
		return nil, apperr.Storage("list sentence pairs", err)
	}
	return pairs, nil
}

// Count returns the number of stored sentence pairs
func (r *SentencePairRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sentence_pairs`); err != nil {
		return 0, apperr.Storage("count sentence pairs", err)
	}
	return count, nil
}

// Update replaces the texts of a pair. The memorization record is kept.
func (r *SentencePairRepository) Update(ctx context.Context, id int64, english, korean string) (*models.SentencePair, error) {
	english, korean, err := cleanTexts(english, korean)
	if err != nil {
		return nil, err
	}

	query := r.db.Rebind(`
		UPDATE sentence_pairs SET
			english = ?,
			korean = ?,
			updated_at = ?
		WHERE id = ?
	`)
	result, err := r.db.ExecContext(ctx, query, english, korean, r.db.now(), id)
	if err != nil {
		return nil, apperr.Storage("update sentence pair", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, apperr.Storage("update sentence pair", err)
	}
	if rows == 0 {
		return nil, apperr.NotFound("sentence pair %d not found", id)
	}

	return r.GetByID(ctx, id)
}

// Delete removes a pair together with its memorization record and attempt log
func (r *SentencePairRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sentence_pairs WHERE id = ?`), id)
	if err != nil {
		return apperr.Storage("delete sentence pair", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.Storage("delete sentence pair", err)
	}
	if rows == 0 {
		return apperr.NotFound("sentence pair %d not found", id)
	}

	return nil
}

func cleanTexts(english, korean string) (string, string, error) {
	english = strings.TrimSpace(english)
	korean = strings.TrimSpace(korean)
	if english == "" || korean == "" {
		return "", "", apperr.InvalidInput("english and korean text are both required")
	}
	return english, korean, nil
}
