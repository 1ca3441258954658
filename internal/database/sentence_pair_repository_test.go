package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/memorizer/internal/apperr"
)

func TestSentencePairCRUD(t *testing.T) {
	db, clock := newTestDB(t)
	repo := NewSentencePairRepository(db)
	ctx := context.Background()

	first, err := repo.Create(ctx, "  Good morning.  ", "좋은 아침입니다.")
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Equal(t, "Good morning.", first.English)

	clock.Advance(time.Minute)
	second, err := repo.Create(ctx, "Thank you.", "감사합니다.")
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "좋은 아침입니다.", got.Korean)
	assert.True(t, got.CreatedAt.Equal(first.CreatedAt))

	pairs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, second.ID, pairs[0].ID, "newest first")

	clock.Advance(time.Hour)
	updated, err := repo.Update(ctx, first.ID, "Good morning!", "좋은 아침!")
	require.NoError(t, err)
	assert.Equal(t, "Good morning!", updated.English)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.Delete(ctx, first.ID))
	_, err = repo.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSentencePairValidation(t *testing.T) {
	db, _ := newTestDB(t)
	repo := NewSentencePairRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, "", "안녕")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = repo.Create(ctx, "Hello", "   ")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = repo.Update(ctx, 999, "Hello", "안녕")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = repo.Delete(ctx, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateKeepsMemorizationRecord(t *testing.T) {
	db, _ := newTestDB(t)
	pairs := NewSentencePairRepository(db)
	records := NewMemorizationRepository(db)
	ctx := context.Background()

	pair, err := pairs.Create(ctx, "I am a student.", "저는 학생입니다.")
	require.NoError(t, err)
	_, err = records.RecordAttempt(ctx, pair.ID, true, 4000)
	require.NoError(t, err)

	_, err = pairs.Update(ctx, pair.ID, "I'm a student.", "저는 학생이에요.")
	require.NoError(t, err)

	record, err := records.GetByPair(ctx, pair.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, record.Attempts)
	assert.Equal(t, 1, record.CorrectAttempts)
}
