package spaced_repetition

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/memorizer/pkg/models"
)

func candidate(id int64, record *models.MemorizationRecord) models.Candidate {
	return models.Candidate{
		Pair:   models.SentencePair{ID: id, English: "sentence", Korean: "문장"},
		Record: record,
	}
}

func at(minutesAgo int) *time.Time {
	t := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC).Add(-time.Duration(minutesAgo) * time.Minute)
	return &t
}

func ids(candidates []models.Candidate) []int64 {
	out := make([]int64, len(candidates))
	for i, c := range candidates {
		out[i] = c.Pair.ID
	}
	return out
}

func TestSelectNextEmpty(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(1)))

	pair, ok := s.SelectNext(nil)
	assert.False(t, ok)
	assert.Nil(t, pair)
}

func TestSelectNextPrefersNonMemorized(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(1)))

	// A memorized pair never wins while a non-memorized one exists, whatever its score
	candidates := []models.Candidate{
		candidate(1, &models.MemorizationRecord{IsMemorized: true, DifficultyScore: 1}),
		candidate(2, &models.MemorizationRecord{DifficultyScore: 0}),
	}

	for i := 0; i < 50; i++ {
		pair, ok := s.SelectNext(candidates)
		require.True(t, ok)
		assert.Equal(t, int64(2), pair.ID)
	}
}

func TestRankOrdering(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(7)))

	candidates := []models.Candidate{
		candidate(1, &models.MemorizationRecord{IsMemorized: true, DifficultyScore: MemorizedDifficulty}),
		candidate(2, &models.MemorizationRecord{DifficultyScore: 0.3, LastAttemptAt: at(5)}),
		candidate(3, nil), // counts as 0.5, never attempted
		candidate(4, &models.MemorizationRecord{DifficultyScore: 0.8, LastAttemptAt: at(1)}),
		candidate(5, &models.MemorizationRecord{DifficultyScore: 0.5, LastAttemptAt: at(60)}),
		candidate(6, &models.MemorizationRecord{DifficultyScore: 0.5, LastAttemptAt: at(10)}),
	}

	ranked := s.Rank(candidates)
	assert.Equal(t, []int64{4, 3, 5, 6, 2, 1}, ids(ranked))

	// input is left untouched
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, ids(candidates))
}

func TestRankNeverAttemptedBeforeAttempted(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(3)))

	candidates := []models.Candidate{
		candidate(1, &models.MemorizationRecord{DifficultyScore: 0.5, LastAttemptAt: at(100000)}),
		candidate(2, &models.MemorizationRecord{DifficultyScore: 0.5}),
	}

	pair, ok := s.SelectNext(candidates)
	require.True(t, ok)
	assert.Equal(t, int64(2), pair.ID)
}

func TestSelectNextBreaksFullTiesRandomly(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(42)))

	candidates := []models.Candidate{
		candidate(1, nil),
		candidate(2, nil),
		candidate(3, nil),
	}

	seen := make(map[int64]int)
	for i := 0; i < 300; i++ {
		pair, ok := s.SelectNext(candidates)
		require.True(t, ok)
		seen[pair.ID]++
	}

	assert.Len(t, seen, 3)
	for id, n := range seen {
		assert.Greater(t, n, 50, "pair %d picked only %d times", id, n)
	}
}

func TestNewSelectorWithoutRand(t *testing.T) {
	s := NewSelector(nil)

	pair, ok := s.SelectNext([]models.Candidate{candidate(9, nil)})
	require.True(t, ok)
	assert.Equal(t, int64(9), pair.ID)
}
