package spaced_repetition

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/example/memorizer/pkg/models"
)

// Selector picks the next sentence pair to study
type Selector struct {
	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewSelector creates a selector. A nil rng is replaced by a time-seeded one.
func NewSelector(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{rng: rng}
}

// SelectNext returns the highest-ranked pair, or false if there are no candidates
func (s *Selector) SelectNext(candidates []models.Candidate) (*models.SentencePair, bool) {
	if len(candidates) == 0 {
		return nil, false
	}

	ranked := s.Rank(candidates)
	pair := ranked[0].Pair
	return &pair, true
}

// Rank returns a copy of candidates ordered by study priority:
//  1. Pairs that are not memorized
//  2. Higher difficulty score
//  3. Longer since the last attempt (never attempted comes first)
//  4. Random
func (s *Selector) Rank(candidates []models.Candidate) []models.Candidate {
	ranked := make([]models.Candidate, len(candidates))
	copy(ranked, candidates)

	// Shuffle first so the stable sort leaves full ties in random order
	s.mu.Lock()
	s.rng.Shuffle(len(ranked), func(i, j int) {
		ranked[i], ranked[j] = ranked[j], ranked[i]
	})
	s.mu.Unlock()

	sort.SliceStable(ranked, func(i, j int) bool {
		return higherPriority(ranked[i], ranked[j])
	})

	return ranked
}

func higherPriority(a, b models.Candidate) bool {
	// First priority: pairs not yet memorized
	aMemorized, bMemorized := a.Memorized(), b.Memorized()
	if aMemorized != bMemorized {
		return !aMemorized
	}

	// Second priority: harder pairs
	aDifficulty, bDifficulty := EffectiveDifficulty(a.Record), EffectiveDifficulty(b.Record)
	if aDifficulty != bDifficulty {
		return aDifficulty > bDifficulty
	}

	// Third priority: most overdue
	aLast, bLast := lastAttempt(a), lastAttempt(b)
	switch {
	case aLast == nil && bLast == nil:
		return false
	case aLast == nil:
		return true
	case bLast == nil:
		return false
	}
	return aLast.Before(*bLast)
}

func lastAttempt(c models.Candidate) *time.Time {
	if c.Record == nil {
		return nil
	}
	return c.Record.LastAttemptAt
}
