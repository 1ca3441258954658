package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccuracy(t *testing.T) {
	assert.Zero(t, (&MemorizationRecord{}).Accuracy())
	assert.InDelta(t, 0.75, (&MemorizationRecord{Attempts: 4, CorrectAttempts: 3}).Accuracy(), 1e-9)
}

func TestCandidateMemorized(t *testing.T) {
	pair := SentencePair{ID: 1, English: "Hi.", Korean: "안녕."}

	assert.False(t, Candidate{Pair: pair}.Memorized())
	assert.False(t, Candidate{Pair: pair, Record: &MemorizationRecord{Attempts: 2}}.Memorized())
	assert.True(t, Candidate{Pair: pair, Record: &MemorizationRecord{IsMemorized: true}}.Memorized())
}
