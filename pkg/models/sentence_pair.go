package models

import "time"

// SentencePair is an English sentence together with its Korean translation
type SentencePair struct {
	ID        int64     `json:"id" db:"id"`
	English   string    `json:"english" db:"english"`
	Korean    string    `json:"korean" db:"korean"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Candidate is a sentence pair joined with its memorization record.
// Record is nil when the pair has never been scheduled.
type Candidate struct {
	Pair   SentencePair
	Record *MemorizationRecord
}

// Memorized reports whether the pair has been marked memorized
func (c Candidate) Memorized() bool {
	return c.Record != nil && c.Record.IsMemorized
}
