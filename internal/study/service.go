// Package study ties the record store and the review scheduler together
// into the operations a front end calls.
package study

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/memorizer/internal/apperr"
	"github.com/example/memorizer/internal/spaced_repetition"
	"github.com/example/memorizer/pkg/models"
)

// PairStore reads sentence pairs
type PairStore interface {
	GetByID(ctx context.Context, id int64) (*models.SentencePair, error)
}

// RecordStore persists memorization records
type RecordStore interface {
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
	GetOrCreate(ctx context.Context, pairID int64) (*models.MemorizationRecord, error)
	RecordAttempt(ctx context.Context, pairID int64, isCorrect bool, responseTimeMs int64) (*models.MemorizationRecord, error)
	MarkMemorized(ctx context.Context, pairID int64) (*models.MemorizationRecord, error)
}

// StatsStore aggregates progress
type StatsStore interface {
	Summary(ctx context.Context, loc *time.Location) (*models.Statistics, error)
}

// Submission is one typed answer for a sentence pair
type Submission struct {
	PairID         int64
	Answer         string
	ResponseTimeMs int64
}

// Result is the outcome of a submission
type Result struct {
	IsCorrect bool
	Expected  string
	Record    *models.MemorizationRecord
}

// Service handles study sessions
type Service struct {
	pairs    PairStore
	records  RecordStore
	stats    StatsStore
	selector *spaced_repetition.Selector
	loc      *time.Location
	log      *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithSelector sets the selector, mainly to seed its randomness
func WithSelector(selector *spaced_repetition.Selector) Option {
	return func(s *Service) { s.selector = selector }
}

// WithLocation sets the timezone used for daily statistics
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService creates a new study service
func NewService(pairs PairStore, records RecordStore, stats StatsStore, opts ...Option) *Service {
	s := &Service{
		pairs:   pairs,
		records: records,
		stats:   stats,
		loc:     time.UTC,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.selector == nil {
		s.selector = spaced_repetition.NewSelector(nil)
	}
	return s
}

// Next picks the pair to study now. The second return value is false when
// there is nothing to study. The chosen pair gets a record if it had none.
func (s *Service) Next(ctx context.Context) (*models.SentencePair, bool, error) {
	candidates, err := s.records.ListCandidates(ctx)
	if err != nil {
		return nil, false, err
	}

	pair, ok := s.selector.SelectNext(candidates)
	if !ok {
		return nil, false, nil
	}

	if _, err := s.records.GetOrCreate(ctx, pair.ID); err != nil {
		return nil, false, err
	}

	s.log.Debug("selected next pair",
		zap.Int64("pair_id", pair.ID),
		zap.Int("candidates", len(candidates)),
	)
	return pair, true, nil
}

// Preview returns up to limit candidates in study order without touching storage
func (s *Service) Preview(ctx context.Context, limit int) ([]models.Candidate, error) {
	candidates, err := s.records.ListCandidates(ctx)
	if err != nil {
		return nil, err
	}

	ranked := s.selector.Rank(candidates)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Submit scores an answer against the English sentence and records the attempt
func (s *Service) Submit(ctx context.Context, sub Submission) (*Result, error) {
	if sub.PairID <= 0 {
		return nil, apperr.InvalidInput("sentence pair id is required")
	}
	if sub.ResponseTimeMs <= 0 {
		return nil, apperr.InvalidInput("response time must be positive")
	}

	pair, err := s.pairs.GetByID(ctx, sub.PairID)
	if err != nil {
		return nil, err
	}

	correct := IsCorrect(sub.Answer, pair.English)
	record, err := s.records.RecordAttempt(ctx, pair.ID, correct, sub.ResponseTimeMs)
	if err != nil {
		return nil, err
	}

	s.log.Info("attempt recorded",
		zap.Int64("pair_id", pair.ID),
		zap.Bool("correct", correct),
		zap.Int64("response_time_ms", sub.ResponseTimeMs),
		zap.Float64("difficulty", record.DifficultyScore),
	)

	return &Result{
		IsCorrect: correct,
		Expected:  pair.English,
		Record:    record,
	}, nil
}

// MarkMemorized moves a pair to the back of the queue for good
func (s *Service) MarkMemorized(ctx context.Context, pairID int64) (*models.MemorizationRecord, error) {
	if pairID <= 0 {
		return nil, apperr.InvalidInput("sentence pair id is required")
	}

	record, err := s.records.MarkMemorized(ctx, pairID)
	if err != nil {
		return nil, err
	}

	s.log.Info("pair memorized", zap.Int64("pair_id", pairID))
	return record, nil
}

// Stats returns the progress summary
func (s *Service) Stats(ctx context.Context) (*models.Statistics, error) {
	return s.stats.Summary(ctx, s.loc)
}
