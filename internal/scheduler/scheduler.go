package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/example/memorizer/internal/config"
	"github.com/example/memorizer/pkg/models"
)

const checkTimeout = 30 * time.Second

// Reminder is the content of a daily study nudge
type Reminder struct {
	AttemptsToday int
	DailyGoal     int
	StreakDays    int
	Next          *models.SentencePair // nil when nothing is left to study
}

// Notifier interface for sending notifications
type Notifier interface {
	SendReminder(ctx context.Context, reminder Reminder) error
}

// StudySource provides the progress a reminder is based on
type StudySource interface {
	Stats(ctx context.Context) (*models.Statistics, error)
	Preview(ctx context.Context, limit int) ([]models.Candidate, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	study     StudySource
	cfg       config.Reminder
	log       *zap.Logger
}

// New creates a new scheduler instance running in the reminder timezone
func New(cfg config.Reminder, study StudySource, notifier Notifier, log *zap.Logger) (*Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load reminder timezone: %w", err)
	}

	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		notifier:  notifier,
		study:     study,
		cfg:       cfg,
		log:       log,
	}, nil
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	at := fmt.Sprintf("%02d:00", s.cfg.Hour)
	if _, err := s.scheduler.Every(1).Day().At(at).Do(s.runCheck); err != nil {
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}

	s.log.Info("reminder scheduled",
		zap.String("at", at),
		zap.String("timezone", s.scheduler.Location().String()),
		zap.Int("daily_goal", s.cfg.DailyGoal),
	)

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	if _, err := s.CheckAndSend(ctx); err != nil {
		s.log.Error("reminder check failed", zap.Error(err))
	}
}

// CheckAndSend sends a reminder if fewer attempts than the daily goal were
// made today. It reports whether a reminder went out.
func (s *Scheduler) CheckAndSend(ctx context.Context) (bool, error) {
	stats, err := s.study.Stats(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load statistics: %w", err)
	}

	if stats.AttemptsToday >= s.cfg.DailyGoal {
		s.log.Debug("daily goal reached, skipping reminder",
			zap.Int("attempts_today", stats.AttemptsToday),
			zap.Int("daily_goal", s.cfg.DailyGoal),
		)
		return false, nil
	}

	reminder := Reminder{
		AttemptsToday: stats.AttemptsToday,
		DailyGoal:     s.cfg.DailyGoal,
		StreakDays:    stats.StreakDays,
	}

	next, err := s.study.Preview(ctx, 1)
	if err != nil {
		return false, fmt.Errorf("failed to pick next pair: %w", err)
	}
	if len(next) > 0 && !next[0].Memorized() {
		pair := next[0].Pair
		reminder.Next = &pair
	}

	if err := s.notifier.SendReminder(ctx, reminder); err != nil {
		return false, fmt.Errorf("failed to send reminder: %w", err)
	}

	s.log.Info("reminder sent", zap.Int("attempts_today", stats.AttemptsToday))
	return true, nil
}
