package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/memorizer/internal/config"
	"github.com/example/memorizer/pkg/models"
)

type fakeStudy struct {
	stats    models.Statistics
	preview  []models.Candidate
	statsErr error
}

func (f *fakeStudy) Stats(context.Context) (*models.Statistics, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	stats := f.stats
	return &stats, nil
}

func (f *fakeStudy) Preview(_ context.Context, limit int) ([]models.Candidate, error) {
	if len(f.preview) > limit {
		return f.preview[:limit], nil
	}
	return f.preview, nil
}

type fakeNotifier struct {
	sent []Reminder
	err  error
}

func (f *fakeNotifier) SendReminder(_ context.Context, r Reminder) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, r)
	return nil
}

func newTestScheduler(t *testing.T, study StudySource, notifier Notifier) *Scheduler {
	t.Helper()
	s, err := New(config.Reminder{Enabled: true, Hour: 9, DailyGoal: 5, Timezone: "Asia/Seoul"}, study, notifier, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestCheckAndSendBelowGoal(t *testing.T) {
	study := &fakeStudy{
		stats: models.Statistics{AttemptsToday: 2, StreakDays: 4},
		preview: []models.Candidate{
			{Pair: models.SentencePair{ID: 7, English: "Let's eat.", Korean: "먹자."}},
		},
	}
	notifier := &fakeNotifier{}
	s := newTestScheduler(t, study, notifier)

	sent, err := s.CheckAndSend(context.Background())
	require.NoError(t, err)
	assert.True(t, sent)

	require.Len(t, notifier.sent, 1)
	r := notifier.sent[0]
	assert.Equal(t, 2, r.AttemptsToday)
	assert.Equal(t, 5, r.DailyGoal)
	assert.Equal(t, 4, r.StreakDays)
	require.NotNil(t, r.Next)
	assert.Equal(t, int64(7), r.Next.ID)
}

func TestCheckAndSendGoalReached(t *testing.T) {
	study := &fakeStudy{stats: models.Statistics{AttemptsToday: 5}}
	notifier := &fakeNotifier{}
	s := newTestScheduler(t, study, notifier)

	sent, err := s.CheckAndSend(context.Background())
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, notifier.sent)
}

func TestCheckAndSendOnlyMemorizedLeft(t *testing.T) {
	study := &fakeStudy{
		preview: []models.Candidate{{
			Pair:   models.SentencePair{ID: 1},
			Record: &models.MemorizationRecord{IsMemorized: true},
		}},
	}
	notifier := &fakeNotifier{}
	s := newTestScheduler(t, study, notifier)

	sent, err := s.CheckAndSend(context.Background())
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Nil(t, notifier.sent[0].Next)
}

func TestCheckAndSendErrors(t *testing.T) {
	s := newTestScheduler(t, &fakeStudy{statsErr: errors.New("db down")}, &fakeNotifier{})
	_, err := s.CheckAndSend(context.Background())
	assert.Error(t, err)

	s = newTestScheduler(t, &fakeStudy{}, &fakeNotifier{err: errors.New("telegram down")})
	sent, err := s.CheckAndSend(context.Background())
	assert.Error(t, err)
	assert.False(t, sent)
}

func TestNewRejectsBadTimezone(t *testing.T) {
	_, err := New(config.Reminder{Timezone: "Mars/Olympus"}, &fakeStudy{}, &fakeNotifier{}, zap.NewNop())
	assert.Error(t, err)
}

func TestStartAndStop(t *testing.T) {
	s := newTestScheduler(t, &fakeStudy{}, &fakeNotifier{})
	require.NoError(t, s.Start())
	assert.Len(t, s.scheduler.Jobs(), 1)
	s.Stop()
}
