package bot

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/memorizer/internal/scheduler"
	"github.com/example/memorizer/pkg/models"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func TestFormatReminder(t *testing.T) {
	text := FormatReminder(scheduler.Reminder{
		AttemptsToday: 3,
		DailyGoal:     10,
		StreakDays:    1,
		Next:          &models.SentencePair{ID: 1, English: "A < B", Korean: "에이 < 비"},
	})

	assert.Contains(t, text, "Today: 3/10 sentences")
	assert.Contains(t, text, "Streak: 1 day\n")
	assert.Contains(t, text, "에이 &lt; 비")
	assert.NotContains(t, text, "A < B", "the answer must not leak")
}

func TestFormatReminderNothingLeft(t *testing.T) {
	text := FormatReminder(scheduler.Reminder{DailyGoal: 10})

	assert.NotContains(t, text, "Streak")
	assert.Contains(t, text, "Everything is memorized")
}

func TestSendReminder(t *testing.T) {
	api := &fakeSender{}
	b := NewWithAPI(api, 42, zap.NewNop())

	err := b.SendReminder(context.Background(), scheduler.Reminder{AttemptsToday: 1, DailyGoal: 5, StreakDays: 2})
	require.NoError(t, err)

	require.Len(t, api.sent, 1)
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "Streak: 2 days")
}

func TestSendReminderErrors(t *testing.T) {
	b := NewWithAPI(&fakeSender{err: errors.New("Forbidden: bot was blocked by the user")}, 42, zap.NewNop())
	assert.Error(t, b.SendReminder(context.Background(), scheduler.Reminder{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	api := &fakeSender{}
	b = NewWithAPI(api, 42, zap.NewNop())
	assert.ErrorIs(t, b.SendReminder(ctx, scheduler.Reminder{}), context.Canceled)
	assert.Empty(t, api.sent)
}
