package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/memorizer/internal/scheduler"
)

// sender is the part of tgbotapi.BotAPI the notifier needs
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot delivers study reminders to a single Telegram chat
type Bot struct {
	api    sender
	chatID int64
	log    *zap.Logger
}

// New connects to the Telegram Bot API
func New(token string, chatID int64, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	log.Info("authorized on telegram", zap.String("account", api.Self.UserName))
	return NewWithAPI(api, chatID, log), nil
}

// NewWithAPI wraps an existing API client
func NewWithAPI(api sender, chatID int64, log *zap.Logger) *Bot {
	return &Bot{api: api, chatID: chatID, log: log}
}

// SendReminder sends a reminder message to the configured chat
func (b *Bot) SendReminder(ctx context.Context, reminder scheduler.Reminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(b.chatID, FormatReminder(reminder))
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}

	b.log.Debug("reminder delivered", zap.Int64("chat_id", b.chatID))
	return nil
}

// FormatReminder renders the reminder text
func FormatReminder(r scheduler.Reminder) string {
	var sb strings.Builder

	sb.WriteString("📚 <b>Time to practice!</b>\n\n")
	fmt.Fprintf(&sb, "Today: %d/%d sentences\n", r.AttemptsToday, r.DailyGoal)
	if r.StreakDays > 0 {
		fmt.Fprintf(&sb, "🔥 Streak: %d %s\n", r.StreakDays, plural(r.StreakDays, "day", "days"))
	}

	if r.Next != nil {
		sb.WriteString("\nNext up:\n")
		fmt.Fprintf(&sb, "<i>%s</i>\n", escapeHTML(r.Next.Korean))
	} else {
		sb.WriteString("\nEverything is memorized. Add new sentences to keep going.\n")
	}

	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
