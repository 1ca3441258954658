package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/memorizer/internal/bot"
	"github.com/example/memorizer/internal/scheduler"
)

var errRemindersDisabled = errors.New("reminders are disabled or telegram is not configured")

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daily study reminder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)

			if !a.cfg.Reminder.Enabled || !a.cfg.Telegram.Configured() {
				return errRemindersDisabled
			}

			notifier, err := bot.New(a.cfg.Telegram.Token, a.cfg.Telegram.ChatID, a.log.Named("bot"))
			if err != nil {
				return err
			}

			s, err := scheduler.New(a.cfg.Reminder, a.study, notifier, a.log.Named("scheduler"))
			if err != nil {
				return err
			}
			if err := s.Start(); err != nil {
				return err
			}
			defer s.Stop()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			a.log.Info("reminder service started, press Ctrl+C to stop")
			select {
			case sig := <-sigChan:
				a.log.Info("received signal", zap.String("signal", sig.String()))
			case <-cmd.Context().Done():
			}

			a.log.Info("reminder service stopped")
			return nil
		},
	}
}
