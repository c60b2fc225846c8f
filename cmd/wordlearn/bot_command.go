package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/spf13/cobra"

	"github.com/smith3v/word-learner/pkg/bot/handlers"
	"github.com/smith3v/word-learner/pkg/bot/reminders"
	"github.com/smith3v/word-learner/pkg/config"
	"github.com/smith3v/word-learner/pkg/connectivity"
	"github.com/smith3v/word-learner/pkg/db"
	"github.com/smith3v/word-learner/pkg/learner"
	"github.com/smith3v/word-learner/pkg/logger"
)

func newBotCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if cfg.Telegram.Token == "" {
				return errors.New("telegram.token is required (or set WORDLEARN_TELEGRAM_TOKEN)")
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			monitor := connectivity.NewMonitor(cfg.Connectivity)
			if err := monitor.Start(); err != nil {
				return err
			}
			defer monitor.Stop()

			return ctx.withService(monitor, func(svc *learner.Service, _ *db.Store) error {
				return runBot(runCtx, cfg.Telegram, handlers.New(svc, cfg.Telegram.Token,
					handlers.WithAllowedUserID(cfg.Telegram.AllowedUserID),
				))
			})
		},
	}
}

func runBot(ctx context.Context, cfg config.TelegramConfig, h *handlers.Handler) error {
	b, err := bot.New(cfg.Token, bot.WithDefaultHandler(h.DefaultHandler))
	if err != nil {
		return err
	}
	h.Register(b)

	if scheduler := reminders.New(h, cfg); scheduler != nil {
		go scheduler.Run(ctx, b)
	}

	logger.Info("starting bot")
	b.Start(ctx)
	logger.Info("bot stopped")
	return nil
}
