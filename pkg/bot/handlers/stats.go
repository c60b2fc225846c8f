package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/word-learner/pkg/learner"
	"github.com/smith3v/word-learner/pkg/logger"
)

func (h *Handler) HandleStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleStats")
		return
	}
	if !h.authorizeMessage(ctx, b, update.Message) {
		return
	}

	summary, err := h.svc.Summary(ctx)
	if err != nil {
		logger.Error("failed to load summary", "error", err)
		h.reply(ctx, b, update.Message.Chat.ID, "Failed to load your progress. Please try again later.")
		return
	}
	h.reply(ctx, b, update.Message.Chat.ID, formatSummary(summary))
}

func formatSummary(s learner.Summary) string {
	if s.Words == 0 {
		return "Your vocabulary is empty."
	}
	return fmt.Sprintf(
		"Words: %d\nPracticed: %d\nReviews: %d\nAccuracy: %.0f%%",
		s.Words, s.Seen, s.Reviews, s.Accuracy()*100,
	)
}
