package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/word-learner/pkg/logger"
	"github.com/smith3v/word-learner/pkg/ui"
)

const noWordText = "No word available. Add one with /add or upload a CSV file."

func (h *Handler) HandleNext(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleNext")
		return
	}
	if !h.authorizeMessage(ctx, b, update.Message) {
		return
	}
	h.SendNextWord(ctx, b, update.Message.Chat.ID)
}

// SendNextWord sends the next word card to chatID, or a notice when none is available.
func (h *Handler) SendNextWord(ctx context.Context, b *bot.Bot, chatID int64) {
	word, err := h.svc.Next(ctx)
	if err != nil {
		logger.Error("failed to select next word", "chat_id", chatID, "error", err)
		h.reply(ctx, b, chatID, "Failed to load the next word. Please try again later.")
		return
	}
	if word == nil {
		h.reply(ctx, b, chatID, noWordText)
		return
	}

	text, keyboard, err := ui.RenderWordCard(*word)
	if err != nil {
		logger.Error("failed to render word card", "word_id", word.ID, "error", err)
		h.reply(ctx, b, chatID, "Failed to load the next word. Please try again later.")
		return
	}
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to send word card", "word_id", word.ID, "error", err)
	}
}
