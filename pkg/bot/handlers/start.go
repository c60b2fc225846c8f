package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/word-learner/pkg/logger"
	"github.com/smith3v/word-learner/pkg/ui"
)

const helpText = "Commands:\n" +
	"\\* /next: show the word that needs practice most\\.\n" +
	"\\* /add word; meaning; etymology; translation: add a word\\.\n" +
	"\\* /stats: show your progress\\.\n" +
	"\\* /export: download your vocabulary as CSV\\.\n\n" +
	"Attach a CSV or XLSX file with the columns word, meaning, etymology, translation to import words\\."

func (h *Handler) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleStart")
		return
	}
	if !h.authorizeMessage(ctx, b, update.Message) {
		return
	}
	h.sendHelp(ctx, b, update.Message.Chat.ID)
}

func (h *Handler) sendHelp(ctx context.Context, b *bot.Bot, chatID int64) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      helpText,
		ParseMode: models.ParseModeMarkdown,
	}
	if keyboard, err := ui.RenderNextKeyboard(); err == nil {
		params.ReplyMarkup = keyboard
	} else {
		logger.Error("failed to render next keyboard", "error", err)
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		logger.Error("failed to send help message", "chat_id", chatID, "error", err)
	}
}
