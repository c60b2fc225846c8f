package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/word-learner/pkg/logger"
	"github.com/smith3v/word-learner/pkg/ui"
)

// HandleCallback processes the word card buttons.
func (h *Handler) HandleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.CallbackQuery == nil {
		logger.Error("invalid update in HandleCallback")
		return
	}
	query := update.CallbackQuery

	answered := false
	answerCallback := func(text string) {
		if answered || query.ID == "" {
			return
		}
		if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: query.ID,
			Text:            text,
		}); err != nil {
			logger.Error("failed to answer callback query", "error", err)
		}
		answered = true
	}

	if h.allowedUserID != 0 && query.From.ID != h.allowedUserID {
		logger.Warn("rejected callback from unknown user", "user_id", query.From.ID)
		answerCallback("Sorry, this bot is private.")
		return
	}

	action, err := ui.ParseCallbackData(query.Data)
	if err != nil {
		logger.Error("failed to parse callback", "data", query.Data, "error", err)
		answerCallback("Unknown command")
		return
	}

	message := query.Message
	if message.Type != models.MaybeInaccessibleMessageTypeMessage || message.Message == nil || message.Message.Chat.ID == 0 {
		logger.Error("callback query message is inaccessible", "user_id", query.From.ID)
		answerCallback("Message is not available")
		return
	}
	msg := message.Message

	switch action.Kind {
	case ui.KindNext:
		answerCallback("")
		h.SendNextWord(ctx, b, msg.Chat.ID)
	case ui.KindAnswer:
		h.answerWord(ctx, b, msg, action, answerCallback)
	}
}

func (h *Handler) answerWord(ctx context.Context, b *bot.Bot, msg *models.Message, action ui.Action, answerCallback func(string)) {
	found, err := h.svc.Answer(ctx, action.WordID, action.Correct)
	if err != nil {
		logger.Error("failed to record answer", "word_id", action.WordID, "error", err)
		answerCallback("Failed to save your answer")
		return
	}
	if !found {
		answerCallback("This word no longer exists")
		return
	}
	answerCallback("")

	word, err := h.svc.Word(ctx, action.WordID)
	if err != nil || word == nil {
		logger.Error("failed to reload answered word", "word_id", action.WordID, "error", err)
	} else {
		text, keyboard := ui.RenderAnsweredCard(*word, action.Correct)
		if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      msg.Chat.ID,
			MessageID:   msg.ID,
			Text:        text,
			ParseMode:   models.ParseModeMarkdown,
			ReplyMarkup: keyboard,
		}); err != nil {
			logger.Error("failed to edit word card", "word_id", action.WordID, "error", err)
		}
	}

	h.SendNextWord(ctx, b, msg.Chat.ID)
}
