package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/word-learner/pkg/db"
	"github.com/smith3v/word-learner/pkg/logger"
)

const addUsage = "Usage: /add word; meaning; etymology; translation"

var errNotAddCommand = errors.New("not an /add command")

func (h *Handler) HandleAdd(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleAdd")
		return
	}
	if !h.authorizeMessage(ctx, b, update.Message) {
		return
	}
	chatID := update.Message.Chat.ID

	draft, err := parseAddCommand(update.Message.Text)
	if errors.Is(err, errNotAddCommand) {
		h.sendHelp(ctx, b, chatID)
		return
	}
	if err != nil {
		h.reply(ctx, b, chatID, addUsage)
		return
	}

	created, err := h.svc.Add(ctx, draft)
	if errors.Is(err, db.ErrInvalidDraft) {
		h.reply(ctx, b, chatID, addUsage)
		return
	}
	if err != nil {
		logger.Error("failed to add word", "word", draft.Word, "error", err)
		h.reply(ctx, b, chatID, "Failed to add the word. Please try again later.")
		return
	}
	if !created {
		h.reply(ctx, b, chatID, fmt.Sprintf("%q is already in your vocabulary.", draft.Word))
		return
	}
	h.reply(ctx, b, chatID, fmt.Sprintf("Added %q.", draft.Word))
}

// parseAddCommand splits "/add word; meaning; etymology; translation".
// Only the word is required.
func parseAddCommand(text string) (db.WordDraft, error) {
	text = strings.TrimSpace(text)
	command, rest, _ := strings.Cut(text, " ")
	if command != "/add" && !strings.HasPrefix(command, "/add@") {
		return db.WordDraft{}, errNotAddCommand
	}

	parts := strings.SplitN(rest, ";", 4)
	field := func(i int) string {
		if i >= len(parts) {
			return ""
		}
		return strings.TrimSpace(parts[i])
	}
	draft := db.WordDraft{
		Word:        field(0),
		Meaning:     field(1),
		Etymology:   field(2),
		Translation: field(3),
	}
	if draft.Word == "" {
		return db.WordDraft{}, db.ErrInvalidDraft
	}
	return draft, nil
}
