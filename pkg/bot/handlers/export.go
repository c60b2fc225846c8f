package handlers

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/word-learner/pkg/importexport"
	"github.com/smith3v/word-learner/pkg/logger"
)

func (h *Handler) HandleExport(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleExport")
		return
	}
	if !h.authorizeMessage(ctx, b, update.Message) {
		return
	}
	chatID := update.Message.Chat.ID

	words, err := h.svc.Words(ctx)
	if err != nil {
		logger.Error("failed to fetch words for export", "error", err)
		h.reply(ctx, b, chatID, "Failed to export your vocabulary. Please try again later.")
		return
	}
	if len(words) == 0 {
		h.reply(ctx, b, chatID, "You have no vocabulary to export.")
		return
	}

	data, err := importexport.BuildExportCSV(words)
	if err != nil {
		logger.Error("failed to build export CSV", "error", err)
		h.reply(ctx, b, chatID, "Failed to export your vocabulary. Please try again later.")
		return
	}

	_, err = b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: importexport.ExportFilename(h.now()),
			Data:     bytes.NewReader(data),
		},
		Caption: fmt.Sprintf("Your vocabulary export (%d words).", len(words)),
	})
	if err != nil {
		logger.Error("failed to send export document", "error", err)
		h.reply(ctx, b, chatID, "Failed to export your vocabulary. Please try again later.")
	}
}
