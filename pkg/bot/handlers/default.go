package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/word-learner/pkg/importexport"
	"github.com/smith3v/word-learner/pkg/logger"
)

const unsupportedFileText = "Please upload a CSV or XLSX file."

// DefaultHandler imports uploaded vocabulary files and answers anything
// else with the command list.
func (h *Handler) DefaultHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("received invalid update in DefaultHandler")
		return
	}
	if !h.authorizeMessage(ctx, b, update.Message) {
		return
	}
	if update.Message.Document == nil {
		h.sendHelp(ctx, b, update.Message.Chat.ID)
		return
	}
	h.importDocument(ctx, b, update.Message)
}

func (h *Handler) importDocument(ctx context.Context, b *bot.Bot, msg *models.Message) {
	chatID := msg.Chat.ID
	doc := msg.Document
	logger.Info("uploading file", "file_name", doc.FileName, "chat_id", chatID)

	if !importexport.IsSupportedFile(doc.FileName) {
		h.reply(ctx, b, chatID, unsupportedFileText)
		return
	}
	if doc.FileSize > maxUploadBytes {
		h.reply(ctx, b, chatID, "The file is too large to import.")
		return
	}

	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: doc.FileID})
	if err != nil {
		logger.Error("failed to get file", "error", err)
		h.reply(ctx, b, chatID, "Failed to download the file. Please try again.")
		return
	}

	data, err := h.download(ctx, fmt.Sprintf("%s%s/%s", fileBaseURL, h.token, file.FilePath))
	if err != nil {
		logger.Error("failed to download file", "file_name", doc.FileName, "error", err)
		h.reply(ctx, b, chatID, "Failed to download the file. Please try again.")
		return
	}

	drafts, skipped, err := importexport.ParseVocabularyFile(doc.FileName, data)
	if errors.Is(err, importexport.ErrUnsupportedFormat) {
		h.reply(ctx, b, chatID, unsupportedFileText)
		return
	}
	if err != nil {
		logger.Error("failed to parse vocabulary file", "file_name", doc.FileName, "error", err)
		h.reply(ctx, b, chatID, "Failed to read the file. Please ensure it is in the correct format.")
		return
	}
	if len(drafts) == 0 {
		h.reply(ctx, b, chatID, "No valid words found to import.")
		return
	}

	inserted, duplicates, err := h.svc.Import(ctx, drafts)
	if err != nil {
		logger.Error("failed to import words", "error", err)
		h.reply(ctx, b, chatID, "Failed to import your words. Please try again later.")
		return
	}

	h.reply(ctx, b, chatID, fmt.Sprintf(
		"Imported %d new words, skipped %d already known and %d invalid rows.",
		inserted, duplicates, skipped,
	))
}

func (h *Handler) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxUploadBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", maxUploadBytes)
	}
	return data, nil
}
