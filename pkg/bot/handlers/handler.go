// Package handlers wires the learning loop to Telegram updates.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/word-learner/pkg/learner"
	"github.com/smith3v/word-learner/pkg/logger"
)

const (
	fileBaseURL    = "https://api.telegram.org/file/bot"
	maxUploadBytes = 10 << 20
)

type Handler struct {
	svc           *learner.Service
	token         string
	allowedUserID int64
	httpClient    *http.Client
	now           func() time.Time
}

type Option func(*Handler)

// WithAllowedUserID restricts the bot to one Telegram user. Zero allows anyone.
func WithAllowedUserID(id int64) Option {
	return func(h *Handler) {
		h.allowedUserID = id
	}
}

// WithHTTPClient sets the client used to download uploaded documents.
func WithHTTPClient(client *http.Client) Option {
	return func(h *Handler) {
		if client != nil {
			h.httpClient = client
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

func New(svc *learner.Service, token string, opts ...Option) *Handler {
	h := &Handler{
		svc:        svc,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register attaches every command and callback handler to b.
func (h *Handler) Register(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.HandleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.HandleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/next", bot.MatchTypeExact, h.HandleNext)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/add", bot.MatchTypePrefix, h.HandleAdd)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypeExact, h.HandleStats)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/export", bot.MatchTypeExact, h.HandleExport)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "w:", bot.MatchTypePrefix, h.HandleCallback)
}

// authorizeMessage reports whether the sender may use the bot and replies
// to strangers.
func (h *Handler) authorizeMessage(ctx context.Context, b *bot.Bot, msg *models.Message) bool {
	if h.allowedUserID == 0 {
		return true
	}
	if msg.From != nil && msg.From.ID == h.allowedUserID {
		return true
	}
	userID := int64(0)
	if msg.From != nil {
		userID = msg.From.ID
	}
	logger.Warn("rejected message from unknown user", "user_id", userID)
	h.reply(ctx, b, msg.Chat.ID, "Sorry, this bot is private.")
	return false
}

func (h *Handler) reply(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}); err != nil {
		logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

func validMessage(update *models.Update) bool {
	return update != nil && update.Message != nil && update.Message.Chat.ID != 0
}
