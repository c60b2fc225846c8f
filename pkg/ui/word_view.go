package ui

import (
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/word-learner/pkg/db"
)

// RenderWordCard formats a word for MarkdownV2 with the meaning and
// translation hidden under spoilers, plus the answer buttons.
func RenderWordCard(w db.Word) (string, *models.InlineKeyboardMarkup, error) {
	knewData, err := BuildAnswerCallback(w.ID, true)
	if err != nil {
		return "", nil, err
	}
	missedData, err := BuildAnswerCallback(w.ID, false)
	if err != nil {
		return "", nil, err
	}

	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "I knew it", CallbackData: knewData},
				{Text: "I missed it", CallbackData: missedData},
			},
		},
	}
	return formatWord(w, true), keyboard, nil
}

// RenderAnsweredCard reveals the word after an answer and removes the buttons.
func RenderAnsweredCard(w db.Word, correct bool) (string, *models.InlineKeyboardMarkup) {
	outcome := "✅ Knew it"
	if !correct {
		outcome = "❌ Missed it"
	}
	text := formatWord(w, false) + "\n\n" + bot.EscapeMarkdown(fmt.Sprintf(
		"%s · seen %d, correct %d, difficulty %d",
		outcome, w.TimesSeen, w.TimesCorrect, w.DifficultyScore,
	))
	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{},
	}
	return text, keyboard
}

func RenderNextKeyboard() (*models.InlineKeyboardMarkup, error) {
	nextData, err := BuildNextCallback()
	if err != nil {
		return nil, err
	}
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Next word", CallbackData: nextData}},
		},
	}, nil
}

func formatWord(w db.Word, hidden bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*", bot.EscapeMarkdown(w.Word))
	writeField(&b, "Translation", w.Translation, hidden)
	writeField(&b, "Meaning", w.Meaning, hidden)
	if w.Etymology != "" {
		fmt.Fprintf(&b, "\n_%s_", bot.EscapeMarkdown(w.Etymology))
	}
	return b.String()
}

func writeField(b *strings.Builder, label, value string, hidden bool) {
	if value == "" {
		return
	}
	value = bot.EscapeMarkdown(value)
	if hidden {
		value = "||" + value + "||"
	}
	fmt.Fprintf(b, "\n%s: %s", label, value)
}
