package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/smith3v/word-learner/pkg/db"
	"github.com/smith3v/word-learner/pkg/internal/testutil"
	"github.com/smith3v/word-learner/pkg/learner"
	"github.com/smith3v/word-learner/pkg/logger"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestHandler(t *testing.T, opts ...Option) (*Handler, *db.Store) {
	t.Helper()
	logger.SetLogLevel(logger.ERROR + 1)
	t.Cleanup(func() { logger.SetLogLevel(logger.INFO) })

	store := testutil.OpenTestStore(t)
	return New(learner.New(store, nil, nil), "test-token", opts...), store
}

func seedWord(t *testing.T, store *db.Store, draft db.WordDraft) db.Word {
	t.Helper()
	ctx := context.Background()
	if _, err := store.Create(ctx, draft); err != nil {
		t.Fatalf("failed to seed word: %v", err)
	}
	words, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("failed to list words: %v", err)
	}
	for _, w := range words {
		if w.Word == draft.Word {
			return w
		}
	}
	t.Fatalf("seeded word %q not found", draft.Word)
	return db.Word{}
}

func TestHandleStartSendsHelp(t *testing.T) {
	h, _ := newTestHandler(t)
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.HandleStart(context.Background(), b, newTestUpdate("/start", 100))

	got := client.lastMessageText(t)
	if !strings.Contains(got, "Commands:") || !strings.Contains(got, "/next") {
		t.Fatalf("expected commands message, got %q", got)
	}
	if mode := client.requestField(t, "sendMessage", "parse_mode"); !strings.Contains(mode, string(models.ParseModeMarkdown)) {
		t.Fatalf("expected MarkdownV2 parse mode, got %q", mode)
	}
	if markup := client.requestField(t, "sendMessage", "reply_markup"); !strings.Contains(markup, "w:n") {
		t.Fatalf("expected next button, got %q", markup)
	}
}

func TestHandlersRejectUnknownUser(t *testing.T) {
	h, store := newTestHandler(t, WithAllowedUserID(100))
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.HandleAdd(context.Background(), b, newTestUpdate("/add casa", 200))

	if got := client.lastMessageText(t); !strings.Contains(got, "private") {
		t.Fatalf("expected private bot warning, got %q", got)
	}
	empty, err := store.IsEmpty(context.Background())
	if err != nil || !empty {
		t.Fatalf("expected store to stay empty, empty=%v err=%v", empty, err)
	}
}

func TestHandleNext(t *testing.T) {
	h, store := newTestHandler(t)
	ctx := context.Background()

	client := newMockClient()
	b := newTestTelegramBot(t, client)
	h.HandleNext(ctx, b, newTestUpdate("/next", 100))
	if got := client.lastMessageText(t); got != noWordText {
		t.Fatalf("expected empty store message, got %q", got)
	}

	w := seedWord(t, store, db.WordDraft{Word: "casa", Translation: "house"})
	client = newMockClient()
	b = newTestTelegramBot(t, client)
	h.HandleNext(ctx, b, newTestUpdate("/next", 100))

	got := client.lastMessageText(t)
	if !strings.Contains(got, "*casa*") || !strings.Contains(got, "||house||") {
		t.Fatalf("expected word card, got %q", got)
	}
	markup := client.requestField(t, "sendMessage", "reply_markup")
	if !strings.Contains(markup, fmt.Sprintf("w:a:%d:1", w.ID)) || !strings.Contains(markup, fmt.Sprintf("w:a:%d:0", w.ID)) {
		t.Fatalf("expected answer buttons, got %q", markup)
	}
}

func TestParseAddCommand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    db.WordDraft
		wantErr bool
	}{
		{
			name:  "all fields",
			input: "/add casa; home; from Latin casa; house",
			want:  db.WordDraft{Word: "casa", Meaning: "home", Etymology: "from Latin casa", Translation: "house"},
		},
		{
			name:  "word only",
			input: "/add  saudade ",
			want:  db.WordDraft{Word: "saudade"},
		},
		{
			name:  "translation keeps semicolons",
			input: "/add gato; cat;; cat; feline",
			want:  db.WordDraft{Word: "gato", Meaning: "cat", Translation: "cat; feline"},
		},
		{
			name:  "bot mention",
			input: "/add@wordbot pão",
			want:  db.WordDraft{Word: "pão"},
		},
		{name: "missing word", input: "/add", wantErr: true},
		{name: "blank word", input: "/add ; meaning", wantErr: true},
		{name: "other command", input: "/address casa", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAddCommand(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestHandleAdd(t *testing.T) {
	h, store := newTestHandler(t)
	ctx := context.Background()

	client := newMockClient()
	b := newTestTelegramBot(t, client)
	h.HandleAdd(ctx, b, newTestUpdate("/add casa; home", 100))
	if got := client.lastMessageText(t); got != `Added "casa".` {
		t.Fatalf("unexpected reply %q", got)
	}

	h.HandleAdd(ctx, b, newTestUpdate("/add casa; other", 100))
	if got := client.lastMessageText(t); !strings.Contains(got, "already") {
		t.Fatalf("expected duplicate reply, got %q", got)
	}

	h.HandleAdd(ctx, b, newTestUpdate("/add", 100))
	if got := client.lastMessageText(t); got != addUsage {
		t.Fatalf("expected usage, got %q", got)
	}

	count, err := store.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("expected one stored word, got %d err=%v", count, err)
	}
}

func TestHandleStats(t *testing.T) {
	h, store := newTestHandler(t)
	ctx := context.Background()
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.HandleStats(ctx, b, newTestUpdate("/stats", 100))
	if got := client.lastMessageText(t); got != "Your vocabulary is empty." {
		t.Fatalf("unexpected empty stats %q", got)
	}

	w := seedWord(t, store, db.WordDraft{Word: "casa"})
	seedWord(t, store, db.WordDraft{Word: "gato"})
	if _, err := store.MarkSeen(ctx, w.ID, true); err != nil {
		t.Fatalf("mark seen: %v", err)
	}
	if _, err := store.MarkSeen(ctx, w.ID, false); err != nil {
		t.Fatalf("mark seen: %v", err)
	}

	h.HandleStats(ctx, b, newTestUpdate("/stats", 100))
	want := "Words: 2\nPracticed: 1\nReviews: 2\nAccuracy: 50%"
	if got := client.lastMessageText(t); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestHandleExport(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	h, store := newTestHandler(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	client := newMockClient()
	b := newTestTelegramBot(t, client)
	h.HandleExport(ctx, b, newTestUpdate("/export", 100))
	if got := client.lastMessageText(t); !strings.Contains(got, "no vocabulary") {
		t.Fatalf("expected empty vocabulary message, got %q", got)
	}

	seedWord(t, store, db.WordDraft{Word: "casa", Meaning: "home"})
	seedWord(t, store, db.WordDraft{Word: "gato", Meaning: "cat"})

	client = newMockClient()
	b = newTestTelegramBot(t, client)
	h.HandleExport(ctx, b, newTestUpdate("/export", 100))

	caption, _ := client.lastMultipartField(t, "caption")
	if caption != "Your vocabulary export (2 words)." {
		t.Fatalf("unexpected caption: %q", caption)
	}
	body, filename := client.lastMultipartField(t, "document")
	if filename != "vocabulary-20240301.csv" {
		t.Fatalf("unexpected filename: %q", filename)
	}
	if !strings.Contains(body, "casa,home") || !strings.Contains(body, "gato,cat") {
		t.Fatalf("unexpected export body: %q", body)
	}
}

func TestHandleCallbackRecordsAnswer(t *testing.T) {
	h, store := newTestHandler(t)
	ctx := context.Background()
	w := seedWord(t, store, db.WordDraft{Word: "casa", Translation: "house"})

	client := newMockClient()
	b := newTestTelegramBot(t, client)
	h.HandleCallback(ctx, b, newTestCallbackUpdate(fmt.Sprintf("w:a:%d:0", w.ID), 100, 100, 55))

	updated, err := store.GetByID(ctx, w.ID)
	if err != nil || updated == nil {
		t.Fatalf("reload: %v", err)
	}
	if updated.TimesSeen != 1 || updated.TimesCorrect != 0 || updated.DifficultyScore != 2 {
		t.Fatalf("expected a recorded miss, got %+v", updated)
	}

	calls := strings.Join(client.calls(), ",")
	if calls != "answerCallbackQuery,editMessageText,sendMessage" {
		t.Fatalf("unexpected call sequence %q", calls)
	}
	edited := client.requestField(t, "editMessageText", "text")
	if !strings.Contains(edited, "Missed it") || !strings.Contains(edited, "house") {
		t.Fatalf("expected revealed card with outcome, got %q", edited)
	}
	if id := client.requestField(t, "editMessageText", "message_id"); id != "55" {
		t.Fatalf("expected message 55 to be edited, got %q", id)
	}
	if next := client.lastMessageText(t); !strings.Contains(next, "*casa*") {
		t.Fatalf("expected the next card, got %q", next)
	}
}

func TestHandleCallbackMissingWord(t *testing.T) {
	h, _ := newTestHandler(t)
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.HandleCallback(context.Background(), b, newTestCallbackUpdate("w:a:404:1", 100, 100, 1))

	if got := client.requestField(t, "answerCallbackQuery", "text"); !strings.Contains(got, "no longer exists") {
		t.Fatalf("expected missing word notice, got %q", got)
	}
	if calls := client.calls(); len(calls) != 1 {
		t.Fatalf("expected only the callback answer, got %v", calls)
	}
}

func TestHandleCallbackRejectsInvalidData(t *testing.T) {
	h, _ := newTestHandler(t)
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.HandleCallback(context.Background(), b, newTestCallbackUpdate("w:a:abc:1", 100, 100, 1))

	if got := client.requestField(t, "answerCallbackQuery", "text"); got != "Unknown command" {
		t.Fatalf("unexpected callback answer %q", got)
	}
}

func TestHandleCallbackRejectsUnknownUser(t *testing.T) {
	h, store := newTestHandler(t, WithAllowedUserID(100))
	ctx := context.Background()
	w := seedWord(t, store, db.WordDraft{Word: "casa"})

	client := newMockClient()
	b := newTestTelegramBot(t, client)
	h.HandleCallback(ctx, b, newTestCallbackUpdate(fmt.Sprintf("w:a:%d:1", w.ID), 300, 300, 1))

	updated, err := store.GetByID(ctx, w.ID)
	if err != nil || updated.TimesSeen != 0 {
		t.Fatalf("expected untouched word, got %+v err=%v", updated, err)
	}
}

func TestHandleCallbackNext(t *testing.T) {
	h, store := newTestHandler(t)
	seedWord(t, store, db.WordDraft{Word: "gato"})
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.HandleCallback(context.Background(), b, newTestCallbackUpdate("w:n", 100, 100, 1))

	if got := client.lastMessageText(t); !strings.Contains(got, "*gato*") {
		t.Fatalf("expected word card, got %q", got)
	}
}

func TestDefaultHandlerSendsHelpForText(t *testing.T) {
	h, _ := newTestHandler(t)
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.DefaultHandler(context.Background(), b, newTestUpdate("hello", 100))

	if got := client.lastMessageText(t); !strings.Contains(got, "Commands:") {
		t.Fatalf("expected commands message, got %q", got)
	}
}

func TestDefaultHandlerImportsCSV(t *testing.T) {
	var requestedURL string
	httpClient := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		requestedURL = req.URL.String()
		body := "word,meaning\ncasa,home\ngato,cat\n,orphan\n"
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}, nil
	})}
	h, store := newTestHandler(t, WithHTTPClient(httpClient))
	ctx := context.Background()
	seedWord(t, store, db.WordDraft{Word: "casa"})

	client := newMockClient()
	client.response = `{"ok":true,"result":{"file_path":"documents/words.csv"}}`
	b := newTestTelegramBot(t, client)

	h.DefaultHandler(ctx, b, newTestDocumentUpdate("words.csv", "file-2", 100))

	if requestedURL != "https://api.telegram.org/file/bottest-token/documents/words.csv" {
		t.Fatalf("unexpected download url %q", requestedURL)
	}
	want := "Imported 1 new words, skipped 1 already known and 1 invalid rows."
	if got := client.lastMessageText(t); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	count, err := store.Count(ctx)
	if err != nil || count != 2 {
		t.Fatalf("expected 2 stored words, got %d err=%v", count, err)
	}
}

func TestDefaultHandlerRejectsUnsupportedUpload(t *testing.T) {
	httpClient := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected download of %s", req.URL)
		return nil, nil
	})}
	h, _ := newTestHandler(t, WithHTTPClient(httpClient))
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.DefaultHandler(context.Background(), b, newTestDocumentUpdate("words.pdf", "file-3", 100))

	if got := client.lastMessageText(t); got != unsupportedFileText {
		t.Fatalf("expected unsupported format reply, got %q", got)
	}
	if calls := client.calls(); len(calls) != 1 {
		t.Fatalf("expected no getFile call, got %v", calls)
	}
}
