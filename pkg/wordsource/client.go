// Package wordsource fetches candidate words from a remote random-word API.
package wordsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smith3v/word-learner/pkg/config"
	"github.com/smith3v/word-learner/pkg/db"
)

const maxResponseSize = 64 * 1024

var ErrNoWord = errors.New("word source returned no word")

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client asks the remote API for one word. The API only supplies the word
// text; descriptive fields are filled with configured placeholders.
type Client struct {
	http         HTTPClient
	endpoint     string
	language     string
	placeholders db.WordDraft
}

func New(cfg config.WordSourceConfig, httpClient HTTPClient) *Client {
	if httpClient == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		http:     httpClient,
		endpoint: cfg.URL,
		language: cfg.Language,
		placeholders: db.WordDraft{
			Meaning:     cfg.MeaningPlaceholder,
			Etymology:   cfg.EtymologyPlaceholder,
			Translation: cfg.TranslationPlaceholder,
		},
	}
}

func (c *Client) requestURL() (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse word source url: %w", err)
	}
	if c.language != "" {
		q := u.Query()
		q.Set("lang", c.language)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Fetch returns a draft for the first word of the API response.
func (c *Client) Fetch(ctx context.Context) (db.WordDraft, error) {
	target, err := c.requestURL()
	if err != nil {
		return db.WordDraft{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return db.WordDraft{}, fmt.Errorf("build word request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return db.WordDraft{}, fmt.Errorf("fetch word: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return db.WordDraft{}, fmt.Errorf("fetch word: unexpected status %d", resp.StatusCode)
	}

	var words []string
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&words); err != nil {
		return db.WordDraft{}, fmt.Errorf("decode word response: %w", err)
	}
	if len(words) == 0 || strings.TrimSpace(words[0]) == "" {
		return db.WordDraft{}, ErrNoWord
	}

	draft := c.placeholders
	draft.Word = strings.TrimSpace(words[0])
	return draft, nil
}
