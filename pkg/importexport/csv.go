// Package importexport reads vocabulary files into word drafts and writes
// the stored vocabulary back out.
package importexport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/smith3v/word-learner/pkg/db"
)

var ErrUnsupportedFormat = errors.New("unsupported vocabulary file format")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const maxDelimiterSampleRecords = 20

var exportHeader = []string{
	"word", "meaning", "etymology", "translation",
	"times_seen", "times_correct", "difficulty_score", "last_seen",
}

// IsSupportedFile reports whether ParseVocabularyFile accepts the name.
func IsSupportedFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv", ".txt", ".xlsx":
		return true
	}
	return false
}

// ParseVocabularyFile picks a parser from the file extension.
func ParseVocabularyFile(name string, data []byte) ([]db.WordDraft, int, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv", ".txt":
		return ParseVocabularyCSV(data)
	case ".xlsx":
		return ParseVocabularyXLSX(data)
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// ParseVocabularyCSV reads rows of word, meaning, etymology, translation.
// The delimiter is detected, a leading header row is ignored and rows
// without a word are counted as skipped.
func ParseVocabularyCSV(data []byte) ([]db.WordDraft, int, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	delimiter := detectCSVDelimiter(data)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows rowCollector
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, rows.skipped, err
		}
		rows.add(record)
	}
	return rows.drafts, rows.skipped, nil
}

type rowCollector struct {
	drafts        []db.WordDraft
	skipped       int
	checkedHeader bool
}

func (c *rowCollector) add(record []string) {
	if isEmptyRecord(record) {
		c.skipped++
		return
	}
	if !c.checkedHeader {
		c.checkedHeader = true
		if isHeaderRecord(record) {
			return
		}
	}
	draft := db.WordDraft{
		Word:        field(record, 0),
		Meaning:     field(record, 1),
		Etymology:   field(record, 2),
		Translation: field(record, 3),
	}
	if draft.Word == "" {
		c.skipped++
		return
	}
	c.drafts = append(c.drafts, draft)
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func detectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', '\t', ';'}
	bestDelimiter := candidates[0]
	bestScore := -1

	for _, delimiter := range candidates {
		score, err := scoreDelimiter(data, delimiter, maxDelimiterSampleRecords)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			bestDelimiter = delimiter
		}
	}

	if bestScore <= 0 {
		return ','
	}
	return bestDelimiter
}

// scoreDelimiter counts how many sampled records agree on the most common
// multi-column width.
func scoreDelimiter(data []byte, delimiter rune, maxRecords int) (int, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	counts := make(map[int]int)
	recordsSeen := 0

	for recordsSeen < maxRecords {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		if isEmptyRecord(record) {
			continue
		}
		recordsSeen++

		if len(record) < 2 {
			continue
		}
		counts[len(record)]++
	}

	best := 0
	for _, score := range counts {
		if score > best {
			best = score
		}
	}
	return best, nil
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func isHeaderRecord(record []string) bool {
	switch strings.ToLower(field(record, 0)) {
	case "word", "palavra":
	default:
		return false
	}
	if len(record) < 2 {
		return true
	}
	switch strings.ToLower(field(record, 1)) {
	case "meaning", "significado", "definition", "":
		return true
	}
	return false
}

// BuildExportCSV writes the vocabulary with its review statistics as a
// spreadsheet-friendly CSV: UTF-8 BOM, CRLF line endings, header row.
func BuildExportCSV(words []db.Word) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.Write(utf8BOM); err != nil {
		return nil, err
	}

	writer := csv.NewWriter(&buf)
	writer.UseCRLF = true

	if err := writer.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, w := range words {
		if err := writer.Write(exportRecord(w)); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportRecord(w db.Word) []string {
	lastSeen := ""
	if w.LastSeen != nil {
		lastSeen = w.LastSeen.UTC().Format(time.RFC3339)
	}
	return []string{
		w.Word,
		w.Meaning,
		w.Etymology,
		w.Translation,
		strconv.Itoa(w.TimesSeen),
		strconv.Itoa(w.TimesCorrect),
		strconv.Itoa(w.DifficultyScore),
		lastSeen,
	}
}

func ExportFilename(now time.Time) string {
	return fmt.Sprintf("vocabulary-%s.csv", now.Format("20060102"))
}
