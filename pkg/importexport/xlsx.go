package importexport

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/smith3v/word-learner/pkg/db"
	"github.com/xuri/excelize/v2"
)

// ParseVocabularyXLSX reads the first worksheet with the same row rules as
// ParseVocabularyCSV.
func ParseVocabularyXLSX(data []byte) ([]db.WordDraft, int, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, errors.New("workbook has no sheets")
	}
	records, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, 0, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	var rows rowCollector
	for _, record := range records {
		rows.add(record)
	}
	return rows.drafts, rows.skipped, nil
}

// BuildExportXLSX writes the same columns as BuildExportCSV into a workbook.
func BuildExportXLSX(words []db.Word) ([]byte, error) {
	book := excelize.NewFile()
	defer book.Close()

	sheet := book.GetSheetName(0)
	if err := setRow(book, sheet, 1, exportHeader); err != nil {
		return nil, err
	}
	for i, w := range words {
		if err := setRow(book, sheet, i+2, exportRecord(w)); err != nil {
			return nil, err
		}
	}

	buf, err := book.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(book *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return book.SetSheetRow(sheet, cell, &cells)
}
