package main

import (
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/smith3v/word-learner/pkg/db"
	"github.com/smith3v/word-learner/pkg/training"
)

var wordTableHeader = table.Row{"ID", "Word", "Translation", "Seen", "Correct", "Difficulty", "Priority"}

// renderWordTable draws a rounded table for terminals and CSV otherwise.
func renderWordTable(words []db.Word, terminal bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(wordTableHeader)
	for _, w := range words {
		tw.AppendRow(table.Row{
			w.ID,
			w.Word,
			w.Translation,
			w.TimesSeen,
			w.TimesCorrect,
			w.DifficultyScore,
			strconv.FormatFloat(training.Priority(w), 'f', 1, 64),
		})
	}

	configs := make([]table.ColumnConfig, 0, len(wordTableHeader))
	for i := range wordTableHeader {
		align := text.AlignLeft
		if i == 0 || i >= 3 {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	if !terminal {
		return tw.RenderCSV()
	}
	return tw.Render()
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
