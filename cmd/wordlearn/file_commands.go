package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smith3v/word-learner/pkg/db"
	"github.com/smith3v/word-learner/pkg/importexport"
	"github.com/smith3v/word-learner/pkg/learner"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import words from a CSV, TSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			drafts, invalid, err := importexport.ParseVocabularyFile(args[0], data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			return ctx.withService(nil, func(svc *learner.Service, _ *db.Store) error {
				inserted, duplicates, err := svc.Import(cmd.Context(), drafts)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"Imported %d new words, skipped %d already known and %d invalid rows.\n",
					inserted, duplicates, invalid)
				return nil
			})
		},
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Export the vocabulary with statistics to CSV or XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return ctx.withService(nil, func(_ *learner.Service, store *db.Store) error {
				words, err := store.ListAll(cmd.Context())
				if err != nil {
					return err
				}

				var data []byte
				if strings.EqualFold(filepath.Ext(path), ".xlsx") {
					data, err = importexport.BuildExportXLSX(words)
				} else {
					data, err = importexport.BuildExportCSV(words)
				}
				if err != nil {
					return fmt.Errorf("build export: %w", err)
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d words to %s\n", len(words), path)
				return nil
			})
		},
	}
}
