package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/smith3v/word-learner/pkg/connectivity"
	"github.com/smith3v/word-learner/pkg/db"
	"github.com/smith3v/word-learner/pkg/learner"
)

func newNextCommand(ctx *commandContext) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the word that needs practice most",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var signal connectivity.Signal = connectivity.Static(false)
			if !offline {
				signal = connectivity.Static(checkOnline(cmd.Context(), ctx))
			}
			return ctx.withService(signal, func(svc *learner.Service, _ *db.Store) error {
				word, err := svc.Next(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if word == nil {
					fmt.Fprintln(out, "No word available")
					return nil
				}
				printWord(out, *word)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Do not contact the remote word source")
	return cmd
}

func checkOnline(parent context.Context, ctx *commandContext) bool {
	monitor := connectivity.NewMonitor(ctx.configValue().Connectivity)
	return monitor.Check(parent)
}

func printWord(out io.Writer, w db.Word) {
	fmt.Fprintf(out, "#%d %s\n", w.ID, w.Word)
	if w.Translation != "" {
		fmt.Fprintf(out, "  translation: %s\n", w.Translation)
	}
	if w.Meaning != "" {
		fmt.Fprintf(out, "  meaning:     %s\n", w.Meaning)
	}
	if w.Etymology != "" {
		fmt.Fprintf(out, "  etymology:   %s\n", w.Etymology)
	}
	fmt.Fprintf(out, "  seen %d, correct %d, difficulty %d\n", w.TimesSeen, w.TimesCorrect, w.DifficultyScore)
}

func newSeenCommand(ctx *commandContext) *cobra.Command {
	var correct bool
	cmd := &cobra.Command{
		Use:   "seen <id>",
		Short: "Record that a word was practiced",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, strconv.IntSize)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid word id %q", args[0])
			}
			return ctx.withService(nil, func(svc *learner.Service, _ *db.Store) error {
				found, err := svc.Answer(cmd.Context(), uint(id), correct)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("word %d not found", id)
				}
				word, err := svc.Word(cmd.Context(), uint(id))
				if err != nil {
					return err
				}
				if word != nil {
					printWord(cmd.OutOrStdout(), *word)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&correct, "correct", false, "The word was answered correctly")
	return cmd
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var draft db.WordDraft
	cmd := &cobra.Command{
		Use:   "add <word>",
		Short: "Add a word to the vocabulary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.Word = args[0]
			return ctx.withService(nil, func(svc *learner.Service, _ *db.Store) error {
				created, err := svc.Add(cmd.Context(), draft)
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintln(cmd.OutOrStdout(), "added")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "already exists")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&draft.Meaning, "meaning", "", "Definition of the word")
	cmd.Flags().StringVar(&draft.Etymology, "etymology", "", "Origin of the word")
	cmd.Flags().StringVar(&draft.Translation, "translation", "", "Translation of the word")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the vocabulary in practice order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(nil, func(svc *learner.Service, _ *db.Store) error {
				words, err := svc.Words(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(words) == 0 {
					fmt.Fprintln(out, "No words stored")
					return nil
				}
				fmt.Fprintln(out, renderWordTable(words, isTerminal(out)))
				return nil
			})
		},
	}
}
