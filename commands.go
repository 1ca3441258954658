package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/memorizer/internal/apperr"
	"github.com/example/memorizer/internal/excel"
	"github.com/example/memorizer/internal/study"
	"github.com/example/memorizer/pkg/models"
)

type appKey struct{}

func appFrom(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*app)
}

// newRootCmd builds the command tree. The returned cleanup closes the store
// opened by whichever subcommand ran, including when it failed.
func newRootCmd() (*cobra.Command, func()) {
	var a *app

	root := &cobra.Command{
		Use:          "memorizer",
		Short:        "Memorize English/Korean sentence pairs with adaptive review",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			a, err = newApp(cmd.Context())
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
	}
	root.SetContext(context.Background())

	root.AddCommand(
		newAddCmd(),
		newListCmd(),
		newEditCmd(),
		newDeleteCmd(),
		newImportCmd(),
		newNextCmd(),
		newSubmitCmd(),
		newPracticeCmd(),
		newMemorizeCmd(),
		newHistoryCmd(),
		newStatsCmd(),
		newServeCmd(),
	)

	cleanup := func() {
		if a != nil {
			_ = a.Close()
			a = nil
		}
	}
	return root, cleanup
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidInput("invalid sentence pair id %q", s)
	}
	return id, nil
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <english> <korean>",
		Short: "Add a sentence pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pair, err := appFrom(cmd).pairs.Create(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added #%d\n", pair.ID)
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sentence pairs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pairs, err := appFrom(cmd).pairs.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range pairs {
				fmt.Fprintf(out, "#%d\t%s\t%s\n", p.ID, p.English, p.Korean)
			}
			return nil
		},
	}
}

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <english> <korean>",
		Short: "Change the texts of a sentence pair",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := appFrom(cmd).pairs.Update(cmd.Context(), id, args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated #%d\n", id)
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a sentence pair and its progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := appFrom(cmd).pairs.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted #%d\n", id)
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	cfg := excel.DefaultImportConfig()

	cmd := &cobra.Command{
		Use:   "import <file.xlsx|file.csv|file.yaml>",
		Short: "Import sentence pairs from a spreadsheet or YAML list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			cfg.FilePath = args[0]

			result, err := excel.NewImporter(a.pairs, a.log.Named("import")).Import(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			total, err := a.pairs.Count(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "processed %d: %d created, %d updated, %d unchanged\n",
				result.TotalProcessed, result.Created, result.Updated, result.Skipped)
			for _, e := range result.Errors {
				fmt.Fprintln(out, e)
			}
			fmt.Fprintf(out, "%d sentences in total\n", total)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.SheetName, "sheet", cfg.SheetName, "sheet name (default: first sheet)")
	cmd.Flags().StringVar(&cfg.EnglishColumn, "english-col", cfg.EnglishColumn, "column with English text")
	cmd.Flags().StringVar(&cfg.KoreanColumn, "korean-col", cfg.KoreanColumn, "column with Korean text")
	cmd.Flags().IntVar(&cfg.StartRow, "start-row", cfg.StartRow, "first row to import (1-based)")
	return cmd
}

func newNextCmd() *cobra.Command {
	var preview int

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next sentence to study",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			out := cmd.OutOrStdout()

			if preview > 0 {
				ranked, err := a.study.Preview(cmd.Context(), preview)
				if err != nil {
					return err
				}
				for _, c := range ranked {
					fmt.Fprintf(out, "#%d\t%s\t%s\n", c.Pair.ID, c.Pair.Korean, describeRecord(c.Record))
				}
				return nil
			}

			pair, ok, err := a.study.Next(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "nothing to study, add some sentences first")
				return nil
			}
			fmt.Fprintf(out, "#%d\t%s\n", pair.ID, pair.Korean)
			return nil
		},
	}

	cmd.Flags().IntVar(&preview, "preview", 0, "list the first N pairs in study order instead")
	return cmd
}

func describeRecord(r *models.MemorizationRecord) string {
	if r == nil {
		return "new"
	}
	if r.IsMemorized {
		return "memorized"
	}
	return fmt.Sprintf("difficulty %.2f, %d/%d correct (%.0f%%)",
		r.DifficultyScore, r.CorrectAttempts, r.Attempts, r.Accuracy()*100)
}

func newSubmitCmd() *cobra.Command {
	var responseTimeMs int64

	cmd := &cobra.Command{
		Use:   "submit <id> <answer>",
		Short: "Submit an English answer for a sentence pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			result, err := appFrom(cmd).study.Submit(cmd.Context(), study.Submission{
				PairID:         id,
				Answer:         args[1],
				ResponseTimeMs: responseTimeMs,
			})
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&responseTimeMs, "time-ms", 0, "time taken to answer in milliseconds")
	_ = cmd.MarkFlagRequired("time-ms")
	return cmd
}

func printResult(out io.Writer, result *study.Result) {
	if result.IsCorrect {
		fmt.Fprintln(out, "correct!")
	} else {
		fmt.Fprintf(out, "incorrect, expected: %s\n", result.Expected)
	}
	record := result.Record
	fmt.Fprintf(out, "accuracy %d/%d (%.0f%%), difficulty %.2f\n",
		record.CorrectAttempts, record.Attempts, record.Accuracy()*100, record.DifficultyScore)
}

func newPracticeCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Study interactively: type the English for each Korean sentence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			in := bufio.NewScanner(cmd.InOrStdin())

			for i := 0; count <= 0 || i < count; i++ {
				pair, ok, err := a.study.Next(ctx)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "nothing to study, add some sentences first")
					return nil
				}

				fmt.Fprintf(out, "\n%s\n> ", pair.Korean)
				start := time.Now()
				if !in.Scan() {
					return in.Err()
				}
				answer := in.Text()

				switch strings.TrimSpace(answer) {
				case ":q":
					return nil
				case ":m":
					if _, err := a.study.MarkMemorized(ctx, pair.ID); err != nil {
						return err
					}
					fmt.Fprintln(out, "marked as memorized")
					continue
				}

				result, err := a.study.Submit(ctx, study.Submission{
					PairID:         pair.ID,
					Answer:         answer,
					ResponseTimeMs: max(time.Since(start).Milliseconds(), 1),
				})
				if err != nil {
					return err
				}
				printResult(out, result)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of sentences (0 means until :q)")
	return cmd
}

func newMemorizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "memorize <id>",
		Short: "Mark a sentence pair as memorized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := appFrom(cmd).study.MarkMemorized(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "memorized #%d\n", id)
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <id>",
		Short: "Show recent attempts on a sentence pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a := appFrom(cmd)
			if _, err := a.pairs.GetByID(cmd.Context(), id); err != nil {
				return err
			}
			attempts, err := a.records.History(cmd.Context(), id, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(attempts) == 0 {
				fmt.Fprintln(out, "no attempts yet")
				return nil
			}
			for _, at := range attempts {
				mark := "✗"
				if at.IsCorrect {
					mark = "✓"
				}
				fmt.Fprintf(out, "%s\t%s\t%dms\n", at.AttemptedAt.Format(time.RFC3339), mark, at.ResponseTimeMs)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of attempts to show (0 for all)")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show study statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := appFrom(cmd).study.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			fmt.Fprintf(out, "Sentences:      %d\n", stats.TotalSentences)
			fmt.Fprintf(out, "Memorized:      %d\n", stats.MemorizedSentences)
			fmt.Fprintf(out, "Accuracy:       %d%%\n", stats.AccuracyPercent())
			fmt.Fprintf(out, "Today:          %d attempts\n", stats.AttemptsToday)
			fmt.Fprintf(out, "Streak:         %d days\n", stats.StreakDays)
			fmt.Fprintf(out, "Study time:     %s\n", time.Duration(stats.TotalStudySeconds)*time.Second)
			if stats.LastStudyDate != nil {
				fmt.Fprintf(out, "Last studied:   %s\n", stats.LastStudyDate.Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
