package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/phrazzld/rote/internal/domain"
	"github.com/phrazzld/rote/internal/service/review"
	"github.com/phrazzld/rote/internal/source/markdown"
	"github.com/phrazzld/rote/internal/tui"
)

// newPracticeCmd builds the practice command: seed new cards, collect
// everything due, and run a review session. On a terminal the session
// runs in the TUI; otherwise (or with --plain) it runs line by line on
// stdin/stdout.
func newPracticeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "practice [scope]",
		Short: "Review everything that is due",
		Long: `practice collects the cards that are due right now and walks you
through them one at a time. An optional scope argument restricts the
session to sources under that path prefix.

Untracked cards found in your notes are seeded up to the configured
new-card limit before the due set is collected, so fresh material
enters the rotation a little at a time.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			scope := ""
			if len(args) > 0 {
				scope = args[0]
			}

			ctx := cmd.Context()
			stores, err := openStores(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = stores.Close() }()

			src := markdown.New(cfg.Source.Dir, cfg.Source.Extensions, stores.Cards, log)
			candidates, err := src.ListCandidates(ctx, scope)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			candidates, seeded, err := review.SeedNew(ctx, stores.DB, stores.Cards, candidates, cfg.Practice.NewLimit, now)
			if err != nil {
				return fmt.Errorf("failed to seed new cards: %w", err)
			}
			if seeded > 0 {
				log.Info("seeded new cards", slog.Int("count", seeded))
			}

			dueKeys := review.CollectDue(candidates, now, nil)
			entries := review.BuildEntries(candidates, dueKeys)
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing due. Come back later.")
				return nil
			}

			scheduler, err := buildScheduler(cfg.Scheduler)
			if err != nil {
				return err
			}
			ctrl := review.New(scheduler, stores.Cards,
				review.WithLogger(log),
				review.WithReviewLog(stores.Logs))
			if err := ctrl.Start(ctx, entries); err != nil {
				return err
			}

			var tally review.Tally
			if !cfg.Practice.Plain && term.IsTerminal(int(os.Stdout.Fd())) {
				// The TUI owns the terminal, so logging moves to a
				// rotating file for the duration of the session.
				tuiLog, err := SetupTUILogger(cfg)
				if err != nil {
					return err
				}
				defer func() { _ = tuiLog.Close() }()
				slog.SetDefault(tuiLog.Logger)

				tally, err = tui.New(ctrl, tui.WithLogger(tuiLog.Logger)).Run(ctx)
				if err != nil {
					return err
				}
			} else {
				tally, err = runLineSession(ctx, ctrl, cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return err
				}
			}

			printSummary(cmd.OutOrStdout(), tally)
			return nil
		},
	}

	cmd.Flags().Bool(FlagPlain, false, "Force line mode even on a terminal")
	cmd.Flags().Int(FlagNewLimit, 0, "Max untracked items to start tracking this run")
	bindFlags(cmd.Flags())

	return cmd
}

// runLineSession drives a review session over plain reader/writer, one
// prompt per card. Quitting keeps the ratings already given; EOF is
// treated as quit.
func runLineSession(ctx context.Context, ctrl *review.Controller, in io.Reader, out io.Writer) (review.Tally, error) {
	scanner := bufio.NewScanner(in)
	var tally review.Tally

	for {
		entry, ok := ctrl.Current()
		if !ok {
			break
		}

		fmt.Fprintf(out, "\n[%d/%d] %s\n", ctrl.Reviewed()+1, ctrl.Len(), entry.Front)
		fmt.Fprint(out, "(enter to reveal, q to quit) ")
		if !scanner.Scan() || strings.TrimSpace(scanner.Text()) == "q" {
			ctrl.Cancel()
			return tally, scanner.Err()
		}
		ctrl.Reveal()

		fmt.Fprintf(out, "%s\n", entry.Back)
		printRatingPrompt(out, ctrl)

		rating, quit := readRating(scanner, out)
		if quit {
			ctrl.Cancel()
			return tally, scanner.Err()
		}

		result, err := ctrl.Rate(ctx, rating)
		if err != nil {
			return tally, err
		}
		if result.SaveErr != nil {
			fmt.Fprintf(out, "warning: review kept in memory only: %v\n", result.SaveErr)
		}
		tally = ctrl.Stats()
	}

	return tally, nil
}

// printRatingPrompt shows the rating keys with the interval each one
// would schedule.
func printRatingPrompt(out io.Writer, ctrl *review.Controller) {
	previews, ok := ctrl.Preview()
	if !ok {
		return
	}
	now := ctrl.Now()
	parts := make([]string, 0, len(domain.Ratings()))
	for i, rating := range domain.Ratings() {
		card, ok := previews[rating]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d %s (%s)",
			i+1, strings.ToLower(rating.String()), tui.FormatInterval(card.Due.Sub(now))))
	}
	fmt.Fprintf(out, "rate: %s  q quits\n", strings.Join(parts, "  "))
}

// readRating reads lines until it sees a rating key or a quit.
func readRating(scanner *bufio.Scanner, out io.Writer) (domain.Rating, bool) {
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return 0, true
		}
		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			return domain.RatingAgain, false
		case "2":
			return domain.RatingHard, false
		case "3":
			return domain.RatingGood, false
		case "4":
			return domain.RatingEasy, false
		case "q":
			return 0, true
		default:
			fmt.Fprintln(out, "rate 1-4, or q to quit")
		}
	}
}

// printSummary prints the end-of-session tally.
func printSummary(out io.Writer, tally review.Tally) {
	if tally.Total() == 0 {
		fmt.Fprintln(out, "No cards reviewed.")
		return
	}
	fmt.Fprintf(out, "\nReviewed %d: again %d, hard %d, good %d, easy %d\n",
		tally.Total(), tally.Again, tally.Hard, tally.Good, tally.Easy)
}
