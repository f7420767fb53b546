package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/phrazzld/rote/internal/domain"
)

// newStatsCmd builds the stats command: review history over a window
// plus the current deck breakdown.
func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show review history and deck breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			stores, err := openStores(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = stores.Close() }()

			now := time.Now().UTC()
			since := viper.GetDuration(FlagSince)
			cutoff := now.Add(-since)

			logs, err := stores.Logs.ListSince(ctx, cutoff)
			if err != nil {
				return err
			}

			var again, hard, good, easy int
			touched := make(map[string]struct{}, len(logs))
			for _, l := range logs {
				switch l.Rating {
				case domain.RatingAgain:
					again++
				case domain.RatingHard:
					hard++
				case domain.RatingGood:
					good++
				case domain.RatingEasy:
					easy++
				}
				touched[l.Key] = struct{}{}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Since %s:\n", cutoff.Format("2006-01-02"))
			fmt.Fprintf(out, "  reviews: %d (again %d, hard %d, good %d, easy %d)\n",
				len(logs), again, hard, good, easy)
			if len(logs) > 0 {
				correct := float64(len(logs)-again) / float64(len(logs)) * 100
				fmt.Fprintf(out, "  correct: %.0f%%\n", correct)
			}
			fmt.Fprintf(out, "  cards touched: %d\n", len(touched))

			keys, err := stores.Cards.Keys(ctx)
			if err != nil {
				return err
			}
			cards, err := stores.Cards.LoadMany(ctx, keys)
			if err != nil {
				return err
			}

			var due int
			byState := make(map[domain.State]int, 4)
			for _, card := range cards {
				byState[card.State]++
				if card.IsDue(now) {
					due++
				}
			}
			fmt.Fprintf(out, "\nDeck: %d cards (new %d, learning %d, review %d, relearning %d)\n",
				len(cards), byState[domain.StateNew], byState[domain.StateLearning],
				byState[domain.StateReview], byState[domain.StateRelearning])
			fmt.Fprintf(out, "Due now: %d\n", due)
			return nil
		},
	}

	cmd.Flags().Duration(FlagSince, 30*24*time.Hour, "History window for review counts")
	bindFlags(cmd.Flags())

	return cmd
}
