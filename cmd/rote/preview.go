package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/phrazzld/rote/internal/domain"
	"github.com/phrazzld/rote/internal/store"
	"github.com/phrazzld/rote/internal/tui"
)

// newPreviewCmd builds the preview command: show what each rating
// would do to one card, without rating it.
func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <key>",
		Short: "Show what each rating would do to a card",
		Long: `preview projects all four rating outcomes for a single card. The
projection is exactly what a practice session would apply, so the
intervals shown here are the intervals you would get.`,
		Args: cobra.ExactArgs(1),
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

			key := args[0]
			card, err := stores.Cards.Load(ctx, key)
			if err != nil {
				if store.IsNotFoundError(err) {
					return fmt.Errorf("no card tracked under %q; practice seeds new cards", key)
				}
				return err
			}

			scheduler, err := buildScheduler(cfg.Scheduler)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			previews := scheduler.Preview(*card, now)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", key)
			fmt.Fprintf(out, "  state %s, reps %d, lapses %d, %s\n",
				strings.ToLower(card.State.String()), card.Reps, card.Lapses, dueLabel(*card, now))
			fmt.Fprintf(out, "  retrievability %.0f%%\n\n", scheduler.Retrievability(*card, now)*100)
			for _, rating := range domain.Ratings() {
				next, ok := previews[rating]
				if !ok {
					continue
				}
				fmt.Fprintf(out, "  %-5s -> %-10s due in %s\n",
					strings.ToLower(rating.String()),
					strings.ToLower(next.State.String()),
					tui.FormatInterval(next.Due.Sub(now)))
			}
			return nil
		},
	}
}

// dueLabel describes a card's due time relative to now.
func dueLabel(card domain.Card, now time.Time) string {
	if card.IsDue(now) {
		if d := now.Sub(card.Due); d >= time.Minute {
			return "due " + tui.FormatInterval(d) + " ago"
		}
		return "due now"
	}
	return "due in " + tui.FormatInterval(card.Due.Sub(now))
}
