package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/phrazzld/rote/internal/service/review"
	"github.com/phrazzld/rote/internal/source/markdown"
	"github.com/phrazzld/rote/internal/tui"
)

// newDueCmd builds the due command: list what practice would queue,
// without touching any card.
func newDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "due [scope]",
		Short: "List cards due for review",
		Long: `due lists the cards a practice session would queue right now, in the
order they would appear, without seeding or reviewing anything.`,
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
			dueKeys := review.CollectDue(candidates, now, nil)

			byKey := make(map[string]int, len(candidates))
			tracked := 0
			for i, cand := range candidates {
				byKey[cand.Key] = i
				if cand.Card != nil {
					tracked++
				}
			}

			out := cmd.OutOrStdout()
			for _, key := range dueKeys {
				cand := candidates[byKey[key]]
				overdue := now.Sub(cand.Card.Due)
				label := "now"
				if overdue >= time.Minute {
					label = tui.FormatInterval(overdue) + " ago"
				}
				fmt.Fprintf(out, "%s  (due %s)\n", key, label)
			}
			if len(dueKeys) > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%d due, %d tracked, %d untracked\n",
				len(dueKeys), tracked, len(candidates)-tracked)
			return nil
		},
	}
}
