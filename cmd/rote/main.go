// Package main is the entry point for the rote CLI, which schedules
// and drills flashcards extracted from plain markdown notes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/phrazzld/rote/internal/config"
	"github.com/phrazzld/rote/internal/domain/srs"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	viper.SetEnvPrefix("ROTE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "rote",
		Short: "Spaced repetition for plain text notes",
		Long: `rote extracts flashcards from markdown notes, schedules them with an
FSRS-style memory model, and drills you on the ones that are due.
Cards stay in your notes; rote only tracks when to show them again.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String(FlagConfig, "", "Config file path (default: .rote/config.yaml)")
	rootCmd.PersistentFlags().String(FlagLogLevel, "", "Log level (debug, info, warn, error)")
	bindFlags(rootCmd.PersistentFlags())

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rote %s\n", version)
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newPracticeCmd())
	rootCmd.AddCommand(newDueCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newMigrateCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and initializes the logger. Every command
// that touches the deck starts here.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	log, err := setupLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// buildScheduler maps the validated config onto the scheduling engine.
func buildScheduler(cfg config.SchedulerConfig) (*srs.Scheduler, error) {
	sc := srs.SchedulerConfig{
		TargetRetention: cfg.TargetRetention,
		MaximumInterval: cfg.MaximumInterval,
		LearningSteps:   cfg.LearningSteps,
		RelearningSteps: cfg.RelearningSteps,
		SkipShortTerm:   cfg.SkipShortTerm,
		DisableFuzz:     cfg.DisableFuzz,
	}
	// Config validation guarantees the slice is all 17 weights when set.
	if len(cfg.Weights) == len(sc.Weights) {
		copy(sc.Weights[:], cfg.Weights)
	}
	return srs.NewScheduler(sc)
}
