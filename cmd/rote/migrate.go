package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/phrazzld/rote/internal/platform/postgres"
	"github.com/phrazzld/rote/internal/platform/sqlite"
	"github.com/phrazzld/rote/internal/redact"
)

// newMigrateCmd builds the migrate command. The sqlite backend
// migrates on open, so for it this amounts to opening the database and
// reporting the schema version; postgres runs the embedded goose
// migrations explicitly.
func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			switch cfg.Storage.Backend {
			case "postgres":
				db, err := postgres.Open(ctx, cfg.Storage.URL, log)
				if err != nil {
					return fmt.Errorf("failed to open postgres store (%s): %s",
						redact.URL(cfg.Storage.URL), redact.Error(err))
				}
				defer func() { _ = db.Close() }()

				if viper.GetBool(FlagStatus) {
					return postgres.MigrationStatus(ctx, db)
				}
				if err := postgres.Migrate(ctx, db, log); err != nil {
					return err
				}
				fmt.Fprintln(out, "Schema up to date.")
			default:
				db, err := sqlite.Open(cfg.Storage.Path, log)
				if err != nil {
					return err
				}
				defer func() { _ = db.Close() }()

				version, err := sqlite.GetUserVersion(db)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Schema up to date (version %d).\n", version)
			}
			return nil
		},
	}

	cmd.Flags().Bool(FlagStatus, false, "Report migration status without applying anything")
	bindFlags(cmd.Flags())

	return cmd
}
