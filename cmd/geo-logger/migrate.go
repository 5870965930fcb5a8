package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BreadYang/scrape-social-media-in-area/config"
	"github.com/BreadYang/scrape-social-media-in-area/storage"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or drop the configured store.table",
		Long: `migrate applies the embedded Postgres migrations (PostGIS, hstore and the
store.table table with its indexes). Each table keeps its own version table.
With store.driver=sqlite it creates the table in the SQLite file instead;
direction down is Postgres only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if cfg.Store.Driver == config.DriverSQLite {
				if direction != "up" {
					return fmt.Errorf("migrate: direction %q is not supported for sqlite", direction)
				}
				store, err := storage.OpenSQLite(cmd.Context(), cfg.Store.SQLitePath, cfg.Store.Table)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "sqlite table %s ready in %s\n", cfg.Store.Table, cfg.Store.SQLitePath)
				return store.Close()
			}

			err = storage.Migrate(cfg.Postgres.DSN(), cfg.Store.Table, direction)
			if errors.Is(err, storage.ErrNoChange) {
				fmt.Fprintln(out, "no change")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "migrated %s %s\n", cfg.Store.Table, direction)
			return nil
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "up", "up or down")
	return cmd
}
