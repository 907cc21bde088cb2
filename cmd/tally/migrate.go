package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			fmt.Fprintf(cmd.OutOrStdout(), "Database is at schema version %d\n", storage.ExpectedSchemaVersion)
			return nil
		},
	}
}
