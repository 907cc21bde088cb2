package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Manage learned category preferences",
		Long:  `View and delete the per-user preferences the learning engine has built up.`,
	}

	cmd.AddCommand(prefsListCmd())
	cmd.AddCommand(prefsDeleteCmd())

	return cmd
}

func prefsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List learned preferences by confidence",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			userID, err := requireUser()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			limit, _ := cmd.Flags().GetInt("limit")
			prefs, err := store.TopPreferences(ctx, userID, limit)
			if err != nil {
				return err
			}

			if len(prefs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No learned preferences yet.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tITEM\tSTORE\tCATEGORY\tCONFIDENCE\tCORRECTIONS\tLAST USED")
			for _, p := range prefs {
				storePattern := p.StorePattern
				if storePattern == "" {
					storePattern = "-"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.1f\t%d\t%s\n",
					p.ID, p.ItemPattern, storePattern, p.TargetCategory,
					p.Confidence, p.CorrectionCount, p.LastUsed.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int("limit", 50, "maximum number of preferences to show")
	return cmd
}

func prefsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a learned preference",
		Long:  `Delete removes one preference permanently. Learning never deletes preferences on its own.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			userID, err := requireUser()
			if err != nil {
				return err
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid preference id %q: %w", args[0], err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeletePreference(ctx, userID, id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted preference %d\n", id)
			return nil
		},
	}
}
