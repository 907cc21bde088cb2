package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/learning"
)

func learnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learn <item> <category>",
		Short: "Record a category correction",
		Long: `Learn records one manual category correction. Repeating the same
correction reinforces the learned preference; correcting to a different
category retargets it and resets its confidence.`,
		Args: cobra.ExactArgs(2),
		RunE: runLearn,
	}

	cmd.Flags().String("store", "", "store name the correction applies to (omit for a store-independent rule)")
	cmd.Flags().String("was", "", "category the system had assigned")
	cmd.Flags().String("source", "", "originating transaction reference")

	return cmd
}

func runLearn(cmd *cobra.Command, args []string) error {
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

	storeName, _ := cmd.Flags().GetString("store")
	original, _ := cmd.Flags().GetString("was")
	sourceRef, _ := cmd.Flags().GetString("source")

	engine := learning.NewEngine(store, nil)
	pref, outcome, err := engine.LearnFromCorrection(ctx, userID, learning.Correction{
		ItemName:          args[0],
		StoreName:         storeName,
		CorrectedCategory: args[1],
		OriginalCategory:  original,
		SourceRef:         sourceRef,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %q -> %s (confidence %.1f, corrections %d)\n",
		outcome, pref.ItemPattern, pref.TargetCategory, pref.Confidence, pref.CorrectionCount)
	return nil
}
