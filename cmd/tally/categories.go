package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/storage"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
		Long: `View and manage the user's categories. Default categories can only be
hidden or unhidden; custom categories are fully editable and deletable.`,
	}

	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	cmd.AddCommand(categoriesHideCmd(true))
	cmd.AddCommand(categoriesHideCmd(false))
	cmd.AddCommand(categoriesDeleteCmd())
	cmd.AddCommand(categoriesSeedCmd())

	return cmd
}

func withCategoryStore(cmd *cobra.Command, fn func(store *storage.SQLiteStorage, userID string) error) error {
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

	return fn(store, userID)
}

func categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCategoryStore(cmd, func(store *storage.SQLiteStorage, userID string) error {
				categories, err := store.GetCategories(cmd.Context(), userID)
				if err != nil {
					return err
				}

				if len(categories) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No categories. Run 'tally categories seed' first.")
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tKEY\tTYPE\tKIND\tHIDDEN")
				for _, c := range categories {
					kind := "custom"
					if c.IsDefault {
						kind = "default"
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%t\n",
						c.ID, c.Name, c.Key(), c.Type, kind, c.IsHidden)
				}
				return w.Flush()
			})
		},
	}
}

func categoriesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCategoryStore(cmd, func(store *storage.SQLiteStorage, userID string) error {
				catType, _ := cmd.Flags().GetString("type")
				icon, _ := cmd.Flags().GetString("icon")
				color, _ := cmd.Flags().GetString("color")

				created, err := store.CreateCategory(cmd.Context(), &model.Category{
					UserID: userID,
					Name:   args[0],
					Type:   model.CategoryType(catType),
					Icon:   icon,
					Color:  color,
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Created category %q (id %d)\n", created.Name, created.ID)
				return nil
			})
		},
	}

	cmd.Flags().String("type", string(model.CategoryTypeExpense), "category type (expense, income)")
	cmd.Flags().String("icon", "", "icon name")
	cmd.Flags().String("color", "", "hex color")
	return cmd
}

func categoriesHideCmd(hide bool) *cobra.Command {
	use, short := "hide <name>", "Hide a category"
	if !hide {
		use, short = "unhide <name>", "Unhide a category"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCategoryStore(cmd, func(store *storage.SQLiteStorage, userID string) error {
				cat, err := store.GetCategoryByName(cmd.Context(), userID, args[0])
				if err != nil {
					return err
				}
				if cat == nil {
					return fmt.Errorf("category %q: %w", args[0], common.ErrNotFound)
				}

				cat.IsHidden = hide
				if err := store.UpdateCategory(cmd.Context(), cat); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Updated category %q\n", cat.Name)
				return nil
			})
		},
	}
}

func categoriesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a custom category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCategoryStore(cmd, func(store *storage.SQLiteStorage, userID string) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid category id %q: %w", args[0], err)
				}

				if err := store.DeleteCategory(cmd.Context(), userID, id); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %d\n", id)
				return nil
			})
		},
	}
}

func categoriesSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the user's copy of the default catalogue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCategoryStore(cmd, func(store *storage.SQLiteStorage, userID string) error {
				if err := store.SeedDefaultCategories(cmd.Context(), userID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d default categories\n", len(model.DefaultCatalogue))
				return nil
			})
		},
	}
}
