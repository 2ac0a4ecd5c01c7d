package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fillertally/internal/session"
	"github.com/roach88/fillertally/internal/tally"
)

// NewCategoryCommand creates the category command group.
func NewCategoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage filler-word categories",
		Long: `Add, remove or list categories. New categories go just before the
catch-all, which can never be removed. Changes are saved immediately.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "add <label>",
		Short:         "Add a category before the catch-all",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return editWorkspace(rootOpts, cmd, func(ws *workspace) (string, error) {
				label, err := ws.engine.AddCategory(strings.Join(args, " "))
				return "added category " + label, err
			})
		},
	})

	var force bool
	rm := &cobra.Command{
		Use:     "rm <label>",
		Aliases: []string{"remove"},
		Short:   "Remove a category and its counts",
		Long: `Remove a category from every speaker.

When counts are persisted and the category has a nonzero total, --force is
required to discard them.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			label := tally.Normalize(strings.Join(args, " "))
			return editWorkspace(rootOpts, cmd, func(ws *workspace) (string, error) {
				if !force && !ws.engine.IsCatchAll(label) {
					if total, err := ws.engine.CategoryTotal(label); err == nil && total > 0 {
						return "", &session.ConfirmError{Category: label, Count: total}
					}
				}
				return "removed category " + label, ws.engine.RemoveCategory(label)
			})
		},
	}
	rm.Flags().BoolVarP(&force, "force", "f", false, "discard nonzero counts")
	cmd.AddCommand(rm)

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List categories in display order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listWorkspace(rootOpts, cmd, func(ws *workspace) []string {
				return slices.Collect(ws.engine.Categories())
			})
		},
	})

	return cmd
}
