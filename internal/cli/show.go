package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fillertally/internal/summary"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the tally board",
		Long: `Print every speaker's counts as a table, with per-category totals.

With --format json the full snapshot is printed, including derived totals.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			ws, err := openWorkspace(cmd.Context(), rootOpts.Config)
			if err != nil {
				return out.Fail(err)
			}
			defer ws.Close()

			snap := ws.engine.Snapshot()
			if rootOpts.Format == "json" {
				return out.Success(snap)
			}
			if err := summary.Board(cmd.OutOrStdout(), snap); err != nil {
				return out.Fail(err)
			}
			return nil
		},
	}
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the shareable summary",
		Long: `Print each speaker's total with their nonzero categories, followed by the
overall total for every category.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			ws, err := openWorkspace(cmd.Context(), rootOpts.Config)
			if err != nil {
				return out.Fail(err)
			}
			defer ws.Close()

			text := summary.Text(ws.engine.Snapshot())
			if rootOpts.Format == "json" {
				return out.Success(map[string]string{"summary": text})
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
