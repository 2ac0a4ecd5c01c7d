package cli

import (
	"github.com/spf13/cobra"
)

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Zero every count",
		Long: `Set every speaker's count in every category to 0. Speakers and
categories are kept. Only stored counts are affected, so this matters when
persist_counts is set.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return editWorkspace(rootOpts, cmd, func(ws *workspace) (string, error) {
				ws.engine.ResetAll()
				return "all counts cleared", nil
			})
		},
	}
}
