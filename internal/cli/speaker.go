package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fillertally/internal/tally"
)

// NewSpeakerCommand creates the speaker command group.
func NewSpeakerCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speaker",
		Short: "Manage tracked speakers",
		Long: `Add, remove or list tracked speakers. Changes are saved immediately.

Words after the subcommand are joined, so quotes are optional:
  tally speaker add Mary Ann
  tally speaker rm "Mary Ann"`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "add <name>",
		Short:         "Start tracking a speaker",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return editWorkspace(rootOpts, cmd, func(ws *workspace) (string, error) {
				name, err := ws.engine.AddSpeaker(strings.Join(args, " "))
				return "added speaker " + name, err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "rm <name>",
		Aliases:       []string{"remove"},
		Short:         "Stop tracking a speaker and discard their counts",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := tally.Normalize(strings.Join(args, " "))
			return editWorkspace(rootOpts, cmd, func(ws *workspace) (string, error) {
				return "removed speaker " + name, ws.engine.RemoveSpeaker(name)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List speakers in order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listWorkspace(rootOpts, cmd, func(ws *workspace) []string {
				return slices.Collect(ws.engine.Speakers())
			})
		},
	})

	return cmd
}

// editWorkspace opens the workspace, applies one edit, and saves it.
// A rejected edit saves nothing.
func editWorkspace(opts *RootOptions, cmd *cobra.Command, edit func(*workspace) (string, error)) error {
	ctx := cmd.Context()
	out := opts.formatter(cmd)

	ws, err := openWorkspace(ctx, opts.Config)
	if err != nil {
		return out.Fail(err)
	}
	defer ws.Close()

	msg, err := edit(ws)
	if err != nil {
		return out.Fail(err)
	}
	if err := ws.save(ctx); err != nil {
		return out.Fail(err)
	}

	if opts.Format == "json" {
		return out.Success(ws.engine.Snapshot().State())
	}
	return out.Success(msg)
}

// listWorkspace prints one name per line, or a JSON array.
func listWorkspace(opts *RootOptions, cmd *cobra.Command, list func(*workspace) []string) error {
	out := opts.formatter(cmd)

	ws, err := openWorkspace(cmd.Context(), opts.Config)
	if err != nil {
		return out.Fail(err)
	}
	defer ws.Close()

	names := list(ws)
	if opts.Format == "json" {
		return out.Success(names)
	}
	for _, n := range names {
		fmt.Fprintln(cmd.OutOrStdout(), n)
	}
	return nil
}
