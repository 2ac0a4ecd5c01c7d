package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fillertally/internal/store"
	"github.com/roach88/fillertally/internal/tally"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Force bool
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default speakers and categories to the database",
		Long: `Create the database and store the configured default category and
speaker lists.

If the database already holds state, init leaves it alone unless --force
is given.

Examples:
  tally init
  tally init --db meetings.db --force`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite existing state")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := opts.formatter(cmd)
	cfg := opts.Config

	st, err := store.Open(cfg.Database)
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "failed to open database", err))
	}
	defer st.Close()

	exists, err := st.HasState(ctx)
	if err != nil {
		return out.Fail(err)
	}
	if exists && !opts.Force {
		out.VerboseLog("state found in %s", cfg.Database)
		return out.Success(fmt.Sprintf("%s already initialized (use --force to overwrite)", cfg.Database))
	}

	// Run the defaults through an engine so they are repaired the same way
	// a load would repair them.
	eng := tally.New(tally.State{
		Categories: cfg.DefaultCategories,
		Speakers:   cfg.DefaultSpeakers,
	}, tally.WithCatchAll(cfg.CatchAll))
	state := eng.Snapshot().State()
	state.Counts = nil

	if err := st.Save(ctx, state); err != nil {
		return out.Fail(err)
	}

	if opts.Format == "json" {
		return out.Success(state)
	}
	return out.Success(fmt.Sprintf("initialized %s with %d categories and %d speakers",
		cfg.Database, len(state.Categories), len(state.Speakers)))
}
