package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/roach88/fillertally/internal/session"
)

// SessionOptions holds flags for the session command.
type SessionOptions struct {
	*RootOptions

	// IDGenerator allows overriding the session id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator session.IDGenerator
}

// NewSessionCommand creates the session command.
func NewSessionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Tally interactively during a meeting",
		Long: `Start an interactive tally session on stdin/stdout.

Every change is saved as soon as it is made and recorded in the journal.
Type help for the command list. Ctrl-D or quit ends the session.

Example session:
  > inc Steve Ah
  Steve / Ah = 1 (total 1)
  > other Dave
  Other word for Dave (empty line cancels):
  word> Basically
  Dave / Basically = 1 (total 1)
  > summary`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(opts, cmd)
		},
	}

	return cmd
}

func runSession(opts *SessionOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	ws, err := openWorkspace(ctx, opts.Config)
	if err != nil {
		return out.Fail(err)
	}
	defer ws.Close()

	lastSeq, err := ws.store.LastJournalSeq(ctx)
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "failed to read journal", err))
	}

	sessOpts := []session.Option{
		session.WithClock(session.NewClockAt(lastSeq)),
		session.WithPersistCounts(opts.Config.PersistCounts),
		session.WithLogger(slog.Default()),
		session.WithPrompts(isTerminal(cmd.InOrStdin())),
	}
	if opts.IDGenerator != nil {
		sessOpts = append(sessOpts, session.WithIDGenerator(opts.IDGenerator))
	}
	sess := session.New(ws.engine, ws.store, sessOpts...)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, ending session", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	runErr := sess.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())

	// Close with a fresh context: the run context may already be cancelled.
	if err := sess.Close(context.Background()); err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "failed to save on exit", err))
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return out.Fail(WrapExitError(ExitCommandError, "session aborted", runErr))
	}

	fmt.Fprintf(out.GetErrWriter(), "session %s saved to %s\n", sess.ID(), opts.Config.Database)
	return nil
}

// isTerminal reports whether r is an interactive terminal. Piped input gets
// no prompts so the output stays a clean list of replies.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
