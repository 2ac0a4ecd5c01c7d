// Package session drives a tally engine from line-oriented user input.
//
// A Session is the presentation layer: it parses commands, calls the engine,
// renders snapshots, and after every successful mutation writes the engine
// state through to the store. It never computes totals itself.
//
// Every mutating command, accepted or rejected, is appended to the store's
// journal with a logical seq and the session id.
package session

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/fillertally/internal/store"
	"github.com/roach88/fillertally/internal/summary"
	"github.com/roach88/fillertally/internal/tally"
)

// Journal op names.
const (
	OpIncrement       = "increment"
	OpDecrement       = "decrement"
	OpResolveCatchAll = "resolve_catch_all"
	OpAddSpeaker      = "add_speaker"
	OpRemoveSpeaker   = "remove_speaker"
	OpAddCategory     = "add_category"
	OpRemoveCategory  = "remove_category"
	OpReset           = "reset"
)

// ErrorKindConfirmRequired is journaled when a category with counts is
// removed without -f.
const ErrorKindConfirmRequired = "ConfirmRequired"

// ConfirmError is returned when removing a category would discard counts and
// the caller did not force it.
type ConfirmError struct {
	Category string
	Count    int
}

func (e *ConfirmError) Error() string {
	return fmt.Sprintf("category %q has %d count(s); use category rm -f %q to discard them", e.Category, e.Count, e.Category)
}

// Persister is the part of the store a session writes to.
type Persister interface {
	Save(ctx context.Context, state tally.State) error
	AppendJournal(ctx context.Context, e store.JournalEntry) error
}

// Session is one interactive run over an engine.
type Session struct {
	id            string
	engine        *tally.Engine
	prompt        *tally.Prompt
	store         Persister
	clock         Clock
	persistCounts bool
	prompts       bool
	logger        *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the journal clock. Default: NewClockAt(0).
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithIDGenerator sets the session id source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Session) { s.id = g.Generate() }
}

// WithPersistCounts makes write-through include per-speaker counts.
func WithPersistCounts(on bool) Option {
	return func(s *Session) { s.persistCounts = on }
}

// WithPrompts controls the banner and "> " prompts Run prints.
// Default: on. Hosts reading piped input turn them off.
func WithPrompts(on bool) Option {
	return func(s *Session) { s.prompts = on }
}

// WithLogger sets the session logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates a session over an engine and a store.
func New(e *tally.Engine, st Persister, opts ...Option) *Session {
	s := &Session{
		engine: e,
		prompt: tally.NewPrompt(e),
		store:   st,
		prompts: true,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = UUIDv7Generator{}.Generate()
	}
	if s.clock == nil {
		s.clock = NewClockAt(0)
	}
	s.logger = s.logger.With("session", s.id)
	return s
}

// ID returns the session id used in journal entries.
func (s *Session) ID() string {
	return s.id
}

// Awaiting reports whether the next line is read as a custom label.
func (s *Session) Awaiting() bool {
	return s.prompt.State() == tally.PromptStateAwaitingLabel
}

// Reply is the outcome of one input line.
type Reply struct {
	Output string
	Quit   bool
}

// Execute handles one input line.
//
// User-level failures (tally validation errors, usage errors, confirmation
// required) are returned as errors and leave state unchanged; the caller
// reports them and keeps going. Store failures satisfy IsStoreError and
// should end the session.
func (s *Session) Execute(ctx context.Context, line string) (Reply, error) {
	if s.Awaiting() {
		return s.submitLabel(ctx, line)
	}

	cmd, err := Parse(line)
	if err != nil || cmd == nil {
		return Reply{}, err
	}

	switch cmd.Name {
	case "inc":
		n, err := s.engine.Increment(cmd.Args[0], cmd.Args[1])
		if err := s.record(ctx, OpIncrement, cmd.Args[0], cmd.Args[1], n, err); err != nil {
			return Reply{}, err
		}
		return s.countReply(cmd.Args[0], cmd.Args[1], n), nil

	case "dec":
		n, err := s.engine.Decrement(cmd.Args[0], cmd.Args[1])
		if err := s.record(ctx, OpDecrement, cmd.Args[0], cmd.Args[1], n, err); err != nil {
			return Reply{}, err
		}
		return s.countReply(cmd.Args[0], cmd.Args[1], n), nil

	case "other":
		if err := s.prompt.Begin(cmd.Args[0]); err != nil {
			return Reply{}, s.record(ctx, OpResolveCatchAll, cmd.Args[0], "", 0, err)
		}
		return Reply{Output: fmt.Sprintf("%s word for %s (empty line cancels):", s.engine.CatchAll(), s.prompt.Speaker())}, nil

	case "speaker add":
		name, err := s.engine.AddSpeaker(cmd.Args[0])
		if err := s.record(ctx, OpAddSpeaker, cmd.Args[0], "", 0, err); err != nil {
			return Reply{}, err
		}
		return Reply{Output: fmt.Sprintf("added speaker %s", name)}, nil

	case "speaker rm":
		err := s.engine.RemoveSpeaker(cmd.Args[0])
		if err := s.record(ctx, OpRemoveSpeaker, cmd.Args[0], "", 0, err); err != nil {
			return Reply{}, err
		}
		return Reply{Output: fmt.Sprintf("removed speaker %s", tally.Normalize(cmd.Args[0]))}, nil

	case "category add":
		label, err := s.engine.AddCategory(cmd.Args[0])
		if err := s.record(ctx, OpAddCategory, "", cmd.Args[0], 0, err); err != nil {
			return Reply{}, err
		}
		return Reply{Output: fmt.Sprintf("added category %s", label)}, nil

	case "category rm":
		return s.removeCategory(ctx, cmd.Args[0], cmd.Force)

	case "reset":
		s.engine.ResetAll()
		if err := s.record(ctx, OpReset, "", "", 0, nil); err != nil {
			return Reply{}, err
		}
		return Reply{Output: "all counts cleared"}, nil

	case "show":
		var buf bytes.Buffer
		if err := summary.Board(&buf, s.engine.Snapshot()); err != nil {
			return Reply{}, err
		}
		return Reply{Output: buf.String()}, nil

	case "summary":
		return Reply{Output: summary.Text(s.engine.Snapshot())}, nil

	case "help":
		return Reply{Output: Help()}, nil

	case "quit":
		return Reply{Quit: true}, nil
	}
	return Reply{}, fmt.Errorf("unhandled command %q", cmd.Name)
}

func (s *Session) submitLabel(ctx context.Context, line string) (Reply, error) {
	speaker := s.prompt.Speaker()
	category, n, err := s.prompt.Submit(line)
	if err == nil && category == "" {
		return Reply{Output: "cancelled"}, nil
	}
	if err := s.record(ctx, OpResolveCatchAll, speaker, tally.Normalize(line), n, err); err != nil {
		return Reply{}, err
	}
	return s.countReply(speaker, category, n), nil
}

func (s *Session) removeCategory(ctx context.Context, label string, force bool) (Reply, error) {
	if !force {
		// Unknown or catch-all labels fall through to the engine for the
		// proper error kind.
		if total, err := s.engine.CategoryTotal(label); err == nil && total > 0 && !s.engine.IsCatchAll(label) {
			cerr := &ConfirmError{Category: tally.Normalize(label), Count: total}
			if err := s.journal(ctx, OpRemoveCategory, "", label, 0, ErrorKindConfirmRequired); err != nil {
				return Reply{}, err
			}
			return Reply{}, cerr
		}
	}

	err := s.engine.RemoveCategory(label)
	if err := s.record(ctx, OpRemoveCategory, "", label, 0, err); err != nil {
		return Reply{}, err
	}
	return Reply{Output: fmt.Sprintf("removed category %s", tally.Normalize(label))}, nil
}

func (s *Session) countReply(speaker, category string, n int) Reply {
	total, _ := s.engine.Total(speaker)
	return Reply{Output: fmt.Sprintf("%s / %s = %d (total %d)", tally.Normalize(speaker), tally.Normalize(category), n, total)}
}

// record journals a command outcome and, when opErr is nil, writes the
// engine state through to the store. It returns opErr unchanged for user
// failures, or a wrapped store error.
func (s *Session) record(ctx context.Context, op, speaker, category string, result int, opErr error) error {
	kind := ""
	if opErr != nil {
		kind = string(tally.KindOf(opErr))
	}
	if err := s.journal(ctx, op, speaker, category, result, kind); err != nil {
		return err
	}
	if opErr != nil {
		s.logger.Debug("command rejected", "op", op, "error", opErr)
		return opErr
	}
	return s.save(ctx)
}

func (s *Session) journal(ctx context.Context, op, speaker, category string, result int, kind string) error {
	entry := store.JournalEntry{
		Seq:       s.clock.Next(),
		SessionID: s.id,
		Op:        op,
		Speaker:   tally.Normalize(speaker),
		Category:  tally.Normalize(category),
		Result:    result,
		ErrorKind: kind,
	}
	if err := s.store.AppendJournal(ctx, entry); err != nil {
		return &storeError{err: err}
	}
	return nil
}

func (s *Session) save(ctx context.Context) error {
	state := s.engine.Snapshot().State()
	if !s.persistCounts {
		state.Counts = nil
	}
	if err := s.store.Save(ctx, state); err != nil {
		return &storeError{err: err}
	}
	return nil
}

// IsStoreError reports whether err came from the store rather than from
// user input.
func IsStoreError(err error) bool {
	var se *storeError
	return errors.As(err, &se)
}

type storeError struct{ err error }

func (e *storeError) Error() string { return "store: " + e.err.Error() }
func (e *storeError) Unwrap() error { return e.err }

// Run reads lines from in until EOF, quit, or context cancellation, writing
// replies and user errors to out. Store failures end the run.
//
// Lines are read on a separate goroutine so cancellation does not wait for
// the next line of input.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("session started")
	defer s.logger.Info("session ended")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				readErr <- ctx.Err()
				return
			}
		}
		readErr <- scanner.Err()
	}()

	if s.prompts {
		fmt.Fprint(out, "type help for commands\n")
	}
	for {
		if s.prompts {
			if s.Awaiting() {
				fmt.Fprint(out, "word> ")
			} else {
				fmt.Fprint(out, "> ")
			}
		}

		var line string
		select {
		case <-ctx.Done():
			s.endLine(out)
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				s.endLine(out)
				return <-readErr
			}
			line = l
		}

		reply, err := s.Execute(ctx, line)
		if err != nil {
			if IsStoreError(err) {
				return err
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if reply.Output != "" {
			fmt.Fprint(out, withNewline(reply.Output))
		}
		if reply.Quit {
			return nil
		}
	}
}

// Close ends the session: a pending custom label is abandoned and the
// current state is written through one last time.
func (s *Session) Close(ctx context.Context) error {
	s.prompt.Cancel()
	return s.save(ctx)
}

// endLine finishes a dangling prompt line.
func (s *Session) endLine(out io.Writer) {
	if s.prompts {
		fmt.Fprintln(out)
	}
}

func withNewline(s string) string {
	if s == "" || s[len(s)-1] == '\n' {
		return s
	}
	return s + "\n"
}
