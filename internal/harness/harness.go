package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/fillertally/internal/store"
	"github.com/roach88/fillertally/internal/tally"
	"github.com/roach88/fillertally/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs one scenario against a fresh engine and an in-memory store, with
// a deterministic clock and a fixed session id.
type Harness struct {
	store     *store.Store
	engine    *tally.Engine
	prompt    *tally.Prompt
	clock     *testutil.DeterministicClock
	sessionID string
	catchAll  string
	logger    *slog.Logger
}

// outcome is what a single step returned.
type outcome struct {
	count    int
	category string
	err      error
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Step and assertion failures are collected in the result; the returned
// error is reserved for infrastructure failures (store, reload).
//
// Execution flow:
// 1. Create fresh in-memory database and seed the engine from setup
// 2. Execute steps, journaling each and checking its expect clause
// 3. Evaluate assertions against the final snapshot
// 4. Read the journal back as the trace
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	catchAll := scenario.CatchAll
	if catchAll == "" {
		catchAll = tally.DefaultCatchAll
	}

	h := &Harness{
		store:     st,
		clock:     testutil.NewDeterministicClock(),
		sessionID: testutil.NewFixedSessionIDGenerator(scenario.SessionID).Generate(),
		catchAll:  catchAll,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	h.load(tally.State{
		Categories: scenario.Setup.Categories,
		Speakers:   scenario.Setup.Speakers,
	})

	ctx := context.Background()
	result := NewResult()

	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	trace, err := st.ReadJournal(ctx, h.sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	result.Trace = trace
	result.Final = h.engine.Snapshot()

	for _, assertErr := range EvaluateAssertions(result.Final, scenario.Assertions, result.Trace) {
		result.AddError(assertErr)
	}

	return result, nil
}

// load replaces the engine (and its prompt) with one built from state.
func (h *Harness) load(state tally.State) {
	h.engine = tally.New(state, tally.WithCatchAll(h.catchAll), tally.WithLogger(h.logger))
	h.prompt = tally.NewPrompt(h.engine)
}

// executeSteps runs all steps sequentially.
//
// Every step except reload gets exactly one journal entry, so the trace
// mirrors the scenario line for line.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		if step.Op == OpReload {
			if err := h.reload(ctx); err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			continue
		}

		out := h.apply(step)

		category := step.Category
		if step.Op == OpResolveCatchAll {
			category = step.Label
			if out.err == nil {
				category = out.category
			}
		}
		entry := store.JournalEntry{
			Seq:       h.clock.Next(), // CRITICAL: exactly one Next() per step
			SessionID: h.sessionID,
			Op:        step.Op,
			Speaker:   tally.Normalize(step.Speaker),
			Category:  tally.Normalize(category),
			Result:    out.count,
			ErrorKind: string(tally.KindOf(out.err)),
		}
		if err := h.store.AppendJournal(ctx, entry); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		for _, msg := range checkExpect(step, out) {
			result.AddError(fmt.Sprintf("steps[%d] %s: %s", i, step.Op, msg))
		}

		h.logger.Info("step completed",
			"step", i,
			"op", step.Op,
			"seq", entry.Seq,
			"error_kind", entry.ErrorKind,
		)
	}
	return nil
}

// apply runs one step against the engine.
func (h *Harness) apply(step Step) outcome {
	e := h.engine
	switch step.Op {
	case OpIncrement:
		n, err := e.Increment(step.Speaker, step.Category)
		return outcome{count: n, err: err}

	case OpDecrement:
		n, err := e.Decrement(step.Speaker, step.Category)
		return outcome{count: n, err: err}

	case OpResolveCatchAll:
		if err := h.prompt.Begin(step.Speaker); err != nil {
			return outcome{err: err}
		}
		category, n, err := h.prompt.Submit(step.Label)
		return outcome{count: n, category: category, err: err}

	case OpAddCategory:
		label, err := e.AddCategory(step.Category)
		return outcome{category: label, err: err}

	case OpRemoveCategory:
		return outcome{err: e.RemoveCategory(step.Category)}

	case OpAddSpeaker:
		_, err := e.AddSpeaker(step.Speaker)
		return outcome{err: err}

	case OpRemoveSpeaker:
		return outcome{err: e.RemoveSpeaker(step.Speaker)}

	case OpReset:
		e.ResetAll()
		return outcome{}
	}
	return outcome{err: fmt.Errorf("unknown op %q", step.Op)}
}

// checkExpect compares a step outcome with its expect clause.
// A step without an expect clause must succeed.
func checkExpect(step Step, out outcome) []string {
	want := Expect{}
	if step.Expect != nil {
		want = *step.Expect
	}

	got := string(tally.KindOf(out.err))
	if out.err != nil && got == "" {
		return []string{fmt.Sprintf("unexpected error: %v", out.err)}
	}
	if got != want.Error {
		return []string{fmt.Sprintf("expected %s, got %s", describeKind(want.Error), describeKind(got))}
	}
	if out.err != nil {
		return nil
	}

	var msgs []string
	if want.Count != nil && *want.Count != out.count {
		msgs = append(msgs, fmt.Sprintf("expected count %d, got %d", *want.Count, out.count))
	}
	if want.Category != "" && want.Category != out.category {
		msgs = append(msgs, fmt.Sprintf("expected category %q, got %q", want.Category, out.category))
	}
	return msgs
}

func describeKind(kind string) string {
	if kind == "" {
		return "success"
	}
	return "error " + kind
}

// reload round-trips the engine through the store with default persistence:
// structure is saved, counts are not.
func (h *Harness) reload(ctx context.Context) error {
	state := h.engine.Snapshot().State()
	state.Counts = nil
	if err := h.store.Save(ctx, state); err != nil {
		return fmt.Errorf("reload save: %w", err)
	}

	defaults := store.StarterDefaults()
	defaults.CatchAll = h.catchAll
	loaded, err := h.store.Load(ctx, defaults)
	if err != nil {
		return fmt.Errorf("reload load: %w", err)
	}

	h.load(loaded)
	h.logger.Info("engine reloaded", "categories", len(loaded.Categories), "speakers", len(loaded.Speakers))
	return nil
}
