package tally

import (
	"io"
	"iter"
	"log/slog"
	"sync"
)

// Engine composes a Registry and a Roster and exposes the mutation and query
// API used by presentation code.
//
// Thread-safety model:
//   - Every exported method takes e.mu
//   - Mutations read-modify-write shared counts, so they are applied whole,
//     one at a time, in the order callers acquire the lock
//
// INVARIANTS:
//   - Every speaker has exactly one entry per registry category
//   - Counts are never negative
//   - Totals are derived from live counts on every query
type Engine struct {
	mu       sync.Mutex
	registry *Registry
	roster   *Roster
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	catchAll string
	logger   *slog.Logger
}

// WithCatchAll sets the catch-all label. Default: DefaultCatchAll.
func WithCatchAll(label string) Option {
	return func(c *engineConfig) {
		c.catchAll = label
	}
}

// WithLogger sets the logger used for mutation debug logs. Default: discard.
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an Engine from loaded state.
//
// Categories are repaired as described on NewRegistry. Invalid and duplicate
// speakers are dropped. If state.Counts is non-nil it is applied with
// RestoreCounts; otherwise every count starts at 0.
func New(state State, opts ...Option) *Engine {
	cfg := engineConfig{
		catchAll: DefaultCatchAll,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Engine{
		registry: NewRegistry(cfg.catchAll, state.Categories...),
		roster:   NewRoster(),
		logger:   cfg.logger,
	}

	categories := e.registry.List()
	for _, name := range state.Speakers {
		if _, err := e.roster.Add(name, categories); err != nil {
			e.logger.Debug("dropping speaker on load", "speaker", name, "reason", err)
		}
	}
	if state.Counts != nil {
		e.restoreCounts(state.Counts)
	}
	return e
}

// CatchAll returns the catch-all label.
func (e *Engine) CatchAll() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.CatchAll()
}

// IsCatchAll reports whether label names the catch-all, ignoring case.
func (e *Engine) IsCatchAll(label string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.IsCatchAll(label)
}

// Categories iterates the categories in display order as of the call.
func (e *Engine) Categories() iter.Seq[string] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.All()
}

// Speakers iterates the speakers in insertion order as of the call.
func (e *Engine) Speakers() iter.Seq[string] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.roster.All()
}

// AddCategory creates a category before the catch-all, with a 0 count for
// every existing speaker.
func (e *Engine) AddCategory(label string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addCategory(label)
}

func (e *Engine) addCategory(label string) (string, error) {
	label, err := e.registry.Add(label)
	if err != nil {
		return "", err
	}
	e.roster.addColumn(label)
	e.logger.Debug("category added", "category", label)
	return label, nil
}

// RemoveCategory deletes a category and its count from every speaker.
// Removal is unconditional; confirming the loss of nonzero counts is up to
// the caller.
func (e *Engine) RemoveCategory(label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	label = Normalize(label)
	if err := e.registry.Remove(label); err != nil {
		return err
	}
	e.roster.dropColumn(label)
	e.logger.Debug("category removed", "category", label)
	return nil
}

// AddSpeaker starts tracking a speaker with every category at 0.
func (e *Engine) AddSpeaker(name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name, err := e.roster.Add(name, e.registry.List())
	if err != nil {
		return "", err
	}
	e.logger.Debug("speaker added", "speaker", name)
	return name, nil
}

// RemoveSpeaker stops tracking a speaker and discards its counts.
func (e *Engine) RemoveSpeaker(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.roster.Remove(name); err != nil {
		return err
	}
	e.logger.Debug("speaker removed", "speaker", Normalize(name))
	return nil
}

// Increment adds one to (speaker, category) and returns the new count.
//
// The catch-all cannot be incremented directly: callers resolve it to a
// concrete label with ResolveCatchAll (or drive a Prompt) and increment
// that. A direct attempt fails with ErrCatchAllUnresolved.
func (e *Engine) Increment(speaker, category string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	speaker, category, err := e.lookup(speaker, category)
	if err != nil {
		return 0, err
	}
	if category == e.registry.CatchAll() {
		return 0, newError(ErrCatchAllUnresolved, category)
	}

	n := e.roster.count(speaker, category) + 1
	e.roster.setCount(speaker, category, n)
	e.logger.Debug("increment", "speaker", speaker, "category", category, "count", n)
	return n, nil
}

// Decrement subtracts one from (speaker, category), clamping at 0, and
// returns the new count. Decrementing a zero count is a no-op, not an error.
func (e *Engine) Decrement(speaker, category string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	speaker, category, err := e.lookup(speaker, category)
	if err != nil {
		return 0, err
	}

	n := max(0, e.roster.count(speaker, category)-1)
	e.roster.setCount(speaker, category, n)
	e.logger.Debug("decrement", "speaker", speaker, "category", category, "count", n)
	return n, nil
}

// ResolveCatchAll maps a custom label typed for the catch-all to an ordinary
// category, creating it before the catch-all if it does not exist yet.
// Resolving the same label twice returns the same category.
//
// Fails with ErrInvalidLabel for empty input or for a label naming the
// catch-all itself.
func (e *Engine) ResolveCatchAll(label string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolveCatchAll(label)
}

func (e *Engine) resolveCatchAll(label string) (string, error) {
	label = Normalize(label)
	if label == "" || e.registry.IsCatchAll(label) {
		return "", newError(ErrInvalidLabel, label)
	}
	if e.registry.Contains(label) {
		return label, nil
	}
	return e.addCategory(label)
}

// Count returns the current count for (speaker, category).
func (e *Engine) Count(speaker, category string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	speaker, category, err := e.lookup(speaker, category)
	if err != nil {
		return 0, err
	}
	return e.roster.count(speaker, category), nil
}

// Total returns the sum of a speaker's per-category counts.
func (e *Engine) Total(speaker string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	speaker = Normalize(speaker)
	if !e.roster.Contains(speaker) {
		return 0, newError(ErrUnknownSpeaker, speaker)
	}
	return e.roster.total(speaker), nil
}

// CategoryTotal returns the sum of one category across all speakers.
func (e *Engine) CategoryTotal(category string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	category, err := e.lookupCategory(category)
	if err != nil {
		return 0, err
	}
	return e.roster.columnTotal(category), nil
}

// ResetAll sets every count to 0. Categories and speakers are unchanged.
func (e *Engine) ResetAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.roster.zero()
	e.logger.Debug("counts reset", "speakers", e.roster.Len())
}

// RestoreCounts applies previously persisted counts. Entries naming unknown
// speakers or categories are ignored and negative values are clamped to 0.
// Known pairs missing from counts keep their current value.
func (e *Engine) RestoreCounts(counts map[string]map[string]int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.restoreCounts(counts)
}

func (e *Engine) restoreCounts(counts map[string]map[string]int) {
	for rawSpeaker, row := range counts {
		speaker := Normalize(rawSpeaker)
		if !e.roster.Contains(speaker) {
			continue
		}
		for rawCategory, n := range row {
			category := Normalize(rawCategory)
			if !e.registry.Contains(category) {
				continue
			}
			e.roster.setCount(speaker, category, max(0, n))
		}
	}
}

// Snapshot returns a private copy of the current state with derived totals.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		CatchAll:       e.registry.CatchAll(),
		Categories:     e.registry.List(),
		Speakers:       e.roster.List(),
		Counts:         make(map[string]map[string]int, e.roster.Len()),
		Totals:         make(map[string]int, e.roster.Len()),
		CategoryTotals: make(map[string]int, e.registry.Len()),
	}
	for _, s := range snap.Speakers {
		snap.Counts[s] = e.roster.row(s)
		snap.Totals[s] = e.roster.total(s)
		snap.GrandTotal += snap.Totals[s]
	}
	for _, c := range snap.Categories {
		snap.CategoryTotals[c] = e.roster.columnTotal(c)
	}
	return snap
}

// lookup validates a (speaker, category) pair and returns their stored spellings.
func (e *Engine) lookup(speaker, category string) (string, string, error) {
	speaker = Normalize(speaker)
	if !e.roster.Contains(speaker) {
		return "", "", newError(ErrUnknownSpeaker, speaker)
	}
	category, err := e.lookupCategory(category)
	if err != nil {
		return "", "", err
	}
	return speaker, category, nil
}

// lookupCategory matches the catch-all in any letter case and every other
// category exactly.
func (e *Engine) lookupCategory(category string) (string, error) {
	category = Normalize(category)
	if e.registry.IsCatchAll(category) {
		return e.registry.CatchAll(), nil
	}
	if !e.registry.Contains(category) {
		return "", newError(ErrUnknownCategory, category)
	}
	return category, nil
}
