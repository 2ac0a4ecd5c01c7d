package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/fillertally/internal/store"
	"github.com/roach88/fillertally/internal/tally"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string               // Assertion type for categorization
	Expected string               // Human-readable expected outcome
	Actual   string               // Human-readable actual outcome
	Trace    []store.JournalEntry // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, entry := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s", entry.Seq, entry.Op)
			if entry.Speaker != "" {
				fmt.Fprintf(&buf, " speaker=%q", entry.Speaker)
			}
			if entry.Category != "" {
				fmt.Fprintf(&buf, " category=%q", entry.Category)
			}
			if entry.ErrorKind != "" {
				fmt.Fprintf(&buf, " -> %s\n", entry.ErrorKind)
			} else {
				fmt.Fprintf(&buf, " -> %d\n", entry.Result)
			}
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the final snapshot and
// returns one message per failure.
func EvaluateAssertions(snap tally.Snapshot, assertions []Assertion, trace []store.JournalEntry) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(snap, a, trace); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(snap tally.Snapshot, a Assertion, trace []store.JournalEntry) error {
	switch a.Type {
	case AssertCount:
		return assertCount(snap, a, trace)
	case AssertTotal:
		return assertTotal(snap, a, trace)
	case AssertCategoryTotal:
		return assertCategoryTotal(snap, a, trace)
	case AssertGrandTotal:
		return assertNumber(AssertGrandTotal, "grand total", a.Value, snap.GrandTotal, trace)
	case AssertCategories:
		return assertList(AssertCategories, a.Values, snap.Categories, trace)
	case AssertSpeakers:
		return assertList(AssertSpeakers, a.Values, snap.Speakers, trace)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

// assertCount checks Count(speaker, category). Both names must exist.
func assertCount(snap tally.Snapshot, a Assertion, trace []store.JournalEntry) error {
	speaker, category := tally.Normalize(a.Speaker), tally.Normalize(a.Category)
	row, ok := snap.Counts[speaker]
	if !ok {
		return missing(AssertCount, "speaker", speaker, trace)
	}
	n, ok := row[category]
	if !ok {
		return missing(AssertCount, "category", category, trace)
	}
	return assertNumber(AssertCount, fmt.Sprintf("count(%s, %s)", speaker, category), a.Value, n, trace)
}

func assertTotal(snap tally.Snapshot, a Assertion, trace []store.JournalEntry) error {
	speaker := tally.Normalize(a.Speaker)
	n, ok := snap.Totals[speaker]
	if !ok {
		return missing(AssertTotal, "speaker", speaker, trace)
	}
	return assertNumber(AssertTotal, fmt.Sprintf("total(%s)", speaker), a.Value, n, trace)
}

func assertCategoryTotal(snap tally.Snapshot, a Assertion, trace []store.JournalEntry) error {
	category := tally.Normalize(a.Category)
	n, ok := snap.CategoryTotals[category]
	if !ok {
		return missing(AssertCategoryTotal, "category", category, trace)
	}
	return assertNumber(AssertCategoryTotal, fmt.Sprintf("category_total(%s)", category), a.Value, n, trace)
}

func assertNumber(typ, what string, want, got int, trace []store.JournalEntry) error {
	if want == got {
		return nil
	}
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprintf("%s = %d", what, want),
		Actual:   fmt.Sprintf("%s = %d", what, got),
		Trace:    trace,
	}
}

// assertList checks an ordered list exactly; order is part of the contract.
func assertList(typ string, want, got []string, trace []store.JournalEntry) error {
	if slices.Equal(want, got) {
		return nil
	}
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprintf("%q", want),
		Actual:   fmt.Sprintf("%q", got),
		Trace:    trace,
	}
}

func missing(typ, what, name string, trace []store.JournalEntry) error {
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprintf("%s %q to exist", what, name),
		Actual:   fmt.Sprintf("%s %q not found", what, name),
		Trace:    trace,
	}
}
