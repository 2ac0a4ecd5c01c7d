package harness

import (
	"github.com/roach88/fillertally/internal/store"
	"github.com/roach88/fillertally/internal/tally"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every step matched its expectation and every assertion held.
	Pass bool `json:"pass"`

	// Trace holds one journal entry per step, read back from the store in
	// seq order. reload steps are not journaled.
	Trace []store.JournalEntry `json:"trace"`

	// Errors contains step and assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the engine snapshot after the last step.
	Final tally.Snapshot `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []store.JournalEntry{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
