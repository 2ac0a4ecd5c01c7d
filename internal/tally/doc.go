// Package tally implements the filler-word tally state engine.
//
// The engine owns two structures:
//   - Registry: the ordered list of filler categories, ending in the catch-all
//   - Roster: the tracked speakers and, per speaker, a count per category
//
// Totals are never stored. Engine.Total and Engine.CategoryTotal sum the live
// per-category counts on every call, so they cannot drift after a category
// or speaker is removed.
//
// # Catch-all
//
// Exactly one category is the catch-all (historically "Other"). It can never
// be removed and is never incremented directly. Selecting it is a two-phase
// interaction modelled by Prompt:
//
//	Idle -> Begin(speaker) -> AwaitingCustomLabel -> Submit(label) -> Idle
//
// Submit resolves the label to an ordinary category (creating it just
// before the catch-all if needed) and increments that category.
//
// # Failure semantics
//
// Every operation validates before it mutates. A failed call returns an
// *Error whose Kind identifies the failure and leaves state unchanged.
//
// # Concurrency
//
// All entry points take the engine mutex, so calls from several goroutines
// are applied one at a time in the order they acquire it.
package tally
