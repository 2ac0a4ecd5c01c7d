package tally

import (
	"iter"
	"slices"
)

// Registry is the ordered list of filler categories.
//
// INVARIANTS:
//   - No two labels are equal (case-sensitive, after Normalize)
//   - The catch-all label is present exactly once
//   - Add inserts immediately before the catch-all
//
// Registry is not safe for concurrent use; Engine serializes access.
type Registry struct {
	catchAll string
	labels   []string
}

// NewRegistry builds a registry from stored labels, repairing them as needed:
// invalid and duplicate labels are dropped, any label matching the catch-all
// is kept once (in the position of its first occurrence) under its canonical
// spelling, and the catch-all is appended if it is missing.
//
// An empty catchAll falls back to DefaultCatchAll.
func NewRegistry(catchAll string, labels ...string) *Registry {
	catchAll = Normalize(catchAll)
	if catchAll == "" {
		catchAll = DefaultCatchAll
	}

	r := &Registry{catchAll: catchAll, labels: make([]string, 0, len(labels)+1)}
	seenCatchAll := false
	for _, raw := range labels {
		label := Normalize(raw)
		if label == "" {
			continue
		}
		if foldEqual(label, catchAll) {
			if !seenCatchAll {
				r.labels = append(r.labels, catchAll)
				seenCatchAll = true
			}
			continue
		}
		if r.Contains(label) {
			continue
		}
		r.labels = append(r.labels, label)
	}
	if !seenCatchAll {
		r.labels = append(r.labels, catchAll)
	}
	return r
}

// CatchAll returns the catch-all label.
func (r *Registry) CatchAll() string {
	return r.catchAll
}

// IsCatchAll reports whether label names the catch-all, ignoring case.
func (r *Registry) IsCatchAll(label string) bool {
	return foldEqual(label, r.catchAll)
}

// Contains reports whether label exists (exact match after Normalize).
func (r *Registry) Contains(label string) bool {
	return r.indexOf(Normalize(label)) >= 0
}

// Len returns the number of categories, including the catch-all.
func (r *Registry) Len() int {
	return len(r.labels)
}

// Add inserts a new category immediately before the catch-all and returns the
// normalized label.
//
// Fails with ErrInvalidLabel if the label is empty after trimming, and with
// ErrDuplicateCategory if it already exists or names the catch-all.
func (r *Registry) Add(label string) (string, error) {
	label = Normalize(label)
	if label == "" {
		return "", newError(ErrInvalidLabel, label)
	}
	if r.IsCatchAll(label) || r.indexOf(label) >= 0 {
		return "", newError(ErrDuplicateCategory, label)
	}

	at := r.indexOf(r.catchAll)
	if at < 0 {
		r.labels = append(r.labels, label)
	} else {
		r.labels = slices.Insert(r.labels, at, label)
	}
	return label, nil
}

// Remove deletes a category.
//
// Fails with ErrCannotRemoveCatchAll for the catch-all (in any letter case)
// and ErrNotFound when the label does not exist.
func (r *Registry) Remove(label string) error {
	label = Normalize(label)
	if r.IsCatchAll(label) {
		return newError(ErrCannotRemoveCatchAll, label)
	}
	at := r.indexOf(label)
	if at < 0 {
		return newError(ErrNotFound, label)
	}
	r.labels = slices.Delete(r.labels, at, at+1)
	return nil
}

// List returns a copy of the labels in display order.
func (r *Registry) List() []string {
	return slices.Clone(r.labels)
}

// All returns an iterator over the labels in display order.
// The order is captured when All is called; the sequence can be ranged over
// any number of times and is unaffected by later edits.
func (r *Registry) All() iter.Seq[string] {
	return slices.Values(r.List())
}

func (r *Registry) indexOf(label string) int {
	return slices.Index(r.labels, label)
}
