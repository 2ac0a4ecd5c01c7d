package tally

import (
	"iter"
	"maps"
	"slices"
)

// Roster is the set of tracked speakers with their per-category counts.
// Speakers iterate in insertion order.
//
// Roster is not safe for concurrent use; Engine serializes access.
type Roster struct {
	names  []string
	counts map[string]map[string]int
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{counts: make(map[string]map[string]int)}
}

// Add tracks a new speaker with every given category at 0 and returns the
// normalized name.
//
// Fails with ErrInvalidLabel for empty or whitespace-only names and with
// ErrDuplicateSpeaker when the name is already tracked.
func (r *Roster) Add(name string, categories []string) (string, error) {
	name = Normalize(name)
	if name == "" {
		return "", newError(ErrInvalidLabel, name)
	}
	if r.Contains(name) {
		return "", newError(ErrDuplicateSpeaker, name)
	}

	row := make(map[string]int, len(categories))
	for _, c := range categories {
		row[c] = 0
	}
	r.names = append(r.names, name)
	r.counts[name] = row
	return name, nil
}

// Remove stops tracking a speaker and discards its counts.
func (r *Roster) Remove(name string) error {
	name = Normalize(name)
	at := slices.Index(r.names, name)
	if at < 0 {
		return newError(ErrNotFound, name)
	}
	r.names = slices.Delete(r.names, at, at+1)
	delete(r.counts, name)
	return nil
}

// Contains reports whether name is tracked (exact match after Normalize).
func (r *Roster) Contains(name string) bool {
	_, ok := r.counts[Normalize(name)]
	return ok
}

// Len returns the number of tracked speakers.
func (r *Roster) Len() int {
	return len(r.names)
}

// List returns a copy of the speaker names in insertion order.
func (r *Roster) List() []string {
	return slices.Clone(r.names)
}

// All returns an iterator over a snapshot of the speaker names.
func (r *Roster) All() iter.Seq[string] {
	return slices.Values(r.List())
}

// count returns the stored count; callers have already validated both names.
func (r *Roster) count(name, category string) int {
	return r.counts[name][category]
}

func (r *Roster) setCount(name, category string, n int) {
	r.counts[name][category] = n
}

// addColumn seeds a 0 entry for category on every speaker.
func (r *Roster) addColumn(category string) {
	for _, row := range r.counts {
		row[category] = 0
	}
}

// dropColumn removes the category entry from every speaker.
func (r *Roster) dropColumn(category string) {
	for _, row := range r.counts {
		delete(row, category)
	}
}

// zero sets every count to 0 without changing membership.
func (r *Roster) zero() {
	for _, row := range r.counts {
		for c := range row {
			row[c] = 0
		}
	}
}

// total sums one speaker's live per-category counts.
func (r *Roster) total(name string) int {
	sum := 0
	for _, n := range r.counts[name] {
		sum += n
	}
	return sum
}

// columnTotal sums one category across every speaker.
func (r *Roster) columnTotal(category string) int {
	sum := 0
	for _, row := range r.counts {
		sum += row[category]
	}
	return sum
}

// row returns a copy of one speaker's counts.
func (r *Roster) row(name string) map[string]int {
	return maps.Clone(r.counts[name])
}
