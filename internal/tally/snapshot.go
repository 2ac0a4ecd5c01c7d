package tally

// State is the structural input and output of an Engine: the category list,
// the speaker list and, optionally, the per-speaker counts.
//
// Counts is nil when counts are not carried (the default persistence mode).
type State struct {
	Categories []string                  `json:"categories"`
	Speakers   []string                  `json:"speakerNames"`
	Counts     map[string]map[string]int `json:"counts,omitempty"`
}

// Snapshot is a read-only view of the engine at one point in time.
// Every field is a private copy; mutating it does not affect the engine,
// but consumers should treat it as immutable regardless.
type Snapshot struct {
	CatchAll       string                    `json:"catch_all"`
	Categories     []string                  `json:"categories"`
	Speakers       []string                  `json:"speakers"`
	Counts         map[string]map[string]int `json:"counts"`
	Totals         map[string]int            `json:"totals"`
	CategoryTotals map[string]int            `json:"category_totals"`
	GrandTotal     int                       `json:"grand_total"`
}

// Count returns the count for (speaker, category), or 0 if either is unknown.
func (s Snapshot) Count(speaker, category string) int {
	return s.Counts[speaker][category]
}

// Empty reports whether no speakers are tracked.
func (s Snapshot) Empty() bool {
	return len(s.Speakers) == 0
}

// State returns the structural part of the snapshot, including counts.
func (s Snapshot) State() State {
	return State{
		Categories: append([]string(nil), s.Categories...),
		Speakers:   append([]string(nil), s.Speakers...),
		Counts:     cloneCounts(s.Counts),
	}
}

func cloneCounts(in map[string]map[string]int) map[string]map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]map[string]int, len(in))
	for speaker, row := range in {
		cp := make(map[string]int, len(row))
		for c, n := range row {
			cp[c] = n
		}
		out[speaker] = cp
	}
	return out
}
