// Package summary renders tally snapshots for people: a shareable plain-text
// summary and an aligned board. Rendering only reads the snapshot; every
// number comes from the engine's derived totals.
package summary

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/roach88/fillertally/internal/tally"
)

// NoCounts is the text rendered when no speakers are tracked.
const NoCounts = "No counts yet."

// Text renders the shareable summary: each speaker's total followed by their
// nonzero categories, then the overall total for every category.
func Text(snap tally.Snapshot) string {
	if snap.Empty() {
		return NoCounts + "\n"
	}

	var b strings.Builder
	for _, speaker := range snap.Speakers {
		fmt.Fprintf(&b, "%s: %d\n", speaker, snap.Totals[speaker])
		for _, category := range snap.Categories {
			if n := snap.Count(speaker, category); n > 0 {
				fmt.Fprintf(&b, "  - %s: %d\n", category, n)
			}
		}
	}

	b.WriteString("---\n")
	b.WriteString("Overall Totals\n")
	for _, category := range snap.Categories {
		fmt.Fprintf(&b, "  %s: %d\n", category, snap.CategoryTotals[category])
	}
	return b.String()
}

// Board writes the snapshot as an aligned table: a header row, a row of
// per-category totals, then one row per speaker.
func Board(w io.Writer, snap tally.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := append([]string{"Speaker", "Total"}, snap.Categories...)
	writeRow(tw, header)

	totals := []string{"(all)", strconv.Itoa(snap.GrandTotal)}
	for _, c := range snap.Categories {
		totals = append(totals, strconv.Itoa(snap.CategoryTotals[c]))
	}
	writeRow(tw, totals)

	for _, s := range snap.Speakers {
		row := []string{s, strconv.Itoa(snap.Totals[s])}
		for _, c := range snap.Categories {
			row = append(row, strconv.Itoa(snap.Count(s, c)))
		}
		writeRow(tw, row)
	}

	return tw.Flush()
}

func writeRow(w io.Writer, cells []string) {
	fmt.Fprintln(w, strings.Join(cells, "\t"))
}
