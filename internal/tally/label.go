package tally

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultCatchAll is the catch-all label used when none is configured.
const DefaultCatchAll = "Other"

// Normalize trims surrounding whitespace and NFC-normalizes a label, so that
// composed and decomposed forms of the same text name the same entry.
// Returns "" for whitespace-only input.
func Normalize(label string) string {
	return norm.NFC.String(strings.TrimSpace(label))
}

// foldEqual compares two labels case-insensitively using Unicode case folding.
// A Caser is stateful, so a fresh one is used per call.
func foldEqual(a, b string) bool {
	return cases.Fold().String(Normalize(a)) == cases.Fold().String(Normalize(b))
}
