package tally

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes tally validation failures.
type ErrorKind string

const (
	// ErrDuplicateCategory indicates the category label already exists.
	ErrDuplicateCategory ErrorKind = "DuplicateCategory"

	// ErrDuplicateSpeaker indicates the speaker name already exists.
	ErrDuplicateSpeaker ErrorKind = "DuplicateSpeaker"

	// ErrUnknownSpeaker indicates a mutation or query named a speaker that is not tracked.
	ErrUnknownSpeaker ErrorKind = "UnknownSpeaker"

	// ErrUnknownCategory indicates a mutation or query named a category that does not exist.
	ErrUnknownCategory ErrorKind = "UnknownCategory"

	// ErrNotFound indicates removal of an entity that does not exist.
	ErrNotFound ErrorKind = "NotFound"

	// ErrCannotRemoveCatchAll indicates an attempt to remove the catch-all category.
	ErrCannotRemoveCatchAll ErrorKind = "CannotRemoveCatchAll"

	// ErrInvalidLabel indicates a label that is empty after trimming.
	ErrInvalidLabel ErrorKind = "InvalidLabel"

	// ErrCatchAllUnresolved indicates a direct increment of the catch-all
	// without resolving it to a concrete label first.
	ErrCatchAllUnresolved ErrorKind = "CatchAllUnresolved"

	// ErrPromptBusy indicates Begin was called while a label is already awaited.
	ErrPromptBusy ErrorKind = "PromptBusy"

	// ErrPromptIdle indicates Submit was called with no label awaited.
	ErrPromptIdle ErrorKind = "PromptIdle"
)

// Error is a local validation failure. State is unchanged when one is returned.
type Error struct {
	Kind  ErrorKind
	Label string // offending speaker or category label, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s: %q", e.Kind, e.Label)
	}
	return string(e.Kind)
}

func newError(kind ErrorKind, label string) *Error {
	return &Error{Kind: kind, Label: label}
}

// KindOf returns the ErrorKind of err, or "" when err is not a tally error.
// Uses errors.As to handle wrapped errors.
func KindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// IsKind reports whether err is a tally error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
