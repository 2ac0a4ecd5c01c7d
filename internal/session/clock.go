package session

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Clock stamps journal entries with a strictly increasing seq.
// Implemented by LogicalClock (production) and testutil.DeterministicClock (tests).
type Clock interface {
	Next() int64
}

// LogicalClock is a monotonic logical clock for journal ordering.
// Journal order never depends on wall time.
//
// Thread-safety: LogicalClock is safe for concurrent use (atomic operations).
type LogicalClock struct {
	seq atomic.Int64
}

// NewClockAt creates a clock whose first Next() returns start+1.
// Sessions start from the store's last journal seq so seq values stay
// unique across sessions.
func NewClockAt(start int64) *LogicalClock {
	c := &LogicalClock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *LogicalClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *LogicalClock) Current() int64 {
	return c.seq.Load()
}

// IDGenerator produces session ids.
// Implemented by UUIDv7Generator (production) and testutil.FixedSessionIDGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session ids, so journal
// rows from later sessions sort after earlier ones by id as well as by seq.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
