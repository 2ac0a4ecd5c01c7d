// Package store provides SQLite-backed persistence for tally state.
//
// Durable state is a small key-value table:
//   - categories: ordered JSON array of category labels
//   - speakerNames: ordered JSON array of speaker names
//   - counts: optional JSON object, only written when count persistence is on
//
// Load never fails on bad data. Missing or unparseable entries fall back to
// the supplied defaults, and the catch-all label is appended to the category
// list if it is absent. Only database errors are returned.
//
// The store also keeps an append-only journal of session commands. Journal
// rows are ordered by seq, a logical clock value supplied by the caller,
// never by wall time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
