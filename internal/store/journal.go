package store

import (
	"context"
	"fmt"
)

// JournalEntry records one session command and its outcome.
type JournalEntry struct {
	Seq       int64  `json:"seq"`
	SessionID string `json:"session_id"`
	Op        string `json:"op"`
	Speaker   string `json:"speaker,omitempty"`
	Category  string `json:"category,omitempty"`
	Result    int    `json:"result"`
	ErrorKind string `json:"error_kind,omitempty"` // empty when the command succeeded
}

// AppendJournal inserts a journal entry.
// Uses ON CONFLICT(seq) DO NOTHING for idempotency - writing the same seq
// twice keeps the first entry.
func (s *Store) AppendJournal(ctx context.Context, e JournalEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journal (seq, session_id, op, speaker, category, result, error_kind)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`, e.Seq, e.SessionID, e.Op, e.Speaker, e.Category, e.Result, e.ErrorKind)
	if err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	return nil
}

// ReadJournal returns a session's entries ordered by seq.
// Returns an empty slice (not nil) if the session has no entries.
func (s *Store) ReadJournal(ctx context.Context, sessionID string) ([]JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, session_id, op, speaker, category, result, error_kind
		FROM journal
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	entries := []JournalEntry{}
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.Seq, &e.SessionID, &e.Op, &e.Speaker, &e.Category, &e.Result, &e.ErrorKind); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}

// LastJournalSeq returns the highest journal seq, or 0 for an empty journal.
// A new session starts its clock here so seq stays unique across sessions.
func (s *Store) LastJournalSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM journal`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last journal seq: %w", err)
	}
	return seq, nil
}
