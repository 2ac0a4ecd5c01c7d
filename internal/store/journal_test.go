package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_AppendRead(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	entries := []JournalEntry{
		{Seq: 2, SessionID: "session-a", Op: "decrement", Speaker: "Steve", Category: "Ah", Result: 0},
		{Seq: 1, SessionID: "session-a", Op: "increment", Speaker: "Steve", Category: "Ah", Result: 1},
		{Seq: 3, SessionID: "session-b", Op: "remove_category", Category: "Other", ErrorKind: "CannotRemoveCatchAll"},
	}
	for _, e := range entries {
		require.NoError(t, s.AppendJournal(ctx, e))
	}

	got, err := s.ReadJournal(ctx, "session-a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].Seq, "ordered by seq")
	assert.Equal(t, "increment", got[0].Op)
	assert.Equal(t, int64(2), got[1].Seq)

	got, err = s.ReadJournal(ctx, "session-b")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "CannotRemoveCatchAll", got[0].ErrorKind)
}

func TestJournal_DuplicateSeqIgnored(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendJournal(ctx, JournalEntry{Seq: 1, SessionID: "s", Op: "increment"}))
	require.NoError(t, s.AppendJournal(ctx, JournalEntry{Seq: 1, SessionID: "s", Op: "decrement"}))

	got, err := s.ReadJournal(ctx, "s")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "increment", got[0].Op)
}

func TestJournal_EmptySession(t *testing.T) {
	s := createTestStore(t)

	got, err := s.ReadJournal(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestJournal_LastSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.LastJournalSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	require.NoError(t, s.AppendJournal(ctx, JournalEntry{Seq: 7, SessionID: "s", Op: "reset"}))
	require.NoError(t, s.AppendJournal(ctx, JournalEntry{Seq: 4, SessionID: "s", Op: "reset"}))

	seq, err = s.LastJournalSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
}
