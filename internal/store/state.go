package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/fillertally/internal/tally"
)

// Keys in the kv table.
const (
	KeyCategories = "categories"
	KeySpeakers   = "speakerNames"
	KeyCounts     = "counts"
)

// DefaultCategories is the starter category list, ending in the catch-all.
var DefaultCategories = []string{"Ah", "Um", "You know", "So", "Like", tally.DefaultCatchAll}

// DefaultSpeakers is the starter speaker list.
var DefaultSpeakers = []string{"Steve", "Jarrod", "Arielle", "Dave", "Khan", "Sandy", "Len", "Anthony", "Renson"}

// Defaults is what Load falls back to when stored state is missing or bad.
type Defaults struct {
	CatchAll   string
	Categories []string
	Speakers   []string
}

// StarterDefaults returns the built-in starter lists with the default catch-all.
func StarterDefaults() Defaults {
	return Defaults{
		CatchAll:   tally.DefaultCatchAll,
		Categories: append([]string(nil), DefaultCategories...),
		Speakers:   append([]string(nil), DefaultSpeakers...),
	}
}

// Save writes the category and speaker lists in one transaction.
// When state.Counts is nil any previously stored counts are deleted, so a
// reload starts every pair at 0.
func (s *Store) Save(ctx context.Context, state tally.State) error {
	categories, err := json.Marshal(nonNil(state.Categories))
	if err != nil {
		return fmt.Errorf("save: marshal categories: %w", err)
	}
	speakers, err := json.Marshal(nonNil(state.Speakers))
	if err != nil {
		return fmt.Errorf("save: marshal speakers: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := putTx(ctx, tx, KeyCategories, string(categories)); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := putTx(ctx, tx, KeySpeakers, string(speakers)); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	if state.Counts != nil {
		counts, err := json.Marshal(state.Counts)
		if err != nil {
			return fmt.Errorf("save: marshal counts: %w", err)
		}
		if err := putTx(ctx, tx, KeyCounts, string(counts)); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	} else if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, KeyCounts); err != nil {
		return fmt.Errorf("save: clear counts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save: commit: %w", err)
	}
	return nil
}

// Load reads the stored state.
//
// Each list falls back to its default independently when missing or
// unparseable. The category list is repaired so it contains the catch-all
// exactly once (appended when absent). Counts are returned only when stored
// and parseable; otherwise State.Counts is nil.
func (s *Store) Load(ctx context.Context, def Defaults) (tally.State, error) {
	var state tally.State

	categories, err := s.loadList(ctx, KeyCategories, def.Categories)
	if err != nil {
		return state, err
	}
	state.Categories = tally.NewRegistry(def.CatchAll, categories...).List()

	state.Speakers, err = s.loadList(ctx, KeySpeakers, def.Speakers)
	if err != nil {
		return state, err
	}

	raw, ok, err := s.get(ctx, KeyCounts)
	if err != nil {
		return state, err
	}
	if ok {
		var counts map[string]map[string]int
		if err := json.Unmarshal([]byte(raw), &counts); err != nil {
			slog.Warn("stored counts unreadable, starting from zero", "error", err)
		} else {
			state.Counts = counts
		}
	}

	return state, nil
}

// HasState reports whether a category list has ever been saved.
func (s *Store) HasState(ctx context.Context) (bool, error) {
	_, ok, err := s.get(ctx, KeyCategories)
	return ok, err
}

func (s *Store) loadList(ctx context.Context, key string, fallback []string) ([]string, error) {
	raw, ok, err := s.get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return append([]string(nil), fallback...), nil
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil || list == nil {
		slog.Warn("stored list unreadable, using defaults", "key", key, "error", err)
		return append([]string(nil), fallback...), nil
	}
	return list, nil
}

// get returns the raw value for key and whether it exists.
func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

func putTx(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// nonNil keeps an empty list serialized as [] rather than null.
func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
