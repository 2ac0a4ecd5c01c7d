package tally

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(State{
		Categories: []string{"Ah", "Um", "Other"},
		Speakers:   []string{"Steve", "Dave"},
	})
}

// requireTotalsConsistent checks total(s) == Σ_c count(s,c) for every speaker.
func requireTotalsConsistent(t *testing.T, e *Engine) {
	t.Helper()
	snap := e.Snapshot()
	for _, s := range snap.Speakers {
		sum := 0
		for _, c := range snap.Categories {
			sum += snap.Count(s, c)
		}
		total, err := e.Total(s)
		require.NoError(t, err)
		require.Equal(t, sum, total, "total for %s", s)
		require.Equal(t, sum, snap.Totals[s], "snapshot total for %s", s)
	}
}

func TestEngine_IncrementDecrementScenario(t *testing.T) {
	e := newTestEngine(t)

	n, err := e.Increment("Steve", "Ah")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	total, err := e.Total("Steve")
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	ah, err := e.CategoryTotal("Ah")
	require.NoError(t, err)
	assert.Equal(t, 1, ah)

	um, err := e.CategoryTotal("Um")
	require.NoError(t, err)
	assert.Equal(t, 0, um)

	n, err = e.Decrement("Steve", "Ah")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = e.Decrement("Steve", "Ah")
	require.NoError(t, err, "decrement below zero is not an error")
	assert.Equal(t, 0, n)

	total, err = e.Total("Steve")
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestEngine_DecrementConvergesToZero(t *testing.T) {
	e := newTestEngine(t)
	for i := 0; i < 3; i++ {
		_, err := e.Increment("Dave", "Um")
		require.NoError(t, err)
	}

	for i := 0; i < 10; i++ {
		n, err := e.Decrement("Dave", "Um")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)
	}

	n, err := e.Count("Dave", "Um")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestEngine_IncrementUnknown(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Increment("Nobody", "Ah")
	assert.True(t, IsKind(err, ErrUnknownSpeaker))

	_, err = e.Increment("Steve", "Hmm")
	assert.True(t, IsKind(err, ErrUnknownCategory))

	_, err = e.Decrement("Nobody", "Ah")
	assert.True(t, IsKind(err, ErrUnknownSpeaker))

	_, err = e.Decrement("Steve", "Hmm")
	assert.True(t, IsKind(err, ErrUnknownCategory))

	assert.Equal(t, 0, e.Snapshot().GrandTotal)
}

func TestEngine_IncrementCatchAllRequiresResolution(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Increment("Steve", "Other")
	require.Error(t, err)
	assert.Equal(t, ErrCatchAllUnresolved, KindOf(err))

	_, err = e.Increment("Steve", "other")
	assert.Equal(t, ErrCatchAllUnresolved, KindOf(err), "catch-all matches in any case")

	assert.Equal(t, 0, e.Snapshot().Count("Steve", "Other"))
}

func TestEngine_ResolveCatchAllCreatesBeforeCatchAll(t *testing.T) {
	e := newTestEngine(t)

	cat, err := e.ResolveCatchAll("Actually")
	require.NoError(t, err)
	assert.Equal(t, "Actually", cat)

	n, err := e.Increment("Steve", cat)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	snap := e.Snapshot()
	assert.Equal(t, []string{"Ah", "Um", "Actually", "Other"}, snap.Categories)
	assert.Equal(t, 1, snap.Count("Steve", "Actually"))
	assert.Equal(t, 0, snap.Count("Dave", "Actually"))

	// Idempotent on label identity.
	again, err := e.ResolveCatchAll("  Actually ")
	require.NoError(t, err)
	assert.Equal(t, "Actually", again)
	assert.Equal(t, []string{"Ah", "Um", "Actually", "Other"}, slices.Collect(e.Categories()))
}

func TestEngine_ResolveCatchAllReusesExisting(t *testing.T) {
	e := newTestEngine(t)

	cat, err := e.ResolveCatchAll("Um")
	require.NoError(t, err)
	assert.Equal(t, "Um", cat)
	assert.Equal(t, []string{"Ah", "Um", "Other"}, e.Snapshot().Categories)
}

func TestEngine_ResolveCatchAllRejectsInvalid(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.ResolveCatchAll("   ")
	assert.True(t, IsKind(err, ErrInvalidLabel))

	_, err = e.ResolveCatchAll("OTHER")
	assert.True(t, IsKind(err, ErrInvalidLabel))

	assert.Equal(t, []string{"Ah", "Um", "Other"}, e.Snapshot().Categories)
}

func TestEngine_AddCategoryDuplicate(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.AddCategory("Like")
	require.NoError(t, err)
	before := e.Snapshot()

	_, err = e.AddCategory("Like")
	require.Error(t, err)
	assert.Equal(t, ErrDuplicateCategory, KindOf(err))
	assert.Equal(t, before, e.Snapshot(), "failed add leaves state unchanged")

	_, err = e.AddCategory("like")
	assert.NoError(t, err, "uniqueness is case-sensitive")
}

func TestEngine_AddCategorySeedsSpeakers(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.AddCategory("So")
	require.NoError(t, err)

	snap := e.Snapshot()
	for _, s := range snap.Speakers {
		n, ok := snap.Counts[s]["So"]
		assert.True(t, ok, "speaker %s has entry", s)
		assert.Equal(t, 0, n)
	}
	assert.Equal(t, []string{"Ah", "Um", "So", "Other"}, snap.Categories)
}

func TestEngine_RemoveCategoryAdjustsTotals(t *testing.T) {
	e := newTestEngine(t)
	for i := 0; i < 2; i++ {
		_, err := e.Increment("Steve", "Ah")
		require.NoError(t, err)
	}
	_, err := e.Increment("Steve", "Um")
	require.NoError(t, err)
	_, err = e.Increment("Dave", "Ah")
	require.NoError(t, err)

	steveBefore, _ := e.Total("Steve")
	daveBefore, _ := e.Total("Dave")

	require.NoError(t, e.RemoveCategory("Ah"))

	steveAfter, _ := e.Total("Steve")
	daveAfter, _ := e.Total("Dave")
	assert.Equal(t, steveBefore-2, steveAfter)
	assert.Equal(t, daveBefore-1, daveAfter)

	snap := e.Snapshot()
	for _, s := range snap.Speakers {
		_, ok := snap.Counts[s]["Ah"]
		assert.False(t, ok, "speaker %s still has removed entry", s)
	}
	_, err = e.CategoryTotal("Ah")
	assert.True(t, IsKind(err, ErrUnknownCategory))
	requireTotalsConsistent(t, e)
}

func TestEngine_RemoveCategoryErrors(t *testing.T) {
	e := newTestEngine(t)

	err := e.RemoveCategory("Other")
	assert.Equal(t, ErrCannotRemoveCatchAll, KindOf(err))

	err = e.RemoveCategory("other")
	assert.Equal(t, ErrCannotRemoveCatchAll, KindOf(err))

	err = e.RemoveCategory("Hmm")
	assert.Equal(t, ErrNotFound, KindOf(err))

	assert.Equal(t, []string{"Ah", "Um", "Other"}, e.Snapshot().Categories)
}

func TestEngine_SpeakerLifecycle(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Increment("Dave", "Um")
	require.NoError(t, err)

	require.NoError(t, e.RemoveSpeaker("Dave"))
	_, err = e.Total("Dave")
	assert.True(t, IsKind(err, ErrUnknownSpeaker))

	name, err := e.AddSpeaker("Dave")
	require.NoError(t, err)
	assert.Equal(t, "Dave", name)

	snap := e.Snapshot()
	assert.Equal(t, []string{"Steve", "Dave"}, snap.Speakers)
	for _, c := range snap.Categories {
		assert.Equal(t, 0, snap.Count("Dave", c), "category %s", c)
	}
	assert.Equal(t, 0, snap.Totals["Dave"])
}

func TestEngine_AddSpeakerErrors(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.AddSpeaker("  ")
	assert.Equal(t, ErrInvalidLabel, KindOf(err))

	_, err = e.AddSpeaker("Steve")
	assert.Equal(t, ErrDuplicateSpeaker, KindOf(err))

	err = e.RemoveSpeaker("Nobody")
	assert.Equal(t, ErrNotFound, KindOf(err))

	assert.Equal(t, []string{"Steve", "Dave"}, slices.Collect(e.Speakers()))
}

func TestEngine_ResetAll(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Increment("Steve", "Ah")
	require.NoError(t, err)
	_, err = e.Increment("Dave", "Um")
	require.NoError(t, err)
	before := e.Snapshot()

	e.ResetAll()

	after := e.Snapshot()
	assert.Equal(t, before.Categories, after.Categories)
	assert.Equal(t, before.Speakers, after.Speakers)
	assert.Equal(t, 0, after.GrandTotal)
	for _, s := range after.Speakers {
		assert.Equal(t, 0, after.Totals[s])
	}
	for _, c := range after.Categories {
		assert.Equal(t, 0, after.CategoryTotals[c])
	}
}

func TestEngine_SnapshotIsACopy(t *testing.T) {
	e := newTestEngine(t)
	snap := e.Snapshot()

	snap.Categories[0] = "mutated"
	snap.Counts["Steve"]["Ah"] = 99
	snap.Speakers = append(snap.Speakers, "Ghost")

	fresh := e.Snapshot()
	assert.Equal(t, "Ah", fresh.Categories[0])
	assert.Equal(t, 0, fresh.Count("Steve", "Ah"))
	assert.Equal(t, []string{"Steve", "Dave"}, fresh.Speakers)
}

func TestEngine_NewRepairsState(t *testing.T) {
	e := New(State{
		Categories: []string{"Ah", "", "Ah", "Um"},
		Speakers:   []string{"Steve", " ", "Steve", "Khan"},
	})

	snap := e.Snapshot()
	assert.Equal(t, []string{"Ah", "Um", "Other"}, snap.Categories, "catch-all appended")
	assert.Equal(t, []string{"Steve", "Khan"}, snap.Speakers)
}

func TestEngine_CustomCatchAll(t *testing.T) {
	e := New(State{Categories: []string{"Ah"}, Speakers: []string{"Len"}}, WithCatchAll("Custom"))

	assert.Equal(t, "Custom", e.CatchAll())
	assert.True(t, e.IsCatchAll("custom"))
	assert.Equal(t, []string{"Ah", "Custom"}, e.Snapshot().Categories)
	assert.Equal(t, ErrCannotRemoveCatchAll, KindOf(e.RemoveCategory("Custom")))
}

func TestEngine_RestoreCounts(t *testing.T) {
	e := New(State{
		Categories: []string{"Ah", "Um", "Other"},
		Speakers:   []string{"Steve", "Dave"},
		Counts: map[string]map[string]int{
			"Steve": {"Ah": 3, "Um": -2, "Gone": 7},
			"Ghost": {"Ah": 1},
		},
	})

	snap := e.Snapshot()
	assert.Equal(t, 3, snap.Count("Steve", "Ah"))
	assert.Equal(t, 0, snap.Count("Steve", "Um"), "negative clamped")
	assert.Equal(t, 3, snap.Totals["Steve"])
	assert.NotContains(t, snap.Speakers, "Ghost")
	_, ok := snap.Counts["Steve"]["Gone"]
	assert.False(t, ok)
	requireTotalsConsistent(t, e)
}

func TestEngine_NormalizesLabels(t *testing.T) {
	e := newTestEngine(t)

	decomposed := "Cafe\u0301"
	composed := "Caf\u00e9"

	_, err := e.AddCategory(decomposed)
	require.NoError(t, err)

	_, err = e.AddCategory(composed)
	assert.Equal(t, ErrDuplicateCategory, KindOf(err))

	n, err := e.Increment(" Steve ", composed)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEngine_ConcurrentIncrements(t *testing.T) {
	e := newTestEngine(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.Increment("Steve", "Ah")
		}()
	}
	wg.Wait()

	n, err := e.Count("Steve", "Ah")
	require.NoError(t, err)
	assert.Equal(t, 50, n)
	requireTotalsConsistent(t, e)
}

func TestEngine_TotalsConsistentAcrossOperations(t *testing.T) {
	e := newTestEngine(t)

	ops := []func() error{
		func() error { _, err := e.Increment("Steve", "Ah"); return err },
		func() error { _, err := e.Increment("Dave", "Um"); return err },
		func() error { _, err := e.AddCategory("Like"); return err },
		func() error { _, err := e.Increment("Dave", "Like"); return err },
		func() error { return e.RemoveCategory("Um") },
		func() error { _, err := e.AddSpeaker("Khan"); return err },
		func() error { _, err := e.Increment("Khan", "Like"); return err },
		func() error { return e.RemoveSpeaker("Steve") },
		func() error { _, err := e.Decrement("Dave", "Like"); return err },
	}
	for i, op := range ops {
		require.NoError(t, op(), "op %d", i)
		requireTotalsConsistent(t, e)
	}
}
