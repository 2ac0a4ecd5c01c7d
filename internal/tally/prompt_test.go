package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompt_ResolveAndIncrement(t *testing.T) {
	e := newTestEngine(t)
	p := NewPrompt(e)
	assert.Equal(t, PromptStateIdle, p.State())

	require.NoError(t, p.Begin("Steve"))
	assert.Equal(t, PromptStateAwaitingLabel, p.State())
	assert.Equal(t, "Steve", p.Speaker())

	cat, n, err := p.Submit("Actually")
	require.NoError(t, err)
	assert.Equal(t, "Actually", cat)
	assert.Equal(t, 1, n)
	assert.Equal(t, PromptStateIdle, p.State())

	snap := e.Snapshot()
	assert.Equal(t, []string{"Ah", "Um", "Actually", "Other"}, snap.Categories)
	assert.Equal(t, 1, snap.Count("Steve", "Actually"))
	assert.Equal(t, 0, snap.Count("Steve", "Other"))
}

func TestPrompt_EmptySubmitCancels(t *testing.T) {
	e := newTestEngine(t)
	p := NewPrompt(e)
	before := e.Snapshot()

	require.NoError(t, p.Begin("Dave"))
	cat, n, err := p.Submit("   ")
	require.NoError(t, err)
	assert.Empty(t, cat)
	assert.Zero(t, n)
	assert.Equal(t, PromptStateIdle, p.State())
	assert.Equal(t, before, e.Snapshot())
}

func TestPrompt_Cancel(t *testing.T) {
	e := newTestEngine(t)
	p := NewPrompt(e)

	require.NoError(t, p.Begin("Dave"))
	p.Cancel()
	assert.Equal(t, PromptStateIdle, p.State())
	assert.Empty(t, p.Speaker())

	_, _, err := p.Submit("Like")
	assert.Equal(t, ErrPromptIdle, KindOf(err))
}

func TestPrompt_BeginErrors(t *testing.T) {
	e := newTestEngine(t)
	p := NewPrompt(e)

	err := p.Begin("Nobody")
	assert.Equal(t, ErrUnknownSpeaker, KindOf(err))
	assert.Equal(t, PromptStateIdle, p.State())

	require.NoError(t, p.Begin("Steve"))
	err = p.Begin("Dave")
	assert.Equal(t, ErrPromptBusy, KindOf(err))
	assert.Equal(t, "Steve", p.Speaker(), "pending speaker unchanged")
}

func TestPrompt_SpeakerRemovedWhileAwaiting(t *testing.T) {
	e := newTestEngine(t)
	p := NewPrompt(e)

	require.NoError(t, p.Begin("Dave"))
	require.NoError(t, e.RemoveSpeaker("Dave"))

	_, _, err := p.Submit("Actually")
	assert.Equal(t, ErrUnknownSpeaker, KindOf(err))
	assert.Equal(t, PromptStateIdle, p.State())
	assert.Equal(t, []string{"Ah", "Um", "Other"}, e.Snapshot().Categories, "no category created")
}

func TestPrompt_SubmitCatchAllLabel(t *testing.T) {
	e := newTestEngine(t)
	p := NewPrompt(e)

	require.NoError(t, p.Begin("Steve"))
	_, _, err := p.Submit("other")
	assert.Equal(t, ErrInvalidLabel, KindOf(err))
	assert.Equal(t, PromptStateIdle, p.State())
	assert.Equal(t, 0, e.Snapshot().GrandTotal)
}

func TestPromptState_String(t *testing.T) {
	assert.Equal(t, "Idle", PromptStateIdle.String())
	assert.Equal(t, "AwaitingCustomLabel", PromptStateAwaitingLabel.String())
	assert.Equal(t, "Unknown", PromptState(9).String())
}
