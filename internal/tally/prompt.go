package tally

import "sync"

// PromptState is the state of the catch-all interaction.
type PromptState int

const (
	// PromptStateIdle means no custom label is being collected.
	PromptStateIdle PromptState = iota
	// PromptStateAwaitingLabel means the catch-all was selected for a
	// speaker and a custom label is expected next.
	PromptStateAwaitingLabel
)

// String returns the state name.
func (s PromptState) String() string {
	switch s {
	case PromptStateIdle:
		return "Idle"
	case PromptStateAwaitingLabel:
		return "AwaitingCustomLabel"
	default:
		return "Unknown"
	}
}

// Prompt drives the two-phase catch-all interaction for one input source:
//
//	Idle -> Begin(speaker) -> AwaitingCustomLabel
//	AwaitingCustomLabel -> Submit(label) -> Idle (category resolved and incremented)
//	AwaitingCustomLabel -> Submit("") or Cancel() -> Idle (no mutation)
//
// A Prompt does not own engine state; it only remembers which speaker the
// pending label is for.
type Prompt struct {
	mu      sync.Mutex
	engine  *Engine
	state   PromptState
	speaker string
}

// NewPrompt creates an idle prompt bound to an engine.
func NewPrompt(e *Engine) *Prompt {
	return &Prompt{engine: e}
}

// State returns the current state.
func (p *Prompt) State() PromptState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Speaker returns the speaker a label is pending for, or "" when idle.
func (p *Prompt) Speaker() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speaker
}

// Begin records that the catch-all was selected for speaker.
// Fails with ErrUnknownSpeaker (state unchanged) or ErrPromptBusy when a
// label is already pending.
func (p *Prompt) Begin(speaker string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != PromptStateIdle {
		return newError(ErrPromptBusy, p.speaker)
	}
	speaker = Normalize(speaker)
	if _, err := p.engine.Total(speaker); err != nil {
		return err
	}
	p.state = PromptStateAwaitingLabel
	p.speaker = speaker
	return nil
}

// Submit completes the interaction. An empty or whitespace-only label
// cancels and returns ("", 0, nil). Otherwise the label is resolved to a
// category, that category is incremented for the pending speaker, and the
// category and new count are returned.
//
// The prompt returns to Idle whether or not Submit succeeds; a failed
// resolution mutates nothing.
func (p *Prompt) Submit(label string) (string, int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != PromptStateAwaitingLabel {
		return "", 0, newError(ErrPromptIdle, "")
	}
	speaker := p.speaker
	p.reset()

	if Normalize(label) == "" {
		return "", 0, nil
	}
	return p.engine.resolveAndIncrement(speaker, label)
}

// Cancel abandons a pending label. It is a no-op when idle.
func (p *Prompt) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

func (p *Prompt) reset() {
	p.state = PromptStateIdle
	p.speaker = ""
}

// resolveAndIncrement performs both phases under one lock so the resolved
// category cannot be removed in between. The speaker is checked first, so
// an unknown speaker never leaves a freshly created category behind.
func (e *Engine) resolveAndIncrement(speaker, label string) (string, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	speaker = Normalize(speaker)
	if !e.roster.Contains(speaker) {
		return "", 0, newError(ErrUnknownSpeaker, speaker)
	}
	category, err := e.resolveCatchAll(label)
	if err != nil {
		return "", 0, err
	}
	n := e.roster.count(speaker, category) + 1
	e.roster.setCount(speaker, category, n)
	e.logger.Debug("increment", "speaker", speaker, "category", category, "count", n, "via", "catch-all")
	return category, n, nil
}
