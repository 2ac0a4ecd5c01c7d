package cli

import (
	"context"
	"log/slog"

	"github.com/roach88/fillertally/internal/config"
	"github.com/roach88/fillertally/internal/store"
	"github.com/roach88/fillertally/internal/tally"
)

// workspace is an open store and the engine loaded from it.
type workspace struct {
	cfg    *config.Config
	store  *store.Store
	engine *tally.Engine
}

// openWorkspace opens the configured database and loads the engine.
// Missing or unreadable stored lists fall back to the configured defaults.
func openWorkspace(ctx context.Context, cfg *config.Config) (*workspace, error) {
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	state, err := st.Load(ctx, defaultsFrom(cfg))
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load state", err)
	}
	if !cfg.PersistCounts {
		state.Counts = nil
	}

	eng := tally.New(state,
		tally.WithCatchAll(cfg.CatchAll),
		tally.WithLogger(slog.Default()),
	)
	slog.Debug("workspace loaded",
		"db", cfg.Database,
		"categories", len(state.Categories),
		"speakers", len(state.Speakers),
	)
	return &workspace{cfg: cfg, store: st, engine: eng}, nil
}

// defaultsFrom turns config defaults into store fallbacks.
func defaultsFrom(cfg *config.Config) store.Defaults {
	return store.Defaults{
		CatchAll:   cfg.CatchAll,
		Categories: cfg.DefaultCategories,
		Speakers:   cfg.DefaultSpeakers,
	}
}

// save writes the engine through to the store. Counts are included only
// when persist_counts is set.
func (w *workspace) save(ctx context.Context) error {
	state := w.engine.Snapshot().State()
	if !w.cfg.PersistCounts {
		state.Counts = nil
	}
	if err := w.store.Save(ctx, state); err != nil {
		return WrapExitError(ExitCommandError, "failed to save state", err)
	}
	return nil
}

func (w *workspace) Close() {
	if err := w.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
