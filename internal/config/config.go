// Package config loads tally configuration from a CUE file.
//
// The file is unified with an embedded #Config schema that carries every
// default, so an empty or missing file yields a complete configuration.
// The schema is closed: unknown fields are rejected with their position.
//
// Example tally.cue:
//
//	database:       "meetings.db"
//	persist_counts: true
//	default_speakers: ["Steve", "Dave"]
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "tally.cue"

// Environment variables that override file values.
const (
	EnvConfig   = "TALLY_CONFIG"
	EnvDatabase = "TALLY_DB"
)

// Config is the decoded #Config.
type Config struct {
	Database          string   `json:"database"`
	CatchAll          string   `json:"catch_all"`
	DefaultCategories []string `json:"default_categories"`
	DefaultSpeakers   []string `json:"default_speakers"`
	PersistCounts     bool     `json:"persist_counts"`
	LogLevel          string   `json:"log_level"`
}

// Error is a configuration error with the CUE position when one is known.
type Error struct {
	Path    string
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Default returns the configuration the schema defaults produce.
func Default() (*Config, error) {
	return decode("<defaults>", nil)
}

// Load reads and validates a CUE config file.
// A missing file is not an error when path is DefaultPath; the schema
// defaults are returned instead.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && path == DefaultPath {
		slog.Debug("no config file, using defaults", "path", path)
		return Default()
	}
	if err != nil {
		return nil, &Error{Path: path, Message: fmt.Sprintf("read config: %v", err)}
	}
	return decode(path, data)
}

// ApplyEnv overrides file values with environment values found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if db, ok := lookup(EnvDatabase); ok && db != "" {
		c.Database = db
	}
}

// SlogLevel maps LogLevel to a slog.Level. The schema restricts the values,
// so anything unrecognized is treated as info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func decode(path string, data []byte) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}
	value := schema.LookupPath(cue.ParsePath("#Config"))

	if data != nil {
		file := ctx.CompileBytes(data, cue.Filename(path))
		if err := file.Err(); err != nil {
			return nil, toError(path, err)
		}
		value = value.Unify(file)
	}

	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, toError(path, err)
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return nil, toError(path, err)
	}
	return &cfg, nil
}

// toError converts the first CUE error into an Error with its line number.
func toError(path string, err error) *Error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Path: path, Message: err.Error()}
	}
	first := errs[0]
	line := 0
	if pos := first.Position(); pos.IsValid() {
		line = pos.Line()
	}
	return &Error{Path: path, Line: line, Message: first.Error()}
}
