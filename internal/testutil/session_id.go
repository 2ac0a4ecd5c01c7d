package testutil

// FixedSessionIDGenerator returns the same session id every time.
//
// Sessions normally get a UUIDv7 id. Tests pin it so journal rows and
// golden output are byte-identical across runs.
//
// Thread-safety: FixedSessionIDGenerator is stateless and safe for concurrent use.
type FixedSessionIDGenerator struct {
	id string
}

// NewFixedSessionIDGenerator creates a generator for the given id.
// If id is empty, Generate() returns "test-session-default".
func NewFixedSessionIDGenerator(id string) *FixedSessionIDGenerator {
	if id == "" {
		id = "test-session-default"
	}
	return &FixedSessionIDGenerator{id: id}
}

// Generate returns the fixed session id.
//
// Implements session.IDGenerator.
func (g *FixedSessionIDGenerator) Generate() string {
	return g.id
}
