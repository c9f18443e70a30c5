package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// FlowTokenGenerator produces the identifier assigned to a newly
// deployed flow. Grounded on the teacher's engine/flow.go: a flow
// token is a UUIDv7 in production (time-sortable, so flow ids collate
// by submission order) and a fixed sequence in tests.
type FlowTokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable flow tokens.
type UUIDv7Generator struct{}

func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns a pre-determined sequence of tokens, each once
// and in order; it does not cycle back to the first token. Used by
// tests for deterministic flow ids across runs.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator constructs a FixedGenerator over tokens.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next token in sequence, panicking if the
// sequence is exhausted — a test bug, not a runtime condition.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.tokens) {
		panic(fmt.Sprintf("engine: FixedGenerator exhausted after %d tokens", len(g.tokens)))
	}
	tok := g.tokens[g.idx]
	g.idx++
	return tok
}
