package testutil

import (
	"fmt"
	"sync"
)

// FixedTokenGenerator returns the same call token every time.
//
// The token is typically set in the scenario YAML:
//
//	token: "test-call-00000000-0000-0000-0000-000000000001"
//
// Call IDs still differ between calls because the seq is part of the ID.
// Stateless and safe for concurrent use.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator creates a fixed token generator.
// If token is empty, Generate returns "test-call-default".
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = "test-call-default"
	}
	return &FixedTokenGenerator{token: token}
}

// Generate implements runtime.TokenGenerator.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}

// SequentialTokens returns prefix-0001, prefix-0002, ... without running out.
type SequentialTokens struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialTokens creates a generator of numbered tokens.
func NewSequentialTokens(prefix string) *SequentialTokens {
	return &SequentialTokens{prefix: prefix}
}

// Generate implements runtime.TokenGenerator.
func (g *SequentialTokens) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
