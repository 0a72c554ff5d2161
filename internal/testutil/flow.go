package testutil

// FixedTokenGenerator generates the same process token every time.
//
// This keeps stored products byte-identical across test runs so dumps can be
// compared against golden files.
//
// Thread-safety: FixedTokenGenerator is stateless and safe for concurrent use.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator creates a new fixed token generator.
// If token is empty, Generate() returns "test-process-default".
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = "test-process-default"
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed token.
//
// Implements event.TokenGenerator interface.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}
