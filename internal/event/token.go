package event

import "github.com/google/uuid"

// TokenGenerator produces the token that tags every product a process writes.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 process tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, so products of
// later runs sort after earlier ones when listed by token.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
