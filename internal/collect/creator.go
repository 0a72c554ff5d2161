package collect

import (
	"fmt"

	"github.com/roach88/hitkit/internal/hit"
	"github.com/roach88/hitkit/internal/ir"
)

// Creator builds a hit collection one hit at a time, with the relation
// targets of each hit supplied alongside it.
//
// Targets that are not valid pointers leave the relation empty. Not every
// hit has a source (noise removal, for example), so this is not an error.
type Creator struct {
	*State
}

// NewCreator returns an empty Creator for out.
func NewCreator(out Output) *Creator {
	return &Creator{State: NewState(out)}
}

// Append adds h related to wire and digit.
func (c *Creator) Append(h ir.Hit, wire, digit ir.Ptr) {
	c.push(h, wire, digit)
}

// AppendWire adds h related to wire only.
func (c *Creator) AppendWire(h ir.Hit, wire ir.Ptr) {
	c.push(h, wire, ir.Ptr{})
}

// AppendDigit adds h related to digit only.
func (c *Creator) AppendDigit(h ir.Hit, digit ir.Ptr) {
	c.push(h, ir.Ptr{}, digit)
}

// AppendFrom moves the hit out of hc and appends it. A spent creator is
// an error and nothing is appended.
func (c *Creator) AppendFrom(hc *hit.Creator, wire, digit ir.Ptr) error {
	h, err := hc.Move()
	if err != nil {
		return fmt.Errorf("append to %q: %w", c.out.Instance, err)
	}
	c.push(h, wire, digit)
	return nil
}

// AppendCopyFrom appends a copy of the hit held by hc, which stays usable.
func (c *Creator) AppendCopyFrom(hc *hit.Creator, wire, digit ir.Ptr) error {
	h, err := hc.Copy()
	if err != nil {
		return fmt.Errorf("append to %q: %w", c.out.Instance, err)
	}
	c.push(h, wire, digit)
	return nil
}

// Reserve makes room for n more hits. It has no other effect.
func (c *Creator) Reserve(n int) {
	if n > 0 {
		c.reserve(n)
	}
}
