package collect

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/hitkit/internal/ir"
)

// Output names a hit collection instance and fixes which relation tables
// it carries. It does not change for the lifetime of a State.
type Output struct {
	Instance   string
	WireAssns  bool // hit→wire relation table
	DigitAssns bool // hit→raw digit relation table
}

// Declarer registers outputs before any processing unit is handled.
type Declarer interface {
	DeclareOutput(instance string, wireAssns, digitAssns bool) error
}

// Sink receives finished collections.
//
// wires and digits are nil when the output does not carry that relation
// table; otherwise they have exactly len(hits) entries.
type Sink interface {
	Commit(ctx context.Context, out Output, hits []ir.Hit, wires, digits ir.Relations) error
}

// Source retrieves collections written by earlier processing stages.
//
// Relations returns the relation table of the given kind stored next to
// the collection selected by tag, index-aligned with that collection.
type Source interface {
	Wires(ctx context.Context, tag ir.InputTag) (ir.Collection[ir.Wire], error)
	RawDigits(ctx context.Context, tag ir.InputTag) (ir.Collection[ir.RawDigit], error)
	Hits(ctx context.Context, tag ir.InputTag) (ir.Collection[ir.Hit], error)
	Relations(ctx context.Context, tag ir.InputTag, kind ir.RelationKind) (ir.Relations, error)
}

// Declare registers out with d. It must run exactly once per instance name,
// before any State for that instance commits.
func Declare(d Declarer, out Output) error {
	if err := d.DeclareOutput(out.Instance, out.WireAssns, out.DigitAssns); err != nil {
		return fmt.Errorf("declare output %q: %w", out.Instance, err)
	}
	return nil
}

// populator derives relation tables for the hits held by a State right
// before they are committed.
type populator interface {
	populate(ctx context.Context, s *State) error
}

// State is the in-progress hit collection plus its relation tables.
//
// INVARIANTS:
//   - wires/digits are nil when the output does not carry them
//   - enabled tables never hold more entries than hits; missing tail
//     entries are absent relations and are padded at commit
type State struct {
	out    Output
	hits   []ir.Hit
	wires  ir.Relations
	digits ir.Relations
}

// NewState creates an empty State for out.
func NewState(out Output) *State {
	return &State{out: out}
}

// Output returns the output this state commits to.
func (s *State) Output() Output { return s.out }

// Size returns the number of hits held. A nil State holds none.
func (s *State) Size() int {
	if s == nil {
		return 0
	}
	return len(s.hits)
}

// Peek returns a copy of the hits currently held.
func (s *State) Peek() []ir.Hit {
	if s == nil {
		return nil
	}
	return slices.Clone(s.hits)
}

// Ref returns the opaque reference of hit i. It turns into a real pointer
// only once the sink has committed the collection.
func (s *State) Ref(i int) (ir.PendingRef, bool) {
	if i < 0 || i >= s.Size() {
		return ir.PendingRef{}, false
	}
	return ir.PendingRef{Output: s.out.Instance, Index: i}, true
}

// Commit hands the hits and relation tables to sink and leaves the state
// empty. Committing an empty state hands over empty containers.
func (s *State) Commit(ctx context.Context, sink Sink) error {
	return s.commit(ctx, sink, nil)
}

func (s *State) commit(ctx context.Context, sink Sink, fill populator) error {
	if fill != nil && len(s.hits) > 0 {
		if err := fill.populate(ctx, s); err != nil {
			return fmt.Errorf("commit %q: %w", s.out.Instance, err)
		}
	}

	hits := s.hits
	if hits == nil {
		hits = []ir.Hit{}
	}
	wires := s.aligned(s.out.WireAssns, s.wires)
	digits := s.aligned(s.out.DigitAssns, s.digits)

	slog.Debug("committing hits",
		"output", s.out.Instance,
		"hits", len(hits),
		"wire_relations", wires.Present(),
		"digit_relations", digits.Present(),
	)

	if err := sink.Commit(ctx, s.out, hits, wires, digits); err != nil {
		return fmt.Errorf("commit %q: %w", s.out.Instance, err)
	}

	s.hits, s.wires, s.digits = nil, nil, nil
	return nil
}

// aligned pads an enabled relation table to the number of hits.
func (s *State) aligned(enabled bool, rel ir.Relations) ir.Relations {
	if !enabled {
		return nil
	}
	out := make(ir.Relations, len(s.hits))
	copy(out, rel)
	return out
}

// push appends one hit with its relation targets. Invalid targets are
// stored as absent.
func (s *State) push(h ir.Hit, wire, digit ir.Ptr) {
	s.hits = append(s.hits, h)
	if s.out.WireAssns {
		s.wires = append(s.wires, orAbsent(wire))
	}
	if s.out.DigitAssns {
		s.digits = append(s.digits, orAbsent(digit))
	}
}

// replace installs an externally built collection and drops every relation.
func (s *State) replace(hits []ir.Hit) {
	s.hits = hits
	s.wires, s.digits = nil, nil
}

func (s *State) reserve(n int) {
	s.hits = slices.Grow(s.hits, n)
	if s.out.WireAssns {
		s.wires = slices.Grow(s.wires, n)
	}
	if s.out.DigitAssns {
		s.digits = slices.Grow(s.digits, n)
	}
}

func orAbsent(p ir.Ptr) ir.Ptr {
	if !p.Valid() {
		return ir.Ptr{}
	}
	return p
}
