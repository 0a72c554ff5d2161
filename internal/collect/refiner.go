package collect

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring"

	"github.com/roach88/hitkit/internal/ir"
)

// Refiner commits a collection whose hits refine the hits of a stored
// collection, carrying over that collection's relations by channel.
//
// Hits cannot be related to hits directly, so the channel is the only key
// that survives refinement. If two stored hits on one channel point to
// different targets there is no way to tell which one a new hit inherits,
// and Commit fails with an ambiguous refinement error.
type Refiner struct {
	*State
	src  Source
	from ir.InputTag
}

// NewRefiner returns a Refiner for out that inherits relations from the
// hit collection selected by from.
func NewRefiner(out Output, src Source, from ir.InputTag) *Refiner {
	return &Refiner{State: NewState(out), src: src, from: from}
}

// UseHits installs hits as the collection to commit, discarding whatever
// was held before.
func (r *Refiner) UseHits(hits []ir.Hit) {
	r.replace(hits)
}

// Commit carries relations over and hands everything to sink.
func (r *Refiner) Commit(ctx context.Context, sink Sink) error {
	return r.commit(ctx, sink, r)
}

// inherited holds the targets the stored hits of one channel agree on.
type inherited struct {
	wire, digit ir.Ptr
}

func (r *Refiner) populate(ctx context.Context, s *State) error {
	if !s.out.WireAssns && !s.out.DigitAssns {
		return nil
	}

	old, err := r.src.Hits(ctx, r.from)
	if err != nil {
		return fmt.Errorf("refine from %s: %w", r.from, err)
	}

	var oldWires, oldDigits ir.Relations
	if s.out.WireAssns {
		if oldWires, err = r.src.Relations(ctx, r.from, ir.RelHitWire); err != nil {
			return fmt.Errorf("refine from %s: %w", r.from, err)
		}
	}
	if s.out.DigitAssns {
		if oldDigits, err = r.src.Relations(ctx, r.from, ir.RelHitRawDigit); err != nil {
			return fmt.Errorf("refine from %s: %w", r.from, err)
		}
	}

	byChannel, err := r.inherit(old.Items, oldWires, oldDigits)
	if err != nil {
		return err
	}

	var wireRel, digitRel ir.Relations
	if s.out.WireAssns {
		wireRel = make(ir.Relations, len(s.hits))
	}
	if s.out.DigitAssns {
		digitRel = make(ir.Relations, len(s.hits))
	}

	unrelated := roaring.New()
	for i, h := range s.hits {
		t, ok := byChannel[h.Channel]
		if !ok || (!t.wire.Valid() && !t.digit.Valid()) {
			unrelated.Add(uint32(h.Channel))
			continue
		}
		if wireRel != nil {
			wireRel[i] = t.wire
		}
		if digitRel != nil {
			digitRel[i] = t.digit
		}
	}

	warnChannels("no stored relation for refined hit channels", unrelated,
		"output", s.out.Instance, "from", r.from.String())

	s.wires, s.digits = wireRel, digitRel
	return nil
}

// inherit builds the channel → targets map from the stored hits. An absent
// target next to a present one is not a conflict; two different present
// targets are.
func (r *Refiner) inherit(old []ir.Hit, wires, digits ir.Relations) (map[ir.ChannelID]inherited, error) {
	byChannel := make(map[ir.ChannelID]inherited, len(old))
	wireConflicts, digitConflicts := roaring.New(), roaring.New()

	for i, h := range old {
		t := byChannel[h.Channel]
		if p, ok := wires.Target(i); ok {
			if t.wire.Valid() && t.wire != p {
				wireConflicts.Add(uint32(h.Channel))
			} else {
				t.wire = p
			}
		}
		if p, ok := digits.Target(i); ok {
			if t.digit.Valid() && t.digit != p {
				digitConflicts.Add(uint32(h.Channel))
			} else {
				t.digit = p
			}
		}
		byChannel[h.Channel] = t
	}

	if !wireConflicts.IsEmpty() {
		return nil, newAmbiguousError(r.Output().Instance, "wire", wireConflicts)
	}
	if !digitConflicts.IsEmpty() {
		return nil, newAmbiguousError(r.Output().Instance, "raw digit", digitConflicts)
	}
	return byChannel, nil
}
