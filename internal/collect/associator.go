package collect

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring"

	"github.com/roach88/hitkit/internal/ir"
)

// AssociatorConfig selects the source collections an Associator matches
// hits against. An empty tag disables that relation kind for every hit.
type AssociatorConfig struct {
	// Wires selects the wire collection.
	Wires ir.InputTag

	// RawDigits selects the raw digit collection. Ignored when DigitsViaWires.
	RawDigits ir.InputTag

	// DigitsViaWires takes each hit's raw digit from the wire→raw digit
	// relations stored with Wires instead of matching RawDigits by channel.
	DigitsViaWires bool
}

// Associator commits a collection built elsewhere, deriving its relation
// tables by channel.
//
// A hit on a channel without a source object gets no relation; partial
// coverage is expected and only reported as a warning. When several wires
// share a channel the first one in collection order is used.
type Associator struct {
	*State
	src Source
	cfg AssociatorConfig
}

// NewAssociator returns an Associator for out that reads sources from src.
func NewAssociator(out Output, src Source, cfg AssociatorConfig) *Associator {
	return &Associator{State: NewState(out), src: src, cfg: cfg}
}

// UseHits installs hits as the collection to commit, discarding whatever
// was held before.
func (a *Associator) UseHits(hits []ir.Hit) {
	a.replace(hits)
}

// Commit derives the relation tables and hands everything to sink.
func (a *Associator) Commit(ctx context.Context, sink Sink) error {
	return a.commit(ctx, sink, a)
}

func (a *Associator) populate(ctx context.Context, s *State) error {
	var (
		wantWires  = s.out.WireAssns && !a.cfg.Wires.Empty()
		viaWires   = s.out.DigitAssns && a.cfg.DigitsViaWires && !a.cfg.Wires.Empty()
		wantDigits = s.out.DigitAssns && !a.cfg.DigitsViaWires && !a.cfg.RawDigits.Empty()
	)

	var (
		wires      ir.Collection[ir.Wire]
		wireIdx    channelIndex
		wireDigits ir.Relations
	)
	if wantWires || viaWires {
		var err error
		wires, err = a.src.Wires(ctx, a.cfg.Wires)
		if err != nil {
			return fmt.Errorf("associate wires %s: %w", a.cfg.Wires, err)
		}
		wireIdx = indexChannels(wires.Items, func(w ir.Wire) ir.ChannelID { return w.Channel })
		warnChannels("several wires on one channel, using the first", wireIdx.shared(),
			"wires", a.cfg.Wires.String())
	}
	if viaWires {
		var err error
		wireDigits, err = a.src.Relations(ctx, a.cfg.Wires, ir.RelWireRawDigit)
		if err != nil {
			return fmt.Errorf("associate raw digits via %s: %w", a.cfg.Wires, err)
		}
	}

	var (
		digits   ir.Collection[ir.RawDigit]
		digitIdx channelIndex
	)
	if wantDigits {
		var err error
		digits, err = a.src.RawDigits(ctx, a.cfg.RawDigits)
		if err != nil {
			return fmt.Errorf("associate raw digits %s: %w", a.cfg.RawDigits, err)
		}
		digitIdx = indexChannels(digits.Items, func(d ir.RawDigit) ir.ChannelID { return d.Channel })
	}

	var wireRel, digitRel ir.Relations
	if s.out.WireAssns {
		wireRel = make(ir.Relations, len(s.hits))
	}
	if s.out.DigitAssns {
		digitRel = make(ir.Relations, len(s.hits))
	}

	noWire, noDigit := roaring.New(), roaring.New()
	for i, h := range s.hits {
		if wireIdx != nil {
			k, ok := wireIdx.first(h.Channel)
			if !ok {
				noWire.Add(uint32(h.Channel))
			} else {
				if wantWires {
					wireRel[i] = wires.Ptr(k)
				}
				if viaWires {
					if p, ok := wireDigits.Target(k); ok {
						digitRel[i] = p
					} else {
						noDigit.Add(uint32(h.Channel))
					}
				}
			}
		}
		if digitIdx != nil {
			if k, ok := digitIdx.first(h.Channel); ok {
				digitRel[i] = digits.Ptr(k)
			} else {
				noDigit.Add(uint32(h.Channel))
			}
		}
	}

	warnChannels("no wire for hit channels", noWire,
		"output", s.out.Instance, "wires", a.cfg.Wires.String())
	warnChannels("no raw digit for hit channels", noDigit,
		"output", s.out.Instance, "raw_digits", a.digitSource())

	s.wires, s.digits = wireRel, digitRel
	return nil
}

func (a *Associator) digitSource() string {
	if a.cfg.DigitsViaWires {
		return a.cfg.Wires.String()
	}
	return a.cfg.RawDigits.String()
}
