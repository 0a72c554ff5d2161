package fixture

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/hitkit/internal/collect"
	"github.com/roach88/hitkit/internal/event"
	"github.com/roach88/hitkit/internal/geometry"
	"github.com/roach88/hitkit/internal/hit"
	"github.com/roach88/hitkit/internal/ir"
)

// Summary counts what Apply wrote.
type Summary struct {
	Events    int `json:"events"`
	RawDigits int `json:"raw_digits"`
	Wires     int `json:"wires"`
	Hits      int `json:"hits"`
}

// Add accumulates another summary.
func (s *Summary) Add(o Summary) {
	s.Events += o.Events
	s.RawDigits += o.RawDigits
	s.Wires += o.Wires
	s.Hits += o.Hits
}

type modules struct {
	digits, wires, hits *event.Module
	out                 collect.Output
}

// Apply writes every event of f into proc. It registers one module per
// label of f, so a process can apply only one fixture.
func Apply(ctx context.Context, proc *event.Process, geo geometry.Lookup, f *File) (Summary, error) {
	mods, err := declare(proc, f.Labels)
	if err != nil {
		return Summary{}, fmt.Errorf("apply fixture: %w", err)
	}

	var sum Summary
	for _, ev := range f.Events {
		s, err := applyEvent(ctx, mods, geo, ev)
		if err != nil {
			return sum, fmt.Errorf("apply fixture: event %s: %w", ev.ID(), err)
		}
		sum.Add(s)
	}
	return sum, nil
}

func declare(proc *event.Process, labels Labels) (modules, error) {
	var (
		m   modules
		err error
	)
	if m.digits, err = proc.Module(labels.RawDigits); err != nil {
		return m, err
	}
	if err := m.digits.DeclareRawDigits(""); err != nil {
		return m, err
	}

	if m.wires, err = proc.Module(labels.Wires); err != nil {
		return m, err
	}
	if err := m.wires.DeclareWires("", true); err != nil {
		return m, err
	}

	if m.hits, err = proc.Module(labels.Hits); err != nil {
		return m, err
	}
	m.out = collect.Output{WireAssns: labels.wireAssns(), DigitAssns: labels.digitAssns()}
	if err := collect.Declare(m.hits, m.out); err != nil {
		return m, err
	}
	return m, nil
}

func applyEvent(ctx context.Context, m modules, geo geometry.Lookup, fe Event) (Summary, error) {
	id := fe.ID()

	// Raw digits first: wires and hits point at them.
	evDigits := m.digits.Event(id)
	digits := make([]ir.RawDigit, len(fe.RawDigits))
	for i, d := range fe.RawDigits {
		digits[i] = d.toIR()
	}
	if err := evDigits.PutRawDigits(ctx, "", digits); err != nil {
		return Summary{}, err
	}
	digitPtr := func(idx *int) (ir.Ptr, error) {
		if idx == nil {
			return ir.Ptr{}, nil
		}
		return evDigits.Resolve(ir.KindRawDigits, ir.PendingRef{Index: *idx})
	}

	evWires := m.wires.Event(id)
	wires := make([]ir.Wire, len(fe.Wires))
	wireDigits := make(ir.Relations, len(fe.Wires))
	for i, w := range fe.Wires {
		wire, err := w.toIR(geo)
		if err != nil {
			return Summary{}, fmt.Errorf("wires[%d]: %w", i, err)
		}
		wires[i] = wire
		if wireDigits[i], err = digitPtr(w.RawDigit); err != nil {
			return Summary{}, err
		}
	}
	if err := evWires.PutWires(ctx, "", wires, wireDigits); err != nil {
		return Summary{}, err
	}

	evHits := m.hits.Event(id)
	c := collect.NewCreator(m.out)
	c.Reserve(len(fe.Hits))
	for i, fh := range fe.Hits {
		hc, err := buildHit(geo, fh, wires, digits)
		if err != nil {
			return Summary{}, fmt.Errorf("hits[%d]: %w", i, err)
		}

		var wirePtr, dPtr ir.Ptr
		if fh.Wire != nil {
			if wirePtr, err = evWires.Resolve(ir.KindWires, ir.PendingRef{Index: *fh.Wire}); err != nil {
				return Summary{}, err
			}
			dPtr = wireDigits[*fh.Wire]
		}
		if fh.RawDigit != nil {
			if dPtr, err = digitPtr(fh.RawDigit); err != nil {
				return Summary{}, err
			}
		}

		if err := c.AppendFrom(hc, wirePtr, dPtr); err != nil {
			return Summary{}, err
		}
	}
	n := c.Size()
	if err := c.Commit(ctx, evHits); err != nil {
		return Summary{}, err
	}

	slog.Debug("fixture event applied", "event", id.String(),
		"raw_digits", len(digits), "wires", len(wires), "hits", n)
	return Summary{Events: 1, RawDigits: len(digits), Wires: len(wires), Hits: n}, nil
}

// buildHit picks the record builder flavor the fixture entry calls for.
func buildHit(geo geometry.Lookup, fh Hit, wires []ir.Wire, digits []ir.RawDigit) (*hit.Creator, error) {
	p := fh.params()

	if fh.Wire == nil {
		return hit.FromRawDigit(geo, digits[*fh.RawDigit], p)
	}

	wire := wires[*fh.Wire]
	switch {
	case fh.ROI != nil:
		if fh.SummedADC == nil && *fh.ROI < len(wire.ROIs) {
			roi := wire.ROIs[*fh.ROI]
			p.SummedADC = wire.Sum(roi.Begin, roi.End())
		}
		return hit.FromROIIndex(geo, wire, *fh.ROI, p)
	case fh.SummedADC == nil:
		return hit.FromWireSummed(geo, wire, p)
	default:
		return hit.FromWire(geo, wire, p)
	}
}

// toIR converts the wire, taking the view from the geometry unless the
// fixture overrides it.
func (w Wire) toIR(geo geometry.Lookup) (ir.Wire, error) {
	ch := ir.ChannelID(w.Channel)
	wire := ir.Wire{Channel: ch, NSamples: w.NSamples}

	if w.View != "" {
		v, err := ir.ParseView(w.View)
		if err != nil {
			return ir.Wire{}, err
		}
		wire.View = v
	} else {
		info, err := geo.Resolve(ch)
		if err != nil {
			return ir.Wire{}, err
		}
		wire.View = info.View
	}

	if len(w.ROIs) > 0 {
		wire.ROIs = make([]ir.ROI, len(w.ROIs))
		for i, r := range w.ROIs {
			wire.ROIs[i] = r.toIR()
		}
	}
	return wire, nil
}
