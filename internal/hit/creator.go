package hit

import (
	"errors"
	"fmt"

	"github.com/roach88/hitkit/internal/geometry"
	"github.com/roach88/hitkit/internal/ir"
)

var (
	// ErrExtracted is returned by a Creator whose hit was already moved out.
	ErrExtracted = errors.New("hit already extracted")

	// ErrROIOutOfRange is returned when an ROI index does not exist on the wire.
	ErrROIOutOfRange = errors.New("region of interest index out of range")
)

// Params are the measured quantities of a hit.
//
// StartTick and EndTick are ignored by the ROI constructors. WireID is
// optional: when it is not valid the wire resolved from the channel is used.
// Ticks are trusted; start < end is the caller's responsibility.
type Params struct {
	WireID             ir.WireID
	StartTick          ir.TDCTick
	EndTick            ir.TDCTick
	RMS                float32
	PeakTime           float32
	SigmaPeakTime      float32
	PeakAmplitude      float32
	SigmaPeakAmplitude float32
	Integral           float32
	SigmaIntegral      float32
	SummedADC          float32
	Multiplicity       int16
	LocalIndex         int16
	GoodnessOfFit      float32
	DOF                int
}

// Creator holds one constructed hit until it is extracted.
type Creator struct {
	hit   ir.Hit
	spent bool
}

// FromRawDigit builds a hit on the channel of a raw digit.
func FromRawDigit(geo geometry.Lookup, digit ir.RawDigit, p Params) (*Creator, error) {
	return build(geo, digit.Channel, p)
}

// FromWire builds a hit on the channel of a wire with explicit ticks and
// summed ADC.
func FromWire(geo geometry.Lookup, wire ir.Wire, p Params) (*Creator, error) {
	return build(geo, wire.Channel, p)
}

// FromWireSummed is FromWire with SummedADC computed as the wire signal
// summed over [p.StartTick, p.EndTick). p.SummedADC is ignored.
func FromWireSummed(geo geometry.Lookup, wire ir.Wire, p Params) (*Creator, error) {
	p.SummedADC = wire.Sum(p.StartTick, p.EndTick)
	return build(geo, wire.Channel, p)
}

// FromROI builds a hit whose extraction region is the given region of interest.
func FromROI(geo geometry.Lookup, wire ir.Wire, roi ir.ROI, p Params) (*Creator, error) {
	p.StartTick = roi.Begin
	p.EndTick = roi.End()
	return build(geo, wire.Channel, p)
}

// FromROIIndex is FromROI with the region picked by its index on the wire.
func FromROIIndex(geo geometry.Lookup, wire ir.Wire, index int, p Params) (*Creator, error) {
	if index < 0 || index >= len(wire.ROIs) {
		return nil, fmt.Errorf("channel %d: roi %d of %d: %w",
			wire.Channel, index, len(wire.ROIs), ErrROIOutOfRange)
	}
	return FromROI(geo, wire, wire.ROIs[index], p)
}

// FromHit copies an existing hit verbatim.
func FromHit(from ir.Hit) *Creator {
	return &Creator{hit: from}
}

// FromHitOnWire copies an existing hit onto another wire.
// Every other field, including channel and view, is kept.
func FromHitOnWire(from ir.Hit, id ir.WireID) *Creator {
	h := from
	h.WireID = id
	return &Creator{hit: h}
}

func build(geo geometry.Lookup, ch ir.ChannelID, p Params) (*Creator, error) {
	info, err := geo.Resolve(ch)
	if err != nil {
		return nil, fmt.Errorf("create hit: %w", err)
	}

	wireID := p.WireID
	if !wireID.Valid() {
		wireID = info.WireID
	}

	return &Creator{hit: ir.Hit{
		Channel:            ch,
		WireID:             wireID,
		View:               info.View,
		SignalType:         info.SignalType,
		StartTick:          p.StartTick,
		EndTick:            p.EndTick,
		RMS:                p.RMS,
		PeakTime:           p.PeakTime,
		SigmaPeakTime:      p.SigmaPeakTime,
		PeakAmplitude:      p.PeakAmplitude,
		SigmaPeakAmplitude: p.SigmaPeakAmplitude,
		Integral:           p.Integral,
		SigmaIntegral:      p.SigmaIntegral,
		SummedADC:          p.SummedADC,
		Multiplicity:       p.Multiplicity,
		LocalIndex:         p.LocalIndex,
		GoodnessOfFit:      p.GoodnessOfFit,
		DOF:                p.DOF,
	}}, nil
}

// Copy returns the hit and keeps it in the creator.
func (c *Creator) Copy() (ir.Hit, error) {
	if c.spent {
		return ir.Hit{}, ErrExtracted
	}
	return c.hit, nil
}

// Move transfers the hit out of the creator. After Move the creator is
// spent: Copy and Move both fail with ErrExtracted.
func (c *Creator) Move() (ir.Hit, error) {
	if c.spent {
		return ir.Hit{}, ErrExtracted
	}
	h := c.hit
	c.hit = ir.Hit{}
	c.spent = true
	return h, nil
}

// Spent reports whether the hit was moved out.
func (c *Creator) Spent() bool { return c.spent }
