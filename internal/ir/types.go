package ir

import (
	"fmt"
	"math"
	"strings"
)

// ChannelID identifies a detector readout channel.
// Raw digits, wires and the hits derived from them share it.
type ChannelID uint32

// InvalidChannel marks a channel that was never set.
const InvalidChannel ChannelID = math.MaxUint32

// Valid reports whether the channel was set.
func (c ChannelID) Valid() bool { return c != InvalidChannel }

// TDCTick is a position on the digitization time axis.
type TDCTick int

// WireID identifies a physical sense wire: cryostat, TPC, plane, wire.
type WireID struct {
	Cryostat uint32 `json:"cryostat" yaml:"cryostat"`
	TPC      uint32 `json:"tpc" yaml:"tpc"`
	Plane    uint32 `json:"plane" yaml:"plane"`
	Wire     uint32 `json:"wire" yaml:"wire"`
	IsValid  bool   `json:"is_valid" yaml:"-"`
}

// NewWireID returns a valid WireID.
func NewWireID(cryostat, tpc, plane, wire uint32) WireID {
	return WireID{Cryostat: cryostat, TPC: tpc, Plane: plane, Wire: wire, IsValid: true}
}

// Valid reports whether the ID points at a wire.
// The zero WireID is invalid.
func (w WireID) Valid() bool { return w.IsValid }

// String formats the ID as "C:0 T:1 P:2 W:37".
func (w WireID) String() string {
	if !w.IsValid {
		return "<invalid wire>"
	}
	return fmt.Sprintf("C:%d T:%d P:%d W:%d", w.Cryostat, w.TPC, w.Plane, w.Wire)
}

// View is the wire orientation of a readout plane.
type View uint8

const (
	ViewUnknown View = iota
	ViewU
	ViewV
	ViewZ
	ViewY
	ViewX
)

var viewNames = map[View]string{
	ViewUnknown: "unknown",
	ViewU:       "U",
	ViewV:       "V",
	ViewZ:       "Z",
	ViewY:       "Y",
	ViewX:       "X",
}

func (v View) String() string {
	if name, ok := viewNames[v]; ok {
		return name
	}
	return fmt.Sprintf("View(%d)", uint8(v))
}

// ParseView parses a view name. Matching is case-insensitive.
func ParseView(s string) (View, error) {
	for v, name := range viewNames {
		if strings.EqualFold(name, s) {
			return v, nil
		}
	}
	return ViewUnknown, fmt.Errorf("unknown view %q", s)
}

// SignalType tells whether a channel reads an induction or a collection plane.
type SignalType uint8

const (
	SignalUnknown SignalType = iota
	SignalInduction
	SignalCollection
)

func (s SignalType) String() string {
	switch s {
	case SignalInduction:
		return "induction"
	case SignalCollection:
		return "collection"
	case SignalUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("SignalType(%d)", uint8(s))
	}
}

// ParseSignalType parses "induction" or "collection".
func ParseSignalType(s string) (SignalType, error) {
	switch strings.ToLower(s) {
	case "induction":
		return SignalInduction, nil
	case "collection":
		return SignalCollection, nil
	case "unknown":
		return SignalUnknown, nil
	}
	return SignalUnknown, fmt.Errorf("unknown signal type %q", s)
}

// MarshalText encodes the view by name.
func (v View) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText decodes a view name.
func (v *View) UnmarshalText(b []byte) error {
	parsed, err := ParseView(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalText encodes the signal type by name.
func (s SignalType) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a signal type name.
func (s *SignalType) UnmarshalText(b []byte) error {
	parsed, err := ParseSignalType(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
