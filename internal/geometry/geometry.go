package geometry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/hitkit/internal/ir"
)

// ErrUnknownChannel is returned when a channel is not part of the detector.
var ErrUnknownChannel = errors.New("unknown channel")

// ChannelInfo is what the detector model knows about one channel.
type ChannelInfo struct {
	WireID     ir.WireID
	View       ir.View
	SignalType ir.SignalType
}

// Lookup resolves a channel to its wire, view and signal type.
// Implementations return an error wrapping ErrUnknownChannel for channels
// outside the detector.
type Lookup interface {
	Resolve(ch ir.ChannelID) (ChannelInfo, error)
}

// Plane describes one readout plane and its channel range.
type Plane struct {
	Cryostat     uint32 `json:"cryostat"`
	TPC          uint32 `json:"tpc"`
	Plane        uint32 `json:"plane"`
	View         string `json:"view"`
	Signal       string `json:"signal"`
	FirstChannel uint32 `json:"first_channel"`
	Wires        uint32 `json:"wires"`
}

// Description is the decoded detector description.
type Description struct {
	Name   string  `json:"name"`
	Planes []Plane `json:"planes"`
}

type planeRange struct {
	first, last ir.ChannelID // inclusive
	plane       Plane
	view        ir.View
	signal      ir.SignalType
}

// ChannelMap is a Lookup over contiguous per-plane channel ranges.
// It is immutable after construction and safe for concurrent use.
type ChannelMap struct {
	name   string
	ranges []planeRange // sorted by first channel, non-overlapping
}

// NewChannelMap builds a ChannelMap from a description.
// Planes with overlapping channel ranges, or ranges reaching
// ir.InvalidChannel, are rejected.
func NewChannelMap(desc Description) (*ChannelMap, error) {
	if len(desc.Planes) == 0 {
		return nil, fmt.Errorf("detector %q: no planes", desc.Name)
	}

	ranges := make([]planeRange, 0, len(desc.Planes))
	for i, p := range desc.Planes {
		if p.Wires == 0 {
			return nil, fmt.Errorf("planes[%d]: wires must be positive", i)
		}
		if uint64(p.FirstChannel)+uint64(p.Wires) > uint64(ir.InvalidChannel) {
			return nil, fmt.Errorf("planes[%d]: channels %d+%d run past the last valid channel",
				i, p.FirstChannel, p.Wires)
		}
		view, err := ir.ParseView(p.View)
		if err != nil {
			return nil, fmt.Errorf("planes[%d]: %w", i, err)
		}
		signal, err := ir.ParseSignalType(p.Signal)
		if err != nil {
			return nil, fmt.Errorf("planes[%d]: %w", i, err)
		}
		ranges = append(ranges, planeRange{
			first:  ir.ChannelID(p.FirstChannel),
			last:   ir.ChannelID(p.FirstChannel + p.Wires - 1),
			plane:  p,
			view:   view,
			signal: signal,
		})
	}

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].first < ranges[j].first })
	for i := 1; i < len(ranges); i++ {
		if ranges[i].first <= ranges[i-1].last {
			return nil, fmt.Errorf("channel ranges overlap at channel %d", ranges[i].first)
		}
	}

	return &ChannelMap{name: desc.Name, ranges: ranges}, nil
}

// Name returns the detector name.
func (m *ChannelMap) Name() string { return m.name }

// NChannels returns the number of channels covered by the map.
func (m *ChannelMap) NChannels() int {
	n := 0
	for _, r := range m.ranges {
		n += int(r.last-r.first) + 1
	}
	return n
}

// Resolve implements Lookup.
func (m *ChannelMap) Resolve(ch ir.ChannelID) (ChannelInfo, error) {
	i := sort.Search(len(m.ranges), func(i int) bool { return m.ranges[i].last >= ch })
	if i == len(m.ranges) || ch < m.ranges[i].first || !ch.Valid() {
		return ChannelInfo{}, fmt.Errorf("resolve channel %d: %w", ch, ErrUnknownChannel)
	}

	r := m.ranges[i]
	return ChannelInfo{
		WireID:     ir.NewWireID(r.plane.Cryostat, r.plane.TPC, r.plane.Plane, uint32(ch-r.first)),
		View:       r.view,
		SignalType: r.signal,
	}, nil
}
