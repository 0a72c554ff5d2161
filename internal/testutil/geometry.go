package testutil

import (
	"fmt"

	"github.com/roach88/hitkit/internal/geometry"
	"github.com/roach88/hitkit/internal/ir"
)

// ToyDetectorCUE describes a 40-channel detector: two induction planes of
// ten channels and one collection plane of twenty.
const ToyDetectorCUE = `
detector: {
	name: "toy"
	planes: [
		{plane: 0, view: "U", signal: "induction", first_channel: 0, wires: 10},
		{plane: 1, view: "V", signal: "induction", first_channel: 10, wires: 10},
		{plane: 2, view: "Z", signal: "collection", first_channel: 20, wires: 20},
	]
}
`

// ToyGeometry returns the channel map of ToyDetectorCUE. Panics on error.
func ToyGeometry() *geometry.ChannelMap {
	m, err := geometry.Load([]byte(ToyDetectorCUE), "toy.cue")
	if err != nil {
		panic(err)
	}
	return m
}

// MapGeometry is a Lookup backed by a plain map, for tests that need exact
// control over what a channel resolves to.
type MapGeometry map[ir.ChannelID]geometry.ChannelInfo

// Resolve implements geometry.Lookup.
func (g MapGeometry) Resolve(ch ir.ChannelID) (geometry.ChannelInfo, error) {
	info, ok := g[ch]
	if !ok {
		return geometry.ChannelInfo{}, fmt.Errorf("resolve channel %d: %w", ch, geometry.ErrUnknownChannel)
	}
	return info, nil
}
