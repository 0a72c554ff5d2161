package geometry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hitkit/internal/ir"
)

const toyDetector = `
detector: {
	name: "toy"
	planes: [
		{plane: 0, view: "U", signal: "induction", first_channel: 0, wires: 10},
		{plane: 1, view: "V", signal: "induction", first_channel: 10, wires: 10},
		{plane: 2, view: "Z", signal: "collection", first_channel: 20, wires: 20},
	]
}
`

func TestLoad_ToyDetector(t *testing.T) {
	m, err := Load([]byte(toyDetector), "toy.cue")
	require.NoError(t, err)

	assert.Equal(t, "toy", m.Name())
	assert.Equal(t, 40, m.NChannels())
}

func TestChannelMap_Resolve(t *testing.T) {
	m, err := Load([]byte(toyDetector), "toy.cue")
	require.NoError(t, err)

	tests := []struct {
		ch     ir.ChannelID
		wire   ir.WireID
		view   ir.View
		signal ir.SignalType
	}{
		{0, ir.NewWireID(0, 0, 0, 0), ir.ViewU, ir.SignalInduction},
		{9, ir.NewWireID(0, 0, 0, 9), ir.ViewU, ir.SignalInduction},
		{10, ir.NewWireID(0, 0, 1, 0), ir.ViewV, ir.SignalInduction},
		{39, ir.NewWireID(0, 0, 2, 19), ir.ViewZ, ir.SignalCollection},
	}

	for _, tt := range tests {
		info, err := m.Resolve(tt.ch)
		require.NoError(t, err, "channel %d", tt.ch)
		assert.Equal(t, tt.wire, info.WireID, "channel %d", tt.ch)
		assert.Equal(t, tt.view, info.View, "channel %d", tt.ch)
		assert.Equal(t, tt.signal, info.SignalType, "channel %d", tt.ch)
	}
}

func TestChannelMap_ResolveUnknown(t *testing.T) {
	m, err := Load([]byte(toyDetector), "toy.cue")
	require.NoError(t, err)

	for _, ch := range []ir.ChannelID{40, 1000, ir.InvalidChannel} {
		_, err := m.Resolve(ch)
		assert.True(t, errors.Is(err, ErrUnknownChannel), "channel %d: %v", ch, err)
	}
}

func TestNewChannelMap_RejectsRangePastLastChannel(t *testing.T) {
	plane := Plane{View: "Z", Signal: "collection", FirstChannel: 4294967200, Wires: 200}
	_, err := NewChannelMap(Description{Name: "wrap", Planes: []Plane{plane}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "planes[0]")

	// The last channel below ir.InvalidChannel is still usable.
	plane.Wires = 95
	m, err := NewChannelMap(Description{Name: "edge", Planes: []Plane{plane}})
	require.NoError(t, err)
	info, err := m.Resolve(4294967294)
	require.NoError(t, err)
	assert.Equal(t, ir.NewWireID(0, 0, 0, 94), info.WireID)
	_, err = m.Resolve(ir.InvalidChannel)
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestLoad_RejectsSchemaViolations(t *testing.T) {
	tests := map[string]string{
		"bad view":                `detector: {name: "x", planes: [{plane: 0, view: "W", signal: "induction", first_channel: 0, wires: 1}]}`,
		"zero wires":              `detector: {name: "x", planes: [{plane: 0, view: "U", signal: "induction", first_channel: 0, wires: 0}]}`,
		"no planes":               `detector: {name: "x", planes: []}`,
		"range past last channel": `detector: {name: "x", planes: [{plane: 0, view: "Z", signal: "collection", first_channel: 4294967200, wires: 200}]}`,
		"missing detector":        `other: 1`,
		"syntax":                  `detector: {`,
	}

	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load([]byte(src), "bad.cue")
			assert.Error(t, err)
		})
	}
}

func TestLoad_RejectsOverlap(t *testing.T) {
	src := `
detector: {
	name: "overlap"
	planes: [
		{plane: 0, view: "U", signal: "induction", first_channel: 0, wires: 10},
		{plane: 1, view: "V", signal: "induction", first_channel: 5, wires: 10},
	]
}
`
	_, err := Load([]byte(src), "overlap.cue")
	require.Error(t, err)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, le.Message, "overlap")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toy.cue")
	require.NoError(t, os.WriteFile(path, []byte(toyDetector), 0o644))

	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 40, m.NChannels())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.cue"))
	assert.Error(t, err)
}
