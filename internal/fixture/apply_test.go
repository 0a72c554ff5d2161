package fixture

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hitkit/internal/event"
	"github.com/roach88/hitkit/internal/geometry"
	"github.com/roach88/hitkit/internal/ir"
	"github.com/roach88/hitkit/internal/store"
	"github.com/roach88/hitkit/internal/testutil"
)

func applyBasic(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "fixture.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f, err := LoadFile(filepath.Join("testdata", "basic.yaml"))
	require.NoError(t, err)

	proc, err := event.NewProcess("load", st, testutil.NewFixedTokenGenerator("tok"))
	require.NoError(t, err)

	sum, err := Apply(context.Background(), proc, testutil.ToyGeometry(), f)
	require.NoError(t, err)
	assert.Equal(t, Summary{Events: 2, RawDigits: 3, Wires: 4, Hits: 6}, sum)
	return st
}

func TestApply_WritesSourcesAndHits(t *testing.T) {
	st := applyBasic(t)
	ctx := context.Background()
	ev := ir.EventID{Run: 1, SubRun: 0, Event: 1}

	wires, err := st.ReadWires(ctx, ev, ir.InputTag{Label: DefaultWireLabel})
	require.NoError(t, err)
	require.Len(t, wires.Items, 3)
	assert.Equal(t, ir.ViewZ, wires.Items[0].View, "view comes from the geometry")
	assert.Equal(t, ir.ViewU, wires.Items[1].View)

	digits, err := st.ReadRawDigits(ctx, ev, ir.InputTag{Label: DefaultRawDigitLabel})
	require.NoError(t, err)

	wireDigits, err := st.ReadRelations(ctx, ev, ir.InputTag{Label: DefaultWireLabel}, ir.RelWireRawDigit)
	require.NoError(t, err)
	assert.Equal(t, ir.Relations{digits.Ptr(0), digits.Ptr(1), {}}, wireDigits)

	hits, err := st.ReadHits(ctx, ev, ir.InputTag{Label: DefaultHitLabel})
	require.NoError(t, err)
	require.Len(t, hits.Items, 5)

	roiHit := hits.Items[0]
	assert.Equal(t, ir.TDCTick(1), roiHit.StartTick)
	assert.Equal(t, ir.TDCTick(4), roiHit.EndTick)
	assert.Equal(t, float32(48), roiHit.SummedADC)
	assert.Equal(t, ir.SignalCollection, roiHit.SignalType)
	assert.Equal(t, ir.NewWireID(0, 0, 2, 2), roiHit.WireID)

	assert.Equal(t, float32(31), hits.Items[1].SummedADC, "summed from the wire")
	assert.Equal(t, float32(7), hits.Items[2].SummedADC, "explicit value kept")
	assert.Equal(t, ir.ChannelID(3), hits.Items[3].Channel)
	assert.Equal(t, ir.SignalInduction, hits.Items[3].SignalType)
	assert.Equal(t, float32(0), hits.Items[4].SummedADC, "no regions on the wire")

	hitWires, err := st.ReadRelations(ctx, ev, ir.InputTag{Label: DefaultHitLabel}, ir.RelHitWire)
	require.NoError(t, err)
	assert.Equal(t, ir.Relations{wires.Ptr(0), wires.Ptr(0), wires.Ptr(1), {}, wires.Ptr(2)}, hitWires)

	hitDigits, err := st.ReadRelations(ctx, ev, ir.InputTag{Label: DefaultHitLabel}, ir.RelHitRawDigit)
	require.NoError(t, err)
	assert.Equal(t, ir.Relations{digits.Ptr(0), digits.Ptr(0), digits.Ptr(1), digits.Ptr(1), {}}, hitDigits)
}

func TestApply_SecondEvent(t *testing.T) {
	st := applyBasic(t)

	events, err := st.Events(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint32(2), events[1].ID.Event)
	assert.Equal(t, 6, events[1].Products, "raw digits, wires, wire relations, hits, two hit relations")
}

func TestApply_NoHitRelations(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "fixture.db"))
	require.NoError(t, err)
	defer st.Close()

	f, err := Parse([]byte(`
labels: {hit_relations: none}
events:
  - wires: [{channel: 21, n_samples: 10}]
    hits: [{wire: 0, start_tick: 1, end_tick: 3}]
`))
	require.NoError(t, err)

	proc, err := event.NewProcess("load", st, nil)
	require.NoError(t, err)
	_, err = Apply(context.Background(), proc, testutil.ToyGeometry(), f)
	require.NoError(t, err)

	_, err = st.ReadRelations(context.Background(), ir.EventID{}, ir.InputTag{Label: DefaultHitLabel}, ir.RelHitWire)
	assert.ErrorIs(t, err, store.ErrProductNotFound)
}

func TestApply_UnknownChannel(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "fixture.db"))
	require.NoError(t, err)
	defer st.Close()

	f, err := Parse([]byte(`
events:
  - wires: [{channel: 400, n_samples: 10}]
`))
	require.NoError(t, err)

	proc, err := event.NewProcess("load", st, nil)
	require.NoError(t, err)
	_, err = Apply(context.Background(), proc, testutil.ToyGeometry(), f)
	assert.ErrorIs(t, err, geometry.ErrUnknownChannel)
}
