package hit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hitkit/internal/geometry"
	"github.com/roach88/hitkit/internal/ir"
	"github.com/roach88/hitkit/internal/testutil"
)

func sampleParams() Params {
	return Params{
		StartTick:          100,
		EndTick:            140,
		RMS:                3.5,
		PeakTime:           118.25,
		SigmaPeakTime:      0.5,
		PeakAmplitude:      42,
		SigmaPeakAmplitude: 1.5,
		Integral:           310,
		SigmaIntegral:      12,
		SummedADC:          305,
		Multiplicity:       2,
		LocalIndex:         1,
		GoodnessOfFit:      0.9,
		DOF:                3,
	}
}

func collectionWire() ir.Wire {
	return ir.Wire{
		Channel:  25,
		View:     ir.ViewZ,
		NSamples: 400,
		ROIs: []ir.ROI{
			{Begin: 100, Samples: []float32{1, 2, 3, 4}},
			{Begin: 200, Samples: []float32{5, 5, 5}},
		},
	}
}

func TestFromRawDigit(t *testing.T) {
	geo := testutil.ToyGeometry()
	digit := ir.RawDigit{Channel: 3, Samples: []int16{400, 401}, Pedestal: 400}

	c, err := FromRawDigit(geo, digit, sampleParams())
	require.NoError(t, err)

	h, err := c.Copy()
	require.NoError(t, err)
	assert.Equal(t, ir.ChannelID(3), h.Channel)
	assert.Equal(t, ir.ViewU, h.View)
	assert.Equal(t, ir.SignalInduction, h.SignalType)
	assert.Equal(t, ir.NewWireID(0, 0, 0, 3), h.WireID)
	assert.Equal(t, ir.TDCTick(100), h.StartTick)
	assert.Equal(t, ir.TDCTick(140), h.EndTick)
	assert.Equal(t, float32(305), h.SummedADC)
	assert.Equal(t, int16(2), h.Multiplicity)
	assert.Equal(t, 3, h.DOF)
}

func TestFromWire_ViewComesFromGeometry(t *testing.T) {
	// The wire claims view U; the lookup is authoritative.
	geo := testutil.MapGeometry{
		25: {WireID: ir.NewWireID(0, 0, 2, 5), View: ir.ViewY, SignalType: ir.SignalCollection},
	}
	w := collectionWire()
	w.View = ir.ViewU

	c, err := FromWire(geo, w, sampleParams())
	require.NoError(t, err)

	h, err := c.Copy()
	require.NoError(t, err)
	assert.Equal(t, ir.ViewY, h.View)
	assert.Equal(t, ir.SignalCollection, h.SignalType)
}

func TestFromWire_ExplicitWireID(t *testing.T) {
	p := sampleParams()
	p.WireID = ir.NewWireID(1, 2, 2, 9)

	c, err := FromWire(testutil.ToyGeometry(), collectionWire(), p)
	require.NoError(t, err)

	h, err := c.Copy()
	require.NoError(t, err)
	assert.Equal(t, ir.NewWireID(1, 2, 2, 9), h.WireID)
}

func TestFromWire_UnknownChannel(t *testing.T) {
	w := collectionWire()
	w.Channel = 4000

	c, err := FromWire(testutil.ToyGeometry(), w, sampleParams())
	assert.Nil(t, c)
	assert.ErrorIs(t, err, geometry.ErrUnknownChannel)
}

func TestFromWireSummed(t *testing.T) {
	p := sampleParams()
	p.StartTick = 101
	p.EndTick = 202
	p.SummedADC = -1

	c, err := FromWireSummed(testutil.ToyGeometry(), collectionWire(), p)
	require.NoError(t, err)

	h, err := c.Copy()
	require.NoError(t, err)
	assert.Equal(t, float32(2+3+4+5+5), h.SummedADC)
}

func TestFromROI(t *testing.T) {
	w := collectionWire()
	p := sampleParams()
	p.StartTick, p.EndTick = 0, 1

	c, err := FromROI(testutil.ToyGeometry(), w, w.ROIs[1], p)
	require.NoError(t, err)

	h, err := c.Copy()
	require.NoError(t, err)
	assert.Equal(t, ir.TDCTick(200), h.StartTick)
	assert.Equal(t, ir.TDCTick(203), h.EndTick)
	assert.Equal(t, p.SummedADC, h.SummedADC)
}

func TestFromROIIndex(t *testing.T) {
	geo := testutil.ToyGeometry()
	w := collectionWire()

	c, err := FromROIIndex(geo, w, 0, sampleParams())
	require.NoError(t, err)
	h, err := c.Copy()
	require.NoError(t, err)
	assert.Equal(t, ir.TDCTick(100), h.StartTick)
	assert.Equal(t, ir.TDCTick(104), h.EndTick)

	for _, idx := range []int{-1, 2} {
		_, err := FromROIIndex(geo, w, idx, sampleParams())
		assert.ErrorIs(t, err, ErrROIOutOfRange, "index %d", idx)
	}
}

func TestFromHit_Verbatim(t *testing.T) {
	orig, err := mustCreator(t).Copy()
	require.NoError(t, err)

	h, err := FromHit(orig).Copy()
	require.NoError(t, err)
	assert.Equal(t, orig, h)
}

func TestFromHitOnWire_OnlyWireChanges(t *testing.T) {
	orig, err := mustCreator(t).Copy()
	require.NoError(t, err)

	newID := ir.NewWireID(0, 1, 2, 17)
	h, err := FromHitOnWire(orig, newID).Move()
	require.NoError(t, err)

	assert.Equal(t, newID, h.WireID)
	assert.NotEqual(t, orig.WireID, h.WireID)

	h.WireID = orig.WireID
	assert.Equal(t, orig, h, "every other field is identical")
}

func TestCreator_CopyKeepsHit(t *testing.T) {
	c := mustCreator(t)

	first, err := c.Copy()
	require.NoError(t, err)
	second, err := c.Copy()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.False(t, c.Spent())
}

func TestCreator_MoveIsExactlyOnce(t *testing.T) {
	c := mustCreator(t)
	want, err := c.Copy()
	require.NoError(t, err)

	got, err := c.Move()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, c.Spent())

	again, err := c.Move()
	assert.ErrorIs(t, err, ErrExtracted)
	assert.Equal(t, ir.Hit{}, again)

	copied, err := c.Copy()
	assert.ErrorIs(t, err, ErrExtracted)
	assert.Equal(t, ir.Hit{}, copied, "moved hit must not come back")
}

func mustCreator(t *testing.T) *Creator {
	t.Helper()
	c, err := FromWire(testutil.ToyGeometry(), collectionWire(), sampleParams())
	require.NoError(t, err)
	return c
}
