package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/hitkit/internal/ir"
)

// createTestStore creates a new temporary store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testEvent = ir.EventID{Run: 7, SubRun: 1, Event: 42}

func testKey(label string) ProductKey {
	return ProductKey{Process: "reco", Label: label}
}

func testDigits() []ir.RawDigit {
	return []ir.RawDigit{
		{Channel: 10, Samples: []int16{400, 402, 398}, Pedestal: 400},
		{Channel: 11, Samples: []int16{-3, 5}, Pedestal: 0.5},
	}
}

func testWires() []ir.Wire {
	return []ir.Wire{
		{Channel: 10, View: ir.ViewU, NSamples: 100, ROIs: []ir.ROI{
			{Begin: 20, Samples: []float32{1.5, 3, 1.25}},
		}},
		{Channel: 11, View: ir.ViewV, NSamples: 100},
	}
}

func testHits() []ir.Hit {
	return []ir.Hit{
		{
			Channel:       10,
			WireID:        ir.NewWireID(0, 0, 0, 10),
			View:          ir.ViewU,
			SignalType:    ir.SignalInduction,
			StartTick:     20,
			EndTick:       23,
			PeakTime:      21.25,
			PeakAmplitude: 3,
			Integral:      5.75,
			SummedADC:     5.75,
			Multiplicity:  1,
			DOF:           2,
		},
		{
			Channel:    11,
			WireID:     ir.NewWireID(0, 0, 1, 1),
			View:       ir.ViewV,
			SignalType: ir.SignalInduction,
			StartTick:  50,
			EndTick:    60,
			LocalIndex: 0,
		},
	}
}
