package fixture

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/hitkit/internal/hit"
	"github.com/roach88/hitkit/internal/ir"
)

// Default module labels used when a fixture leaves them unset.
const (
	DefaultRawDigitLabel = "daq"
	DefaultWireLabel     = "caldata"
	DefaultHitLabel      = "gaushit"
)

// Hit relation modes.
const (
	RelateNone   = "none"
	RelateWires  = "wires"
	RelateDigits = "digits"
	RelateBoth   = "both"
)

// File is one fixture document.
type File struct {
	// Labels names the modules the fixture writes as.
	Labels Labels `yaml:"labels"`

	// Events lists the processing units to write.
	Events []Event `yaml:"events" validate:"required,min=1,dive"`
}

// Labels names the producing modules and which hit relations are written.
type Labels struct {
	RawDigits string `yaml:"raw_digits"`
	Wires     string `yaml:"wires"`
	Hits      string `yaml:"hits"`

	// HitRelations is one of none, wires, digits, both (default).
	HitRelations string `yaml:"hit_relations" validate:"omitempty,oneof=none wires digits both"`
}

// Event is the content of one processing unit.
type Event struct {
	Run    uint32 `yaml:"run"`
	SubRun uint32 `yaml:"subrun"`
	Event  uint32 `yaml:"event"`

	RawDigits []RawDigit `yaml:"raw_digits" validate:"dive"`
	Wires     []Wire     `yaml:"wires" validate:"dive"`
	Hits      []Hit      `yaml:"hits" validate:"dive"`
}

// RawDigit is a raw sample block.
type RawDigit struct {
	Channel  uint32  `yaml:"channel"`
	Pedestal float32 `yaml:"pedestal"`
	Samples  []int16 `yaml:"samples" validate:"required,min=1"`
}

// Wire is a calibrated waveform stored as regions of interest.
type Wire struct {
	Channel uint32 `yaml:"channel"`

	// View overrides the view resolved from the geometry.
	View string `yaml:"view" validate:"omitempty,view"`

	NSamples int `yaml:"n_samples" validate:"gt=0"`

	// RawDigit is the index of the raw digit the wire was made from.
	RawDigit *int `yaml:"raw_digit" validate:"omitempty,min=0"`

	ROIs []ROI `yaml:"rois" validate:"dive"`
}

// ROI is one region of interest of a wire.
type ROI struct {
	Begin   int       `yaml:"begin" validate:"min=0"`
	Samples []float32 `yaml:"samples" validate:"required,min=1"`
}

// Hit is a hit as a hit finder reports it. It references the wire and/or
// raw digit it was found on by index.
type Hit struct {
	Wire     *int `yaml:"wire" validate:"required_without=RawDigit,omitempty,min=0"`
	RawDigit *int `yaml:"raw_digit" validate:"omitempty,min=0"`

	// ROI takes the ticks from a region of the referenced wire.
	ROI *int `yaml:"roi" validate:"excluded_without=Wire,omitempty,min=0"`

	StartTick int `yaml:"start_tick"`
	EndTick   int `yaml:"end_tick"`

	// SummedADC is computed from the wire when unset.
	SummedADC *float32 `yaml:"summed_adc"`

	RMS                float32 `yaml:"rms" validate:"gte=0"`
	PeakTime           float32 `yaml:"peak_time"`
	SigmaPeakTime      float32 `yaml:"sigma_peak_time" validate:"gte=0"`
	PeakAmplitude      float32 `yaml:"peak_amplitude"`
	SigmaPeakAmplitude float32 `yaml:"sigma_peak_amplitude" validate:"gte=0"`
	Integral           float32 `yaml:"integral"`
	SigmaIntegral      float32 `yaml:"sigma_integral" validate:"gte=0"`
	Multiplicity       int16   `yaml:"multiplicity" validate:"gte=0"`
	LocalIndex         int16   `yaml:"local_index" validate:"gte=-1"`
	GoodnessOfFit      float32 `yaml:"goodness_of_fit"`
	DOF                int     `yaml:"dof" validate:"gte=0"`
}

// LoadFile reads, parses and validates a fixture file.
// Unknown fields are rejected so typos surface as errors.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse parses and validates fixture YAML and fills in default labels.
func Parse(data []byte) (*File, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	f.Labels.setDefaults()
	if err := Validate(&f); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &f, nil
}

func (l *Labels) setDefaults() {
	if l.RawDigits == "" {
		l.RawDigits = DefaultRawDigitLabel
	}
	if l.Wires == "" {
		l.Wires = DefaultWireLabel
	}
	if l.Hits == "" {
		l.Hits = DefaultHitLabel
	}
	if l.HitRelations == "" {
		l.HitRelations = RelateBoth
	}
}

// wireAssns reports whether hits carry hit→wire relations.
func (l Labels) wireAssns() bool {
	return l.HitRelations == RelateWires || l.HitRelations == RelateBoth
}

// digitAssns reports whether hits carry hit→raw digit relations.
func (l Labels) digitAssns() bool {
	return l.HitRelations == RelateDigits || l.HitRelations == RelateBoth
}

// ID returns the event identifier.
func (e Event) ID() ir.EventID {
	return ir.EventID{Run: e.Run, SubRun: e.SubRun, Event: e.Event}
}

// Channels returns the distinct channels the event's raw digits and wires
// sit on, in first-seen order.
func (e Event) Channels() []ir.ChannelID {
	seen := make(map[ir.ChannelID]bool)
	var chans []ir.ChannelID
	add := func(c uint32) {
		ch := ir.ChannelID(c)
		if !seen[ch] {
			seen[ch] = true
			chans = append(chans, ch)
		}
	}
	for _, d := range e.RawDigits {
		add(d.Channel)
	}
	for _, w := range e.Wires {
		add(w.Channel)
	}
	return chans
}

func (d RawDigit) toIR() ir.RawDigit {
	return ir.RawDigit{
		Channel:  ir.ChannelID(d.Channel),
		Samples:  d.Samples,
		Pedestal: d.Pedestal,
	}
}

func (r ROI) toIR() ir.ROI {
	return ir.ROI{Begin: ir.TDCTick(r.Begin), Samples: r.Samples}
}

// params converts the measured values. Ticks are left to the constructor
// the hit is built with.
func (h Hit) params() hit.Params {
	p := hit.Params{
		StartTick:          ir.TDCTick(h.StartTick),
		EndTick:            ir.TDCTick(h.EndTick),
		RMS:                h.RMS,
		PeakTime:           h.PeakTime,
		SigmaPeakTime:      h.SigmaPeakTime,
		PeakAmplitude:      h.PeakAmplitude,
		SigmaPeakAmplitude: h.SigmaPeakAmplitude,
		Integral:           h.Integral,
		SigmaIntegral:      h.SigmaIntegral,
		Multiplicity:       h.Multiplicity,
		LocalIndex:         h.LocalIndex,
		GoodnessOfFit:      h.GoodnessOfFit,
		DOF:                h.DOF,
	}
	if h.SummedADC != nil {
		p.SummedADC = *h.SummedADC
	}
	return p
}
