package ir

// Hit is one reconstructed signal feature on one channel.
//
// Hits are built by internal/hit in one step and then only copied around.
// StartTick < EndTick is a precondition of construction, not checked here.
type Hit struct {
	Channel    ChannelID  `json:"channel"`
	WireID     WireID     `json:"wire_id"`
	View       View       `json:"view"`
	SignalType SignalType `json:"signal_type"`

	StartTick TDCTick `json:"start_tick"` // first tick of the extraction region
	EndTick   TDCTick `json:"end_tick"`   // first tick after the extraction region

	RMS                float32 `json:"rms"`
	PeakTime           float32 `json:"peak_time"`
	SigmaPeakTime      float32 `json:"sigma_peak_time"`
	PeakAmplitude      float32 `json:"peak_amplitude"`
	SigmaPeakAmplitude float32 `json:"sigma_peak_amplitude"`
	Integral           float32 `json:"integral"`
	SigmaIntegral      float32 `json:"sigma_integral"`
	SummedADC          float32 `json:"summed_adc"`

	Multiplicity  int16   `json:"multiplicity"` // hits sharing the extraction region
	LocalIndex    int16   `json:"local_index"`  // position of this hit within the region
	GoodnessOfFit float32 `json:"goodness_of_fit"`
	DOF           int     `json:"dof"`
}
