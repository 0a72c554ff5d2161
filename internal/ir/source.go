package ir

// ROI is a region of interest on a wire: a dense run of samples starting at Begin.
type ROI struct {
	Begin   TDCTick   `json:"begin"`
	Samples []float32 `json:"samples"`
}

// End returns the first tick after the region.
func (r ROI) End() TDCTick { return r.Begin + TDCTick(len(r.Samples)) }

// Wire is the calibrated waveform of one channel, stored as sparse ROIs.
// Ticks outside every ROI carry a zero signal.
type Wire struct {
	Channel  ChannelID `json:"channel"`
	View     View      `json:"view"`
	NSamples int       `json:"n_samples"`
	ROIs     []ROI     `json:"rois"`
}

// Sum returns the signal summed over [start, end).
func (w Wire) Sum(start, end TDCTick) float32 {
	var sum float32
	for _, roi := range w.ROIs {
		lo := max(start, roi.Begin)
		hi := min(end, roi.End())
		for t := lo; t < hi; t++ {
			sum += roi.Samples[t-roi.Begin]
		}
	}
	return sum
}

// RawDigit is the digitized, uncalibrated ADC stream of one channel.
type RawDigit struct {
	Channel  ChannelID `json:"channel"`
	Samples  []int16   `json:"samples"`
	Pedestal float32   `json:"pedestal"`
}
