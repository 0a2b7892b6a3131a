package ay

import "math"

// toneDivider is the number of AY clock cycles per unit of tone period
// over one full square-wave cycle: the tone counter ticks every 8 AY
// cycles and the output flips every period ticks, so one cycle spans
// 16*period AY clock cycles.
const toneDivider = 16.0

// FreqToTonePeriod converts a desired tone frequency in Hz into the
// nearest 12-bit tone period for the given AY clock rate. It reports
// false when the rounded period falls outside the representable range
// [1, 4095].
func FreqToTonePeriod(clockHz, hz float64) (uint16, bool) {
	if hz <= 0 {
		return 0, false
	}
	period := math.Round(clockHz / (toneDivider * hz))
	if period < 1 || period > 4095 {
		return 0, false
	}
	return uint16(period), true
}

// TonePeriodToFreq is the inverse of FreqToTonePeriod: the tone frequency
// in Hz produced by the given 12-bit period at the given AY clock rate.
func TonePeriodToFreq(clockHz float64, period uint16) float64 {
	if period == 0 {
		period = 1
	}
	return clockHz / (toneDivider * float64(period))
}

// TonePeriods returns the 12-bit tone periods nearest to each of
// noteFreqs at the given clock rate, skipping any note whose nearest
// period would fall outside the representable range.
func TonePeriods(noteFreqs []float64, clockHz float64) []uint16 {
	periods := make([]uint16, 0, len(noteFreqs))
	for _, hz := range noteFreqs {
		if p, ok := FreqToTonePeriod(clockHz, hz); ok {
			periods = append(periods, p)
		}
	}
	return periods
}
