// Package blep implements the band-limited step (BLEP) synthesiser
// described in spec §4.5: sparse (channel, sample-time, delta) impulses
// are accumulated into a difference buffer and summed into a continuous,
// minimally-aliased PCM stream per channel.
package blep

import (
	"math"

	"github.com/royaltm/go-spectrusty/clock"
)

// Blep is a band-limited step synthesiser for a fixed number of output
// channels.
type Blep struct {
	channels int
	kernel   [PhaseCount][StepWidth]float64

	sampleRate float64
	cpuHz      float64
	highPass   float64

	frameTimeSamples float64 // expected samples per frame, sampleRate*frameTStates/cpuHz

	diffs    []float64 // channels-interleaved difference buffer
	sums     []float64 // per-channel running sum carried across frames
	consumed []bool    // per-channel: has this frame's buffer been consumed

	startTime        float64 // sample-time origin of the current frame
	frameSampleCount int     // set by EndFrame
}

// New creates a Blep for the given channel count, sample rate, CPU clock
// rate, frame length (in T-states), margin (in T-states) and low-pass
// harmonic decay factor, and sizes its buffers via EnsureFrameTime.
func New(channels int, sampleRate, cpuHz float64, frameTStates clock.FTs, margin float64, lowPass float64) *Blep {
	b := &Blep{
		channels:   channels,
		kernel:     buildKernel(lowPass),
		sampleRate: sampleRate,
		cpuHz:      cpuHz,
		highPass:   0.999,
		sums:       make([]float64, channels),
		consumed:   make([]bool, channels),
	}
	b.EnsureFrameTime(sampleRate, cpuHz, frameTStates, margin)
	return b
}

// SetHighPass sets the per-sample DC-leak factor applied in SumIter.
func (b *Blep) SetHighPass(hp float64) {
	b.highPass = hp
}

// EnsureFrameTime (re)sizes the difference buffer to fit
// (frameTStates+margin)*sampleRate/cpuHz samples, plus the kernel's step
// width, per channel.
func (b *Blep) EnsureFrameTime(sampleRate, cpuHz float64, frameTStates clock.FTs, margin float64) {
	b.sampleRate = sampleRate
	b.cpuHz = cpuHz
	b.frameTimeSamples = sampleRate * float64(frameTStates) / cpuHz

	samples := int(math.Ceil((float64(frameTStates)+margin)*sampleRate/cpuHz)) + StepWidth
	need := samples * b.channels
	if len(b.diffs) < need {
		grown := make([]float64, need)
		copy(grown, b.diffs)
		b.diffs = grown
	}
}

// TstateToSampleTime converts a monotonic T-state count into the
// fractional sample-time unit AddStep expects.
func (b *Blep) TstateToSampleTime(ts clock.FTs) float64 {
	return float64(ts) * b.sampleRate / b.cpuHz
}

// AddStep dispatches an impulse of the given delta, at sample-time t, into
// channel's difference buffer, spread across the kernel's fractional-phase
// step.
func (b *Blep) AddStep(channel int, t float64, delta float64) {
	offset := t - b.startTime
	idx := int(math.Floor(offset))
	if idx < 0 {
		idx = 0
	}
	frac := offset - math.Floor(offset)
	phase := int(frac * PhaseCount)
	if phase >= PhaseCount {
		phase = PhaseCount - 1
	}
	if phase < 0 {
		phase = 0
	}

	for i := 0; i < StepWidth; i++ {
		pos := idx + i
		at := pos*b.channels + channel
		if at < 0 || at >= len(b.diffs) {
			continue
		}
		b.diffs[at] += delta * b.kernel[phase][i]
	}
}

// EndFrame records the number of finished samples in the current frame
// (floor(t - start_time)) and freezes the buffer for consumption.
func (b *Blep) EndFrame(t float64) {
	n := int(math.Floor(t - b.startTime))
	if n < 0 {
		n = 0
	}
	b.frameSampleCount = n
}

// Channels returns the channel count this Blep was constructed with.
func (b *Blep) Channels() int {
	return b.channels
}

func (b *Blep) computeSamples(channel int) (samples []float64, finalSum float64) {
	sum := b.sums[channel]
	samples = make([]float64, b.frameSampleCount)
	for i := 0; i < b.frameSampleCount; i++ {
		sum += b.diffs[i*b.channels+channel]
		sum *= b.highPass
		samples[i] = sum
	}
	return samples, sum
}

// SumIter consumes channel's frozen difference buffer into a finished PCM
// sample slice. Each channel's buffer may be consumed exactly once per
// frame (either explicitly, or implicitly by NextFrame for any channel
// that wasn't).
func (b *Blep) SumIter(channel int) []float64 {
	samples, finalSum := b.computeSamples(channel)
	b.sums[channel] = finalSum
	b.consumed[channel] = true
	return samples
}

// NextFrame advances the frame origin, consuming any channel that wasn't
// explicitly drained via SumIter, shifting the tail of the difference
// buffer into the head, and zeroing the rest.
func (b *Blep) NextFrame() {
	for ch := 0; ch < b.channels; ch++ {
		if !b.consumed[ch] {
			b.SumIter(ch)
		}
	}

	n := b.frameSampleCount
	b.startTime += float64(n) - b.frameTimeSamples

	shiftLen := StepWidth * b.channels
	srcStart := n * b.channels
	if srcStart+shiftLen > len(b.diffs) {
		shiftLen = len(b.diffs) - srcStart
		if shiftLen < 0 {
			shiftLen = 0
		}
	}
	copy(b.diffs[0:shiftLen], b.diffs[srcStart:srcStart+shiftLen])
	for i := shiftLen; i < len(b.diffs); i++ {
		b.diffs[i] = 0
	}

	for ch := range b.consumed {
		b.consumed[ch] = false
	}
	b.frameSampleCount = 0
}
