// Package ay implements the AY-3-8910/8912 programmable sound generator
// described in spec §4.4: three tone channels, a shared noise source, and
// an envelope generator, driven by a 14-register interface and rendered
// into a band-limited PCM stream via blep.Blep.
package ay

import (
	"math"

	"github.com/royaltm/go-spectrusty/blep"
	"github.com/royaltm/go-spectrusty/clock"
)

// volumeTable maps a 4-bit channel level to a linear amplitude. The AY's
// real DAC response is roughly logarithmic; rather than reproduce a
// remembered hardware-measured table (and risk asserting false precision),
// this is derived from the textbook -3dB/step approximation, normalised so
// level 15 is full scale.
var volumeTable [16]float64

func init() {
	for i := 1; i < 16; i++ {
		volumeTable[i] = math.Pow(2, float64(i-15)/2)
	}
}

// Change is one register write, timestamped on the CPU's T-state clock.
// UpdateRegister appends to the log immediately; RenderAudio is what
// actually replays it into generator state, in order, at the correct
// internal tick.
type Change struct {
	Ts    clock.FTs
	Reg   uint8
	Value uint8
}

// State is one AY-3-891x chip instance.
type State struct {
	regs [16]uint8

	tones [3]toneGenerator
	noise noiseGenerator
	env   envelopeGenerator

	changes []Change

	cyclesPerTick float64 // CPU T-states per generator tick (8 AY cycles)
	nextTickTs    float64 // CPU T-state (fractional) of the next pending tick
	prevAmp       [3]float64
}

// NewState constructs an AY chip clocked at ayHz, driven by a CPU running
// at cpuHz.
func NewState(cpuHz, ayHz float64) *State {
	return &State{
		noise:         newNoiseGenerator(),
		cyclesPerTick: cpuHz / ayHz * 8,
	}
}

// UpdateRegister is the instantaneous half of a register write: regs is
// updated immediately (so readback via Register sees the new value right
// away), and the write is queued onto the change log for RenderAudio to
// apply at its proper place in time. It does not itself emit audio.
func (s *State) UpdateRegister(ts clock.FTs, reg uint8, value uint8) {
	reg &= 0x0F
	s.regs[reg] = value
	s.changes = append(s.changes, Change{Ts: ts, Reg: reg, Value: value})
}

// Register reads back the latest value written to reg, regardless of
// whether RenderAudio has caught up to it yet.
func (s *State) Register(reg uint8) uint8 {
	return s.regs[reg&0x0F]
}

// RenderAudio replays every queued register change up to endTs in order,
// stepping the tone/noise/envelope generators tick by tick and dispatching
// amplitude deltas into b via channelMap (logical channel -> blep channel
// index), then advances the remainder of the frame to endTs.
func (s *State) RenderAudio(b *blep.Blep, endTs clock.FTs, channelMap [3]int) {
	for _, ch := range s.changes {
		s.advance(b, channelMap, ch.Ts)
		s.applyChange(ch)
	}
	s.changes = s.changes[:0]
	s.advance(b, channelMap, endTs)
}

func (s *State) applyChange(ch Change) {
	switch ch.Reg {
	case 0:
		s.tones[0].setFine(ch.Value)
	case 1:
		s.tones[0].setCoarse(ch.Value)
	case 2:
		s.tones[1].setFine(ch.Value)
	case 3:
		s.tones[1].setCoarse(ch.Value)
	case 4:
		s.tones[2].setFine(ch.Value)
	case 5:
		s.tones[2].setCoarse(ch.Value)
	case 6:
		s.noise.setPeriod(ch.Value)
	case 7, 8, 9, 10:
		// mixer and amplitude registers are read directly from regs by
		// channelAmplitude; nothing to precompute.
	case 11:
		s.env.setFine(ch.Value)
	case 12:
		s.env.setCoarse(ch.Value)
	case 13:
		s.env.setShape(ch.Value)
	case 14, 15:
		// I/O port data, not wired into this core; see peripherals/serial
		// for the port-A link used by the 128K RS-232/network glue.
	}
}

func (s *State) advance(b *blep.Blep, channelMap [3]int, targetTs clock.FTs) {
	target := float64(targetTs)
	for s.nextTickTs <= target {
		s.tones[0].tick()
		s.tones[1].tick()
		s.tones[2].tick()
		s.noise.tick()
		s.env.tick()
		s.emit(b, channelMap, s.nextTickTs)
		s.nextTickTs += s.cyclesPerTick
	}
}

func (s *State) emit(b *blep.Blep, channelMap [3]int, tickTs float64) {
	for ch := 0; ch < 3; ch++ {
		amp := s.channelAmplitude(ch)
		if amp != s.prevAmp[ch] {
			b.AddStep(channelMap[ch], b.TstateToSampleTime(clock.FTs(tickTs)), amp-s.prevAmp[ch])
			s.prevAmp[ch] = amp
		}
	}
}

func (s *State) channelAmplitude(ch int) float64 {
	// Mixer bits are active-low enables: a set bit disables that source,
	// which the real AND-gate mixer implements by forcing its input high
	// so it never pulls the channel down.
	mixer := s.regs[7]
	toneDisabled := mixer&(1<<uint(ch)) != 0
	noiseDisabled := mixer&(1<<uint(ch+3)) != 0

	toneHigh := s.tones[ch].output || toneDisabled
	noiseHigh := s.noise.output || noiseDisabled
	if !toneHigh || !noiseHigh {
		return 0
	}

	ampReg := s.regs[8+ch]
	var level uint8
	if ampReg&0x10 != 0 {
		level = s.env.level
	} else {
		level = ampReg & 0x0F
	}
	return volumeTable[level]
}

// Reset silences all channels and clears the pending change log, as on a
// hard reset of the chip.
func (s *State) Reset() {
	s.regs = [16]uint8{}
	s.tones = [3]toneGenerator{}
	s.noise = newNoiseGenerator()
	s.env = envelopeGenerator{}
	s.changes = s.changes[:0]
	s.nextTickTs = 0
	s.prevAmp = [3]float64{}
}
