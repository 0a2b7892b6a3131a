package ula

import (
	"log/slog"

	"github.com/royaltm/go-spectrusty/ay"
	"github.com/royaltm/go-spectrusty/blep"
	"github.com/royaltm/go-spectrusty/bus"
	"github.com/royaltm/go-spectrusty/clock"
	"github.com/royaltm/go-spectrusty/memory"
)

// ReadEarMode selects the EAR-in bit the ULA synthesises when no pulse
// input has been queued, per spec §4.3.
type ReadEarMode uint8

const (
	// Issue2 and Issue3 mimic the two real ULA hardware revisions' open
	// collector floating behaviour, which differs in how the last MIC/EAR
	// output bit biases an unconnected input.
	Issue2 ReadEarMode = iota
	Issue3
	// Clear and Set pin the floating input to a fixed level, useful for
	// hosts that want deterministic behaviour regardless of issue.
	Clear
	Set
)

// EarMicChange records an EAR/MIC output change (port 0xFE bits 3-4)
// at the timestamp it was written.
type EarMicChange struct {
	Ts    clock.VideoTs
	Value uint8 // bit0=MIC, bit1=EAR, as driven out
}

// EarInChange records a queued EAR-in input transition.
type EarInChange struct {
	Ts  clock.VideoTs
	Bit bool
}

// BorderChange records a border colour change (port 0xFE bits 0-2).
type BorderChange struct {
	Ts     clock.VideoTs
	Colour uint8
}

// AmpLevels maps a 2-bit EAR/MIC level to the float64 amplitude domain
// blep.Blep works in, letting the host calibrate how loud EAR/MIC output
// and EAR-in pulses are relative to the AY channels.
type AmpLevels interface {
	AmpLevel(level uint8) float64
}

// AY3Channels names which of the three BLEP channels the AY chip's
// A/B/C outputs are mixed into.
type AY3Channels [3]int

// ULA is the top-level integrator described in spec §4.3: it owns the
// memory pager, the peripheral bus chain, the AY synthesiser and the
// BLEP sink, and drives a host-supplied Cpu across one frame at a time.
type ULA struct {
	Pager *memory.Pager
	Bus   *bus.Chain
	AY    *ay.State
	Blep  *blep.Blep
	Clk   *clock.Clock

	model clock.Model

	keyboard [8]uint8 // 8 half-rows, 5 bits each, active-low; unused bits set

	lastFE      uint8
	readEarMode ReadEarMode

	earmicHistory []EarMicChange
	earInQueue    []EarInChange
	consumedEarIn []EarInChange
	borderHistory []BorderChange

	frameCounter uint64

	ayChannels AY3Channels
}

// New constructs a ULA driving pager and busChain under model, with ay
// and blp as the sound generation and synthesis backends.
func New(model clock.Model, pager *memory.Pager, busChain *bus.Chain, ayState *ay.State, blp *blep.Blep, ayChannels AY3Channels) *ULA {
	u := &ULA{
		Pager:      pager,
		Bus:        busChain,
		AY:         ayState,
		Blep:       blp,
		Clk:        clock.New(model),
		model:      model,
		ayChannels: ayChannels,
	}
	for i := range u.keyboard {
		u.keyboard[i] = 0xFF
	}
	slog.Debug("ULA initialized", "model", model.Name)
	return u
}

// irqWindow is the span, in T-states after scanline 0 of a new frame,
// during which IsIrq reports true, per spec §4.3 step 3.
const irqWindow = 32

// IsIrq reports whether the maskable interrupt line is asserted at ts.
func (u *ULA) IsIrq(ts clock.VideoTs) bool {
	return ts.VC == 0 && ts.HC >= 0 && ts.HC < irqWindow
}

// ReadMem/WriteMem/ReadMem16/ReadOpcode/ReadDebug implement the
// MemoryIO contract's memory half by delegating straight to the pager;
// none of them insert contention themselves; Clk.AddM1/AddMreq (called
// separately by the driving Cpu) are what account for timing.

func (u *ULA) ReadMem(addr uint16, ts clock.VideoTs) uint8 {
	return u.Pager.Read(addr)
}

func (u *ULA) ReadMem16(addr uint16, ts clock.VideoTs) uint16 {
	return u.Pager.Read16(addr)
}

func (u *ULA) ReadOpcode(pc uint16, ir uint16, ts clock.VideoTs) uint8 {
	return u.Pager.Read(pc)
}

func (u *ULA) WriteMem(addr uint16, value uint8, ts clock.VideoTs) {
	u.Pager.Write(addr, value)
}

func (u *ULA) ReadDebug(addr uint16) uint8 {
	return u.Pager.Read(addr)
}

// ReadIO implements the IO-read half of MemoryIO: port 0xFE (the
// keyboard/EAR port, matched on the low address byte) is handled
// locally; every other port is delegated to the bus device chain.
func (u *ULA) ReadIO(port uint16, ts clock.VideoTs) (uint8, *uint16) {
	if port&0xFF == 0xFE {
		return u.readPortFE(port, ts), nil
	}
	v, wait, ok := u.Bus.ReadIO(port, ts)
	if !ok {
		return 0xFF, nil
	}
	w := wait
	return v, &w
}

// WriteIO implements the IO-write half of MemoryIO.
func (u *ULA) WriteIO(port uint16, value uint8, ts clock.VideoTs) (*Break, *uint16) {
	if port&0xFF == 0xFE {
		u.writePortFE(port, value, ts)
		return nil, nil
	}
	wait, handled := u.Bus.WriteIO(port, value, ts)
	if !handled {
		return nil, nil
	}
	w := wait
	return nil, &w
}

// readPortFE implements the keyboard/EAR-in read: bits 0-4 are the
// AND-combined selected keyboard half-rows (selected by the cleared
// bits of the port's high byte), bit 6 is the EAR-in bit, per spec §4.3.
func (u *ULA) readPortFE(port uint16, ts clock.VideoTs) uint8 {
	highByte := uint8(port >> 8)
	rows := uint8(0x1F)
	selected := false
	for row := 0; row < 8; row++ {
		if highByte&(1<<uint(row)) == 0 {
			rows &= u.keyboard[row]
			selected = true
		}
	}
	if !selected {
		rows = 0x1F
	}

	ear := u.readEarBit(ts)
	var earBit uint8
	if ear {
		earBit = 1 << 6
	}

	return 0xA0 | earBit | rows
}

func (u *ULA) writePortFE(port uint16, value uint8, ts clock.VideoTs) {
	u.lastFE = value
	border := value & 0x07
	u.borderHistory = append(u.borderHistory, BorderChange{Ts: ts, Colour: border})
	u.earmicHistory = append(u.earmicHistory, EarMicChange{Ts: ts, Value: (value >> 3) & 0x03})
}

// readEarBit consumes the next queued ear-in change with timestamp <= ts
// if one is due, otherwise synthesises a value from the read-ear mode
// and the last earmic-out bit, per spec §4.3.
func (u *ULA) readEarBit(ts clock.VideoTs) bool {
	for len(u.earInQueue) > 0 && !ts.Less(u.earInQueue[0].Ts) {
		next := u.earInQueue[0]
		u.earInQueue = u.earInQueue[1:]
		u.consumedEarIn = append(u.consumedEarIn, next)
		return next.Bit
	}

	earOut := u.lastFE&0x10 != 0
	switch u.readEarMode {
	case Issue2:
		return earOut && (u.lastFE&0x08 != 0)
	case Issue3:
		return earOut
	case Set:
		return true
	default: // Clear
		return false
	}
}

// SetReadEarMode configures the floating-input behaviour used when no
// pulse input is queued.
func (u *ULA) SetReadEarMode(mode ReadEarMode) {
	u.readEarMode = mode
}

// FeedEarIn accumulates up to capFrames worth of future EAR-in
// transitions into the input queue, each deltaTs T-states after the
// previous one (or after now, for the first).
func (u *ULA) FeedEarIn(now clock.VideoTs, deltasTs []clock.FTs, capFrames int) {
	frameLen := clock.FTs(u.model.FrameTStates())
	limit := clock.FTs(capFrames) * frameLen

	ts := now
	bit := true
	var accumulated clock.FTs
	for _, d := range deltasTs {
		accumulated += d
		if accumulated > limit {
			break
		}
		ts = u.model.VtsAdd(ts, int32(d))
		u.earInQueue = append(u.earInQueue, EarInChange{Ts: ts, Bit: bit})
		bit = !bit
	}
}

// SetKeyHalfRow sets the active-low 5-bit state of keyboard half-row
// row (0-7), bits 0-4 used.
func (u *ULA) SetKeyHalfRow(row int, bits uint8) {
	if row >= 0 && row < len(u.keyboard) {
		u.keyboard[row] = bits&0x1F | 0xE0
	}
}

// RunFrame drives cpu across exactly one frame, per spec §4.3's
// run_frame algorithm: repeatedly call ExecuteWithLimit until the clock
// reaches frame end and the Cpu is not mid-prefix, then let the IRQ
// window open for the next frame.
func (u *ULA) RunFrame(cpu Cpu) error {
	frameEnd := clock.VideoTs{VC: u.model.LinesPerFrame, HC: 0}

	for {
		if err := cpu.ExecuteWithLimit(u, u.Clk, frameEnd); err != nil {
			return err
		}
		if !u.Clk.IsPastLimit(frameEnd) {
			continue
		}
		if cpu.IsAfterPrefix() {
			continue
		}
		break
	}

	u.NextFrame()
	return nil
}

// NextFrame lets the bus chain and clock wrap their timestamp origins,
// and subtracts one frame's worth of T-states from every stored
// timestamp in the ULA's own history logs, per spec §4.3 step 4.
func (u *ULA) NextFrame() {
	end := u.Clk.AsTimestamp()
	u.Bus.NextFrame(end)
	u.Clk.NextFrame()
	u.frameCounter++
	slog.Debug("Frame completed", "frame", u.frameCounter)

	shift := u.model.VtsSaturatingSubFrame

	for i := range u.earmicHistory {
		u.earmicHistory[i].Ts = shift(u.earmicHistory[i].Ts)
	}
	for i := range u.earInQueue {
		u.earInQueue[i].Ts = shift(u.earInQueue[i].Ts)
	}
	for i := range u.consumedEarIn {
		u.consumedEarIn[i].Ts = shift(u.consumedEarIn[i].Ts)
	}
	for i := range u.borderHistory {
		u.borderHistory[i].Ts = shift(u.borderHistory[i].Ts)
	}
}

// FrameCounter returns the number of completed frames, used by the
// video package's flash-attribute phase calculation.
func (u *ULA) FrameCounter() uint64 {
	return u.frameCounter
}

// BorderHistory returns the border colour changes accumulated so far
// this frame, for the video package's border rendering pass.
func (u *ULA) BorderHistory() []BorderChange {
	return u.borderHistory
}

// earmicChannel is the BLEP channel EAR/MIC output and EAR-in pulses are
// mixed into, alongside whichever AY channel the host also routes there.
const earmicChannel = 0

// RenderAudio walks the AY chip and the earmic/ear-in history into the
// BLEP sink, then clears the per-frame logs, per spec §4.3's audio
// pipeline integration.
func (u *ULA) RenderAudio(endTs clock.VideoTs, earmicLevels, earInLevels AmpLevels) {
	endFts := u.model.VtsToTstates(endTs)
	u.AY.RenderAudio(u.Blep, endFts, u.ayChannels)

	var prevAmp float64
	for _, ch := range u.earmicHistory {
		amp := earmicLevels.AmpLevel(ch.Value)
		if amp != prevAmp {
			ts := u.model.VtsToTstates(ch.Ts)
			u.Blep.AddStep(earmicChannel, u.Blep.TstateToSampleTime(ts), amp-prevAmp)
			prevAmp = amp
		}
	}
	u.earmicHistory = u.earmicHistory[:0]

	var prevEarIn float64
	for _, ch := range u.consumedEarIn {
		var level uint8
		if ch.Bit {
			level = 1
		}
		amp := earInLevels.AmpLevel(level)
		if amp != prevEarIn {
			ts := u.model.VtsToTstates(ch.Ts)
			u.Blep.AddStep(earmicChannel, u.Blep.TstateToSampleTime(ts), amp-prevEarIn)
			prevEarIn = amp
		}
	}
	u.consumedEarIn = u.consumedEarIn[:0]
}
