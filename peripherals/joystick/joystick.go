// Package joystick implements the bus-chain joystick interfaces
// described in spec §4.8: each variant is a pure port decoder returning
// the button bitfield of a shared active-low State, differing by address
// mask/bits (Cursor's mask covers its three ports) and by polarity:
// Kempston inverts the bits and reads active-high, the others read
// active-low.
package joystick

import (
	"github.com/royaltm/go-spectrusty/bus"
	"github.com/royaltm/go-spectrusty/clock"
)

// Button bits within the active-low bitfield every variant reads from.
const (
	Right = 1 << iota
	Left
	Down
	Up
	Fire
)

// State is the shared button state a joystick variant reads from. Bits
// are clear (0) when the corresponding button is pressed and set (1)
// when released, matching real hardware's pull-up wiring.
type State struct {
	bits uint8
}

// NewState returns a State with every button released.
func NewState() *State {
	return &State{bits: 0xFF}
}

// Press clears button's bit (pressed == 0).
func (s *State) Press(button uint8) {
	s.bits &^= button
}

// Release sets button's bit back to released.
func (s *State) Release(button uint8) {
	s.bits |= button
}

// Kempston implements the Kempston joystick interface: a single port,
// decoded on address bit 5 clear (mask 0x20, bits 0), reporting buttons
// active-high (the inverse of the shared State's active-low convention).
type Kempston struct {
	bus.NullDevice
	decoder bus.PortDecoder
	state   *State
}

// NewKempston wires state to the Kempston port decoder.
func NewKempston(state *State) *Kempston {
	return &Kempston{decoder: bus.PortDecoder{AddressMask: 0x0020, AddressBits: 0x0000}, state: state}
}

func (k *Kempston) ReadIO(port uint16, _ clock.VideoTs) (byte, bus.WaitStates, bool) {
	if !k.decoder.Match(port) {
		return 0, 0, false
	}
	return ^k.state.bits, 0, true
}

// Fuller implements the Fuller joystick interface: port mask/bits 0x7F.
type Fuller struct {
	bus.NullDevice
	decoder bus.PortDecoder
	state   *State
}

func NewFuller(state *State) *Fuller {
	return &Fuller{decoder: bus.PortDecoder{AddressMask: 0x007F, AddressBits: 0x007F}, state: state}
}

func (f *Fuller) ReadIO(port uint16, _ clock.VideoTs) (byte, bus.WaitStates, bool) {
	if !f.decoder.Match(port) {
		return 0, 0, false
	}
	return f.state.bits, 0, true
}

// SinclairSide distinguishes the Sinclair interface's two keypad halves,
// each wired to a different keyboard half-row port.
type SinclairSide int

const (
	SinclairLeft  SinclairSide = iota // port 0xF7FE
	SinclairRight                     // port 0xEFFE
)

// Sinclair implements a Sinclair joystick interface, which piggybacks on
// one of the keyboard's half-row read ports.
type Sinclair struct {
	bus.NullDevice
	decoder bus.PortDecoder
	state   *State
}

func NewSinclair(side SinclairSide, state *State) *Sinclair {
	bits := uint16(0xF7FE)
	if side == SinclairRight {
		bits = 0xEFFE
	}
	return &Sinclair{decoder: bus.PortDecoder{AddressMask: 0xFFFE, AddressBits: bits}, state: state}
}

func (s *Sinclair) ReadIO(port uint16, _ clock.VideoTs) (byte, bus.WaitStates, bool) {
	if !s.decoder.Match(port) {
		return 0, 0, false
	}
	return s.state.bits, 0, true
}

// Cursor implements the Cursor/AGF/Protek interface, merged onto the
// 0xE7FE keyboard half-row port.
type Cursor struct {
	bus.NullDevice
	decoder bus.PortDecoder
	state   *State
}

func NewCursor(state *State) *Cursor {
	return &Cursor{decoder: bus.PortDecoder{AddressMask: 0xE7FE, AddressBits: 0xE7FE}, state: state}
}

func (c *Cursor) ReadIO(port uint16, _ clock.VideoTs) (byte, bus.WaitStates, bool) {
	if !c.decoder.Match(port) {
		return 0, 0, false
	}
	return c.state.bits, 0, true
}

// MultiJoystick performs runtime dispatch across a configured joystick
// variant, for hosts that let the user pick the interface at runtime
// rather than at compile time, per spec §4.8.
type MultiJoystick struct {
	active bus.Device
}

// NewMultiJoystick wires active as the currently selected variant.
func NewMultiJoystick(active bus.Device) *MultiJoystick {
	return &MultiJoystick{active: active}
}

// SetActive swaps the currently selected variant.
func (m *MultiJoystick) SetActive(d bus.Device) {
	m.active = d
}

func (m *MultiJoystick) ReadIO(port uint16, ts clock.VideoTs) (byte, bus.WaitStates, bool) {
	if m.active == nil {
		return 0, 0, false
	}
	return m.active.ReadIO(port, ts)
}

func (m *MultiJoystick) WriteIO(port uint16, value byte, ts clock.VideoTs) (bus.WaitStates, bool) {
	if m.active == nil {
		return 0, false
	}
	return m.active.WriteIO(port, value, ts)
}

func (m *MultiJoystick) Reset(ts clock.VideoTs) {
	if m.active != nil {
		m.active.Reset(ts)
	}
}

func (m *MultiJoystick) UpdateTimestamp(ts clock.VideoTs) {
	if m.active != nil {
		m.active.UpdateTimestamp(ts)
	}
}

func (m *MultiJoystick) NextFrame(ts clock.VideoTs) {
	if m.active != nil {
		m.active.NextFrame(ts)
	}
}
