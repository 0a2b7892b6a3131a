package serial

import "github.com/royaltm/go-spectrusty/clock"

// Port-A bit assignments for the 128K's keypad/RS-232 multiplex. Real
// 128K firmware only ever drives the keypad or the RS-232 link, never
// both at once; this glue keeps them on independent bits so either can
// be exercised without reverse-engineering the exact shared-bit wiring
// used by any one ROM revision (see DESIGN.md).
const (
	bitKeypadData = 1 << 0
	bitRS232CTS   = 1 << 1
	bitRS232RxD   = 1 << 2
)

// Serial128 multiplexes the AY chip's 8-bit port A onto the keypad and
// RS-232 half-duplex devices, per spec §4.8: every port-A access samples
// or drives both attached devices through their Device interface.
type Serial128 struct {
	Keypad *Keypad
	RS232  *RS232
}

// NewSerial128 wires keypad and rs232 onto a shared port A.
func NewSerial128(keypad *Keypad, rs232 *RS232) *Serial128 {
	return &Serial128{Keypad: keypad, RS232: rs232}
}

// ReadPortA samples both devices' output bits into the port A value the
// AY chip's register 14 readback should return.
func (s *Serial128) ReadPortA(ts clock.FTs) uint8 {
	var v uint8
	if s.Keypad.ReadData(ts) {
		v |= bitKeypadData
	}
	if s.RS232.ReadData(ts) {
		v |= bitRS232CTS
	}
	return v
}

// WritePortA drives both devices' input bits from a port A write.
func (s *Serial128) WritePortA(ts clock.FTs, value uint8) {
	s.Keypad.WriteData(ts, value&bitKeypadData != 0)
	s.RS232.WriteData(ts, value&bitRS232RxD != 0)
}

// Reset resets both attached devices.
func (s *Serial128) Reset() {
	s.Keypad.Reset()
	s.RS232.Reset()
}
