// Package serial implements the 128K AY-port-A serial peripherals
// described in spec §4.8: a keypad and an RS-232 link, each a small
// handshake state machine, plus the glue that multiplexes both onto the
// AY chip's single 8-bit port A.
package serial

import "github.com/royaltm/go-spectrusty/clock"

// Handshake timing windows, in T-states, per spec §4.8: an edge that
// falls outside [Min, Max] of the previous one resets the device's
// transfer state (the keypad restarts its scan at button 0, the RS-232
// link discards its partially assembled byte); the edge itself is still
// processed.
type HandshakeWindow struct {
	Min, Max clock.FTs
}

// Device is the contract a half-duplex serial peripheral presents to the
// AY-port-A glue: reading samples the line the peripheral is currently
// driving, writing drives the peripheral's input line.
type Device interface {
	// ReadData samples the peripheral's output bit at ts (for RS232 this
	// is its CTS line, routed by Serial128 to the CTS bit of port A).
	ReadData(ts clock.FTs) (bit bool)
	// WriteData drives the peripheral's input bit at ts (for RS232 the
	// data bit, which Serial128 takes from the RxD bit of port A).
	WriteData(ts clock.FTs, bit bool)
	Reset()
}
