package serial

import (
	"log/slog"

	"github.com/royaltm/go-spectrusty/clock"
)

// RS232Window is the handshake window the 128K's RS-232 bit-banged
// protocol uses between consecutive bit edges.
var RS232Window = HandshakeWindow{Min: 400, Max: 40000}

// RS232Option configures an RS232 device at construction.
type RS232Option func(*RS232)

// WithLogger overrides the default logger used to report assembled
// outgoing lines.
func WithLogger(logger *slog.Logger) RS232Option {
	return func(r *RS232) { r.logger = logger }
}

// RS232 implements a minimal bit-banged RS-232 link: it has no far end
// of its own, so outgoing bits are assembled into bytes and logged as
// text. CTS is asserted at construction and after Reset and is never
// deasserted, so ReadData always reports it asserted.
type RS232 struct {
	logger *slog.Logger

	shiftIn  uint8
	bitCount int
	lastEdge clock.FTs
	haveEdge bool

	line []byte
	cts  bool
}

// NewRS232 constructs an RS232 device with CTS asserted (ready to
// receive).
func NewRS232(opts ...RS232Option) *RS232 {
	r := &RS232{logger: slog.Default(), cts: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadData reports the current CTS state.
func (r *RS232) ReadData(ts clock.FTs) bool {
	r.observeEdge(ts)
	return r.cts
}

// WriteData shifts in one bit of an incoming byte (LSB first), logging
// the assembled byte as text once 8 bits have accumulated.
func (r *RS232) WriteData(ts clock.FTs, bit bool) {
	r.observeEdge(ts)

	if bit {
		r.shiftIn |= 1 << uint(r.bitCount)
	}
	r.bitCount++
	if r.bitCount < 8 {
		return
	}

	b := r.shiftIn
	r.shiftIn = 0
	r.bitCount = 0

	if b == 0 || b == '\n' || b == '\r' {
		if len(r.line) > 0 {
			r.logger.Info("serial", "line", string(r.line))
			r.line = r.line[:0]
		}
		return
	}
	r.line = append(r.line, b)
}

func (r *RS232) observeEdge(ts clock.FTs) {
	if r.haveEdge {
		delta := ts - r.lastEdge
		if delta < RS232Window.Min || delta > RS232Window.Max {
			r.shiftIn = 0
			r.bitCount = 0
		}
	}
	r.lastEdge = ts
	r.haveEdge = true
}

func (r *RS232) Reset() {
	r.shiftIn = 0
	r.bitCount = 0
	r.haveEdge = false
	r.line = r.line[:0]
	r.cts = true
}
