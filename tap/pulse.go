package tap

import "github.com/pkg/errors"

// Standard ROM loader pulse timings, in T-states at 3.5MHz, per spec §5.
const (
	PilotPulse    = 2168
	PilotCountHdr = 8063
	PilotCountData = 3223
	Sync1Pulse    = 667
	Sync2Pulse    = 735
	Bit0Pulse     = 855
	Bit1Pulse     = 1710
	// PauseTStates is the standard inter-block silence, 1 second at 3.5MHz.
	PauseTStates = 3_500_000
)

// pilotCount returns the conventional pilot tone pulse count for a chunk,
// based on its flag byte: header blocks get a longer pilot than data
// blocks, matching the standard ROM loader's own convention.
func pilotCount(flag uint8) int {
	if flag == FlagHeader {
		return PilotCountHdr
	}
	return PilotCountData
}

// EncodePulses renders c as the sequence of edge-to-edge pulse widths (in
// T-states) a real cassette deck would produce for the standard ROM
// loader: pilot tone, two sync pulses, two pulses per data bit (MSB
// first), and a trailing pause.
func EncodePulses(c Chunk) []uint32 {
	pulses := make([]uint32, 0, pilotCount(c.Flag)+2+(len(c.Data)+2)*16+1)

	for i := 0; i < pilotCount(c.Flag); i++ {
		pulses = append(pulses, PilotPulse)
	}
	pulses = append(pulses, Sync1Pulse, Sync2Pulse)

	appendByte := func(b byte) {
		for bit := 7; bit >= 0; bit-- {
			width := uint32(Bit0Pulse)
			if b&(1<<uint(bit)) != 0 {
				width = Bit1Pulse
			}
			pulses = append(pulses, width, width)
		}
	}

	appendByte(c.Flag)
	for _, b := range c.Data {
		appendByte(b)
	}
	appendByte(c.Checksum)

	pulses = append(pulses, PauseTStates)
	return pulses
}

// pulseDecodeState walks a flat pulse stream back into chunk bytes,
// mirroring the ROM loader's own edge-counting state machine rather than
// framing by a priori known lengths — so it can recover data recorded by
// non-standard encoders, as long as they keep the same bit-pulse widths.
type pulseDecodeState struct {
	pulses []uint32
	pos    int
}

// DecodePulses is the inverse of EncodePulses: given the same flat pulse
// stream, it skips the pilot/sync pulses and reassembles the data bytes,
// returning the flag, payload and checksum byte exactly as EncodePulses
// produced them.
func DecodePulses(pulses []uint32) (Chunk, error) {
	st := &pulseDecodeState{pulses: pulses}
	st.skipPilotAndSync()

	var bytes []byte
	for st.hasByte() {
		b, ok := st.readByte()
		if !ok {
			break
		}
		bytes = append(bytes, b)
	}

	if len(bytes) < 2 {
		return Chunk{}, errors.Wrap(errInvalidChunkLength, "decoded pulse stream too short")
	}

	return Chunk{
		Flag:     bytes[0],
		Data:     bytes[1 : len(bytes)-1],
		Checksum: bytes[len(bytes)-1],
	}, nil
}

func (st *pulseDecodeState) skipPilotAndSync() {
	for st.pos < len(st.pulses) && isPilotWidth(st.pulses[st.pos]) {
		st.pos++
	}
	// two sync pulses follow the pilot tone.
	if st.pos+1 < len(st.pulses) {
		st.pos += 2
	}
}

func isPilotWidth(w uint32) bool {
	const tolerance = 50
	return w > PilotPulse-tolerance && w < PilotPulse+tolerance
}

func (st *pulseDecodeState) hasByte() bool {
	return st.pos+16 <= len(st.pulses)
}

func (st *pulseDecodeState) readByte() (byte, bool) {
	var b byte
	for bit := 0; bit < 8; bit++ {
		if st.pos+1 >= len(st.pulses) {
			return 0, false
		}
		width := st.pulses[st.pos]
		st.pos += 2
		b <<= 1
		if width > (Bit0Pulse+Bit1Pulse)/2 {
			b |= 1
		}
	}
	return b, true
}
