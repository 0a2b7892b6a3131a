package tape

import (
	"io"

	"github.com/royaltm/go-spectrusty/tap"
)

// pauseThreshold is the pulse width above which the recorder treats an
// edge as the inter-block silence rather than tape data, closing out
// whatever chunk it has been accumulating.
const pauseThreshold = tap.PauseTStates / 2

// recorder accumulates the pulse widths produced by the host's MIC
// output and, once a full chunk's worth has arrived (recognised by the
// trailing pause pulse), decodes and writes it out as a TapChunk, per
// spec §4.6's write_pulses_as_tap_chunks.
type recorder struct {
	cw     *tap.ChunkWriter
	pulses []uint32
}

func newRecorder(w io.Writer) *recorder {
	return &recorder{cw: tap.NewChunkWriter(w)}
}

// pushPulse feeds one more edge-to-edge pulse width from the host. It
// returns an error only if writing a decoded chunk fails; pulses that do
// not decode into a chunk are silently dropped, matching a cassette
// deck's own tolerance of noise.
func (rec *recorder) pushPulse(width uint32) error {
	if width >= pauseThreshold {
		return rec.flush()
	}
	rec.pulses = append(rec.pulses, width)
	return nil
}

// flush attempts to decode whatever pulses have been accumulated into a
// chunk and write it out, then clears the buffer regardless of outcome.
func (rec *recorder) flush() error {
	defer func() { rec.pulses = rec.pulses[:0] }()

	if len(rec.pulses) == 0 {
		return nil
	}

	chunk, err := tap.DecodePulses(rec.pulses)
	if err != nil {
		return nil
	}
	return rec.cw.Write(chunk)
}

func (rec *recorder) reset(w io.Writer) {
	rec.cw = tap.NewChunkWriter(w)
	rec.pulses = rec.pulses[:0]
}
