package tape

import (
	"io"

	"github.com/royaltm/go-spectrusty/tap"
)

// player turns the chunk stream read from a TapChunkReader into a flat
// sequence of edge-to-edge pulse widths, inserting a pause pulse between
// chunks, per spec §4.6's TapChunkPulseIter.
type player struct {
	cr     *tap.ChunkReader
	pulses []uint32
	pos    int
	done   bool
}

func newPlayer(r io.Reader) *player {
	return &player{cr: tap.NewChunkReader(r)}
}

// nextPulse returns the width, in T-states, of the next pulse the tape
// head would produce. It reports false once the stream of chunks is
// exhausted.
func (p *player) nextPulse() (uint32, bool) {
	for {
		if p.pos < len(p.pulses) {
			w := p.pulses[p.pos]
			p.pos++
			return w, true
		}
		if p.done {
			return 0, false
		}
		if !p.loadNextChunk() {
			p.done = true
			return 0, false
		}
	}
}

func (p *player) loadNextChunk() bool {
	chunk, err := p.cr.Next()
	if err != nil {
		return false
	}
	p.pulses = tap.EncodePulses(chunk)
	p.pos = 0
	return true
}

// reset discards any in-flight pulse buffer, forcing the next call to
// nextPulse to read a fresh chunk from the (possibly re-seeked) stream.
func (p *player) reset(r io.Reader) {
	p.cr = tap.NewChunkReader(r)
	p.pulses = nil
	p.pos = 0
	p.done = false
}
