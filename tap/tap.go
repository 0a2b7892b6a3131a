// Package tap implements the ZX Spectrum TAP tape container described in
// spec §5: a flat sequence of length-prefixed chunks, each one turned
// on/off the cassette as a sequence of pilot, sync and data pulses.
package tap

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Flag byte conventions used by the standard ROM loader: 0x00 marks a
// header block, 0xFF marks a data block. Custom loaders are free to use
// other values; this package does not interpret them.
const (
	FlagHeader = 0x00
	FlagData   = 0xFF
)

// Chunk is one length-prefixed TAP block: a flag byte, a payload, and a
// trailing XOR checksum byte over flag+payload.
type Chunk struct {
	Flag     uint8
	Data     []byte
	Checksum uint8
}

// ComputeChecksum XORs flag with every payload byte, matching the
// checksum convention every ROM-compatible TAP/TZX loader uses.
func ComputeChecksum(flag uint8, data []byte) uint8 {
	sum := flag
	for _, b := range data {
		sum ^= b
	}
	return sum
}

// Verify reports whether the chunk's stored checksum matches its
// contents.
func (c Chunk) Verify() bool {
	return c.Checksum == ComputeChecksum(c.Flag, c.Data)
}

// NewChunk builds a chunk from a flag and payload, computing its
// checksum.
func NewChunk(flag uint8, data []byte) Chunk {
	return Chunk{Flag: flag, Data: data, Checksum: ComputeChecksum(flag, data)}
}

// errInvalidChunkLength is wrapped with the offending length; the error
// carries no chunk index or stream position.
var errInvalidChunkLength = errors.New("tap: chunk length must be at least 2 (flag + checksum)")

// ChunkReader reads consecutive length-prefixed chunks from a TAP stream.
type ChunkReader struct {
	r io.Reader
}

// NewChunkReader wraps r as a sequence of TAP chunks.
func NewChunkReader(r io.Reader) *ChunkReader {
	return &ChunkReader{r: r}
}

// Next reads the next chunk, or io.EOF when the stream is exhausted.
func (cr *ChunkReader) Next() (Chunk, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(cr.r, lenBuf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Chunk{}, errors.Wrap(err, "tap: truncated chunk length")
		}
		return Chunk{}, err
	}
	length := binary.LittleEndian.Uint16(lenBuf[:])
	if length < 2 {
		return Chunk{}, errors.Wrapf(errInvalidChunkLength, "got %d", length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(cr.r, body); err != nil {
		return Chunk{}, errors.Wrap(err, "tap: truncated chunk body")
	}

	return Chunk{
		Flag:     body[0],
		Data:     body[1 : length-1],
		Checksum: body[length-1],
	}, nil
}

// ChunkWriter writes chunks out in TAP's length-prefixed form.
type ChunkWriter struct {
	w io.Writer
}

// NewChunkWriter wraps w to receive TAP chunks.
func NewChunkWriter(w io.Writer) *ChunkWriter {
	return &ChunkWriter{w: w}
}

// Write emits one chunk, recomputing its checksum byte from Flag and Data
// (Chunk.Checksum is ignored on write, as real tape tools always
// regenerate it rather than trust a possibly-stale field).
func (cw *ChunkWriter) Write(c Chunk) error {
	length := uint16(len(c.Data) + 2)
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], length)
	if _, err := cw.w.Write(lenBuf[:]); err != nil {
		return errors.Wrap(err, "tap: writing chunk length")
	}
	if _, err := cw.w.Write([]byte{c.Flag}); err != nil {
		return errors.Wrap(err, "tap: writing chunk flag")
	}
	if _, err := cw.w.Write(c.Data); err != nil {
		return errors.Wrap(err, "tap: writing chunk data")
	}
	checksum := ComputeChecksum(c.Flag, c.Data)
	if _, err := cw.w.Write([]byte{checksum}); err != nil {
		return errors.Wrap(err, "tap: writing chunk checksum")
	}
	return nil
}
