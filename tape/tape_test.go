package tape

import (
	"io"
	"testing"

	"github.com/royaltm/go-spectrusty/tap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSeeker is a minimal in-memory io.ReadWriteSeeker, grown on demand
// by writes past its current length, for driving Tape in tests without
// a real file.
type memSeeker struct {
	buf []byte
	pos int64
}

func (m *memSeeker) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *memSeeker) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	n := copy(m.buf[m.pos:end], p)
	m.pos = end
	return n, nil
}

func (m *memSeeker) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = m.pos
	case io.SeekEnd:
		base = int64(len(m.buf))
	}
	m.pos = base + offset
	return m.pos, nil
}

func TestPlayerEmitsPulsesForOneChunk(t *testing.T) {
	chunk := tap.NewChunk(tap.FlagData, []byte{1, 2, 3})
	mem := &memSeeker{}
	require.NoError(t, tap.NewChunkWriter(mem).Write(chunk))
	mem.pos = 0

	tp := NewTape(mem)
	tp.SetRunning(true)

	w, ok := tp.NextPulse()
	require.True(t, ok)
	assert.EqualValues(t, tap.PilotPulse, w)

	count := 1
	for {
		_, ok := tp.NextPulse()
		if !ok {
			break
		}
		count++
	}
	assert.Greater(t, count, tap.PilotCountData)
}

func TestTapeStoppedProducesNoPulses(t *testing.T) {
	chunk := tap.NewChunk(tap.FlagData, []byte{1})
	mem := &memSeeker{}
	require.NoError(t, tap.NewChunkWriter(mem).Write(chunk))
	mem.pos = 0

	tp := NewTape(mem)
	_, ok := tp.NextPulse()
	assert.False(t, ok)
}

func TestRecorderDecodesPushedPulsesIntoChunk(t *testing.T) {
	chunk := tap.NewChunk(tap.FlagData, []byte{0xAB, 0xCD})
	pulses := tap.EncodePulses(chunk)

	mem := &memSeeker{}
	tp := NewTape(mem)
	require.NoError(t, tp.SwitchToWriter())
	tp.SetRunning(true)

	for _, p := range pulses {
		require.NoError(t, tp.PushPulse(p))
	}

	mem.pos = 0
	got, err := tap.NewChunkReader(mem).Next()
	require.NoError(t, err)
	assert.Equal(t, chunk.Flag, got.Flag)
	assert.Equal(t, chunk.Data, got.Data)
	assert.True(t, got.Verify())
}

func TestSwitchToReaderFlushesInFlightRecording(t *testing.T) {
	chunk := tap.NewChunk(tap.FlagHeader, []byte{9, 9})
	pulses := tap.EncodePulses(chunk)
	// drop the trailing pause pulse so the chunk is still "in flight"
	pulses = pulses[:len(pulses)-1]

	mem := &memSeeker{}
	tp := NewTape(mem)
	require.NoError(t, tp.SwitchToWriter())
	tp.SetRunning(true)
	for _, p := range pulses {
		require.NoError(t, tp.PushPulse(p))
	}

	require.NoError(t, tp.SwitchToReader())
	assert.Equal(t, ModeReader, tp.Mode())

	mem.pos = 0
	got, err := tap.NewChunkReader(mem).Next()
	require.NoError(t, err)
	assert.Equal(t, chunk.Flag, got.Flag)
}

func TestSwitchToWriterDiscardsPartiallyPlayedBuffer(t *testing.T) {
	chunk := tap.NewChunk(tap.FlagData, []byte{1, 2})
	mem := &memSeeker{}
	require.NoError(t, tap.NewChunkWriter(mem).Write(chunk))
	mem.pos = 0

	tp := NewTape(mem)
	tp.SetRunning(true)
	_, _ = tp.NextPulse()
	_, _ = tp.NextPulse()

	require.NoError(t, tp.SwitchToWriter())
	assert.Equal(t, ModeWriter, tp.Mode())
	assert.Empty(t, tp.player.pulses)
	assert.Empty(t, tp.rec.pulses)
}
