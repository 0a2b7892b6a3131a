package tap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkChecksumRoundTrip(t *testing.T) {
	c := NewChunk(FlagData, []byte{1, 2, 3, 4, 5})
	assert.True(t, c.Verify())

	c.Data[0] = 0xFF
	assert.False(t, c.Verify())
}

func TestChunkReaderWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	original := NewChunk(FlagHeader, []byte("ROM header payload"))

	require.NoError(t, NewChunkWriter(&buf).Write(original))

	got, err := NewChunkReader(&buf).Next()
	require.NoError(t, err)
	assert.Equal(t, original, got)
	assert.True(t, got.Verify())
}

// TestHeaderDataScenarioRoundTrip is spec §8 scenario 3: the canonical
// 19-byte header + 4-byte data example, built from
// Header{Code, name="ROM", length=2, par1=0, par2=0x8000} and
// DataChunk{flag=0xFF, bytes=[0xF3, 0xAF], checksum=0xA3}, written and
// read back intact with both chunks' inspection accessors agreeing.
func TestHeaderDataScenarioRoundTrip(t *testing.T) {
	var name [10]byte
	copy(name[:], "ROM")
	for i := 3; i < len(name); i++ {
		name[i] = ' '
	}

	header := Header{BlockType: BlockCode, Name: name, Length: 2, Par1: 0, Par2: 0x8000}
	headerChunk := header.ToChunk()
	dataChunk := NewChunk(FlagData, []byte{0xF3, 0xAF})
	require.Equal(t, uint8(0xA3), dataChunk.Checksum)

	var buf bytes.Buffer
	w := NewChunkWriter(&buf)
	require.NoError(t, w.Write(headerChunk))
	require.NoError(t, w.Write(dataChunk))

	r := NewChunkReader(&buf)
	gotHeader, err := r.Next()
	require.NoError(t, err)
	gotData, err := r.Next()
	require.NoError(t, err)
	_, err = r.Next()
	assert.Error(t, err) // exactly those two chunks

	assert.True(t, gotHeader.IsHead())
	assert.True(t, gotData.IsData())

	length, ok := gotHeader.DataBlockLen()
	require.True(t, ok)
	assert.Equal(t, uint16(2), length)

	start, ok := gotHeader.Start()
	require.True(t, ok)
	assert.Equal(t, uint16(0), start)

	bt, ok := gotHeader.BlockType()
	require.True(t, ok)
	assert.Equal(t, BlockCode, bt)

	assert.True(t, gotHeader.Verify())
	assert.True(t, gotData.Verify())
}

func TestChunkReaderRejectsTooShortLength(t *testing.T) {
	buf := bytes.NewReader([]byte{0x01, 0x00, 0xAA})
	_, err := NewChunkReader(buf).Next()
	assert.Error(t, err)
}

func TestEncodeDecodePulsesRoundTrip(t *testing.T) {
	original := NewChunk(FlagData, []byte{0x00, 0xFF, 0x55, 0xAA, 0x01})
	pulses := EncodePulses(original)

	decoded, err := DecodePulses(pulses)
	require.NoError(t, err)
	assert.Equal(t, original.Flag, decoded.Flag)
	assert.Equal(t, original.Data, decoded.Data)
	assert.Equal(t, original.Checksum, decoded.Checksum)
}

func TestMultipleChunksInStream(t *testing.T) {
	var buf bytes.Buffer
	w := NewChunkWriter(&buf)
	first := NewChunk(FlagHeader, []byte("name"))
	second := NewChunk(FlagData, []byte{1, 2, 3})
	require.NoError(t, w.Write(first))
	require.NoError(t, w.Write(second))

	r := NewChunkReader(&buf)
	got1, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, first, got1)

	got2, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, second, got2)

	_, err = r.Next()
	assert.Error(t, err) // EOF
}
