package tap

import (
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
)

// metadataSize is the length of a header chunk's Data field: block type
// (1), name (10), data length (2), and two further type-specific
// parameters (2 each), per spec §3.
const metadataSize = 17

// BlockType is the type of file a TAP header chunk describes.
type BlockType uint8

const (
	BlockProgram BlockType = iota
	BlockNumberArray
	BlockCharArray
	BlockCode
)

func (b BlockType) String() string {
	switch b {
	case BlockProgram:
		return "Program"
	case BlockNumberArray:
		return "Number array"
	case BlockCharArray:
		return "Character array"
	case BlockCode:
		return "Bytes"
	default:
		return "Unknown"
	}
}

func parseBlockType(v uint8) (BlockType, error) {
	if v > uint8(BlockCode) {
		return 0, errors.Errorf("tap: unknown block type %d", v)
	}
	return BlockType(v), nil
}

// Header is the metadata payload of a TAP header chunk, per spec §3: a
// block type, a 10-byte space-padded name, a 2-byte data length, and two
// further 2-byte type-specific parameters — start address (Code) or
// program line (Program) in Par1, VARS offset (Program) or array-name
// byte (NumberArray/CharArray) in Par2.
type Header struct {
	BlockType BlockType
	Name      [10]byte
	Length    uint16
	Par1      uint16
	Par2      uint16
}

// NameString returns Name with its trailing padding spaces trimmed.
func (h Header) NameString() string {
	return strings.TrimRight(string(h.Name[:]), " ")
}

// Start returns the starting address (Code) or program line (Program)
// this header encodes.
func (h Header) Start() uint16 {
	return h.Par1
}

// Vars returns the VARS offset a Program header encodes.
func (h Header) Vars() uint16 {
	return h.Par2
}

// ArrayName returns the BASIC array variable name a NumberArray/CharArray
// header names.
func (h Header) ArrayName() byte {
	return byte(h.Par2)&0x1F | 0x40
}

// ToChunk encodes h as a TAP header chunk.
func (h Header) ToChunk() Chunk {
	data := make([]byte, metadataSize)
	data[0] = uint8(h.BlockType)
	copy(data[1:11], h.Name[:])
	binary.LittleEndian.PutUint16(data[11:13], h.Length)
	binary.LittleEndian.PutUint16(data[13:15], h.Par1)
	binary.LittleEndian.PutUint16(data[15:17], h.Par2)
	return NewChunk(FlagHeader, data)
}

// ParseHeader decodes a header chunk's Data field back into a Header.
func ParseHeader(data []byte) (Header, error) {
	if len(data) != metadataSize {
		return Header{}, errors.Errorf("tap: invalid header length %d", len(data))
	}
	blockType, err := parseBlockType(data[0])
	if err != nil {
		return Header{}, err
	}
	var h Header
	h.BlockType = blockType
	copy(h.Name[:], data[1:11])
	h.Length = binary.LittleEndian.Uint16(data[11:13])
	h.Par1 = binary.LittleEndian.Uint16(data[13:15])
	h.Par2 = binary.LittleEndian.Uint16(data[15:17])
	return h, nil
}

// IsHead reports whether c is a well-formed TAP header chunk: flag 0x00
// and exactly 17 metadata bytes.
func (c Chunk) IsHead() bool {
	return c.Flag == FlagHeader && len(c.Data) == metadataSize
}

// IsData reports whether c is a TAP data chunk (flag 0xFF); unlike IsHead
// this places no constraint on payload length.
func (c Chunk) IsData() bool {
	return c.Flag == FlagData
}

// Header decodes c's metadata into a Header; only valid when IsHead.
func (c Chunk) Header() (Header, error) {
	if !c.IsHead() {
		return Header{}, errors.New("tap: chunk is not a header block")
	}
	return ParseHeader(c.Data)
}

// DataBlockLen returns the length, in bytes, of the data chunk this
// header announces, or false if c is not a header chunk.
func (c Chunk) DataBlockLen() (uint16, bool) {
	if !c.IsHead() {
		return 0, false
	}
	return binary.LittleEndian.Uint16(c.Data[11:13]), true
}

// Start returns the header's Par1 field (start address or program line),
// or false if c is not a header chunk.
func (c Chunk) Start() (uint16, bool) {
	if !c.IsHead() {
		return 0, false
	}
	return binary.LittleEndian.Uint16(c.Data[13:15]), true
}

// BlockType returns the header's block type, or false if c is not a
// header chunk.
func (c Chunk) BlockType() (BlockType, bool) {
	if !c.IsHead() {
		return 0, false
	}
	bt, err := parseBlockType(c.Data[0])
	if err != nil {
		return 0, false
	}
	return bt, true
}
