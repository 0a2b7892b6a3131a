// Package mdr implements the ZX Microdrive cartridge sector format
// described in spec §6: a flat array of fixed-size sectors, each split
// into a 15-byte header block and a 528-byte data block, terminated by a
// single write-protect byte.
package mdr

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const (
	NameSize       = 10
	HeaderSize     = 15
	DataBlockSize  = 528
	SectorSize     = HeaderSize + DataBlockSize
	MaxSectors     = 254
	RecordDataSize = 512
)

// HeaderBlock is the first 15 bytes of a sector: the sector sequence
// number, the cartridge name it belongs to, and a running checksum.
type HeaderBlock struct {
	Flag      uint8
	SectorSeq uint8
	Name      [NameSize]byte
	unused    [2]byte
	Checksum  uint8
}

// DataBlock is the 528-byte remainder of a sector: a record descriptor
// (flag, block sequence, record length, name, checksum) followed by the
// 512-byte payload and its own checksum.
type DataBlock struct {
	Flag               uint8
	BlockSeq           uint8
	RecordLength       uint16
	Name               [NameSize]byte
	DescriptorChecksum uint8
	Data               [RecordDataSize]byte
	DataChecksum       uint8
}

// Sector is one 543-byte microdrive sector.
type Sector struct {
	Header HeaderBlock
	Body   DataBlock
}

// Cartridge is a full microdrive tape image: up to MaxSectors sectors
// plus the trailing write-protect byte.
type Cartridge struct {
	Sectors      []Sector
	WriteProtect bool
}

// mdrChecksum implements the microdrive's running byte checksum: bytes
// are summed, and any time the running total would reach 255 it wraps to
// 0 instead, matching the original ROM's GDOS-derived algorithm.
func mdrChecksum(data []byte) uint8 {
	sum := 0
	for _, b := range data {
		sum += int(b)
		if sum >= 255 {
			sum -= 255
		}
	}
	return uint8(sum)
}

// computeHeaderChecksum returns the checksum over the header block's
// first 14 bytes (everything but the checksum field itself).
func computeHeaderChecksum(h HeaderBlock) uint8 {
	buf := make([]byte, 0, HeaderSize-1)
	buf = append(buf, h.Flag, h.SectorSeq)
	buf = append(buf, h.Name[:]...)
	buf = append(buf, h.unused[:]...)
	return mdrChecksum(buf)
}

// computeDescriptorChecksum returns the checksum over the data block's
// record descriptor (everything before the 512-byte payload).
func computeDescriptorChecksum(d DataBlock) uint8 {
	buf := make([]byte, 0, 14)
	buf = append(buf, d.Flag, d.BlockSeq)
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], d.RecordLength)
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, d.Name[:]...)
	return mdrChecksum(buf)
}

// computeDataChecksum returns the checksum over the 512-byte payload.
func computeDataChecksum(d DataBlock) uint8 {
	return mdrChecksum(d.Data[:])
}

// NewSector builds a sector for seq (counting down from the cartridge's
// sector count to 1, per the original firmware's convention), name and
// payload, with all three checksums computed.
func NewSector(seq uint8, name string, payload [RecordDataSize]byte) Sector {
	var nameBytes [NameSize]byte
	copy(nameBytes[:], name)

	h := HeaderBlock{Flag: 1, SectorSeq: seq, Name: nameBytes}
	h.Checksum = computeHeaderChecksum(h)

	d := DataBlock{Flag: 2, BlockSeq: seq, RecordLength: RecordDataSize, Name: nameBytes, Data: payload}
	d.DescriptorChecksum = computeDescriptorChecksum(d)
	d.DataChecksum = computeDataChecksum(d)

	return Sector{Header: h, Body: d}
}

// VerifyHeader reports whether the header block's checksum matches its
// contents.
func (s Sector) VerifyHeader() bool {
	return s.Header.Checksum == computeHeaderChecksum(s.Header)
}

// VerifyDescriptor reports whether the data block's descriptor checksum
// matches its contents.
func (s Sector) VerifyDescriptor() bool {
	return s.Body.DescriptorChecksum == computeDescriptorChecksum(s.Body)
}

// VerifyData reports whether the data block's payload checksum matches
// its contents.
func (s Sector) VerifyData() bool {
	return s.Body.DataChecksum == computeDataChecksum(s.Body)
}

var (
	// ErrTruncated indicates the stream ended before a full sector (or
	// the trailing write-protect byte) could be read.
	ErrTruncated = errors.New("mdr: truncated cartridge image")
	// ErrTooManySectors is returned by WriteCartridge when the cartridge
	// holds more than MaxSectors sectors.
	ErrTooManySectors = errors.New("mdr: cartridge exceeds 254 sectors")
)

// ReadCartridgeN reads exactly sectorCount sectors followed by the
// trailing write-protect byte. This is the primary entry point: MDR
// images carry no explicit sector count, so the host (which knows the
// cartridge geometry it configured) supplies it.
func ReadCartridgeN(r io.Reader, sectorCount int) (Cartridge, error) {
	cart := Cartridge{Sectors: make([]Sector, 0, sectorCount)}
	buf := make([]byte, SectorSize)
	for i := 0; i < sectorCount; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return Cartridge{}, errors.Wrapf(ErrTruncated, "sector %d: %v", i, err)
		}
		sector, err := decodeSector(buf)
		if err != nil {
			return Cartridge{}, errors.Wrapf(err, "sector %d", i)
		}
		cart.Sectors = append(cart.Sectors, sector)
	}

	var wp [1]byte
	if _, err := io.ReadFull(r, wp[:]); err != nil {
		return Cartridge{}, errors.Wrap(ErrTruncated, "write-protect byte")
	}
	cart.WriteProtect = wp[0] != 0
	return cart, nil
}

func decodeSector(buf []byte) (Sector, error) {
	if len(buf) != SectorSize {
		return Sector{}, errors.New("mdr: internal buffer size mismatch")
	}
	var s Sector
	s.Header.Flag = buf[0]
	s.Header.SectorSeq = buf[1]
	copy(s.Header.Name[:], buf[2:12])
	copy(s.Header.unused[:], buf[12:14])
	s.Header.Checksum = buf[14]

	body := buf[HeaderSize:]
	s.Body.Flag = body[0]
	s.Body.BlockSeq = body[1]
	s.Body.RecordLength = binary.LittleEndian.Uint16(body[2:4])
	copy(s.Body.Name[:], body[4:14])
	s.Body.DescriptorChecksum = body[14]
	copy(s.Body.Data[:], body[15:15+RecordDataSize])
	s.Body.DataChecksum = body[15+RecordDataSize]

	return s, nil
}

func encodeSector(s Sector) []byte {
	buf := make([]byte, SectorSize)
	buf[0] = s.Header.Flag
	buf[1] = s.Header.SectorSeq
	copy(buf[2:12], s.Header.Name[:])
	copy(buf[12:14], s.Header.unused[:])
	buf[14] = s.Header.Checksum

	body := buf[HeaderSize:]
	body[0] = s.Body.Flag
	body[1] = s.Body.BlockSeq
	binary.LittleEndian.PutUint16(body[2:4], s.Body.RecordLength)
	copy(body[4:14], s.Body.Name[:])
	body[14] = s.Body.DescriptorChecksum
	copy(body[15:15+RecordDataSize], s.Body.Data[:])
	body[15+RecordDataSize] = s.Body.DataChecksum

	return buf
}

// WriteCartridge serialises cart back into the on-disk MDR layout.
func WriteCartridge(w io.Writer, cart Cartridge) error {
	if len(cart.Sectors) > MaxSectors {
		return ErrTooManySectors
	}
	for i, s := range cart.Sectors {
		if _, err := w.Write(encodeSector(s)); err != nil {
			return errors.Wrapf(err, "sector %d", i)
		}
	}
	wp := byte(0)
	if cart.WriteProtect {
		wp = 1
	}
	_, err := w.Write([]byte{wp})
	return errors.Wrap(err, "write-protect byte")
}
