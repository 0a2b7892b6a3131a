package memory

// PageSize is the size of one addressable page window and one owned bank:
// 16 KiB, matching the Spectrum's four 16 KiB page windows.
const PageSize = 0x4000

// ExRom is a shared, immutable 16 KiB ROM overlay. It is never mutated
// through this handle; a pager only ever reads it. Go's garbage collector
// gives it the "longest holder among all pagers that have mounted it"
// lifetime for free - every *Pager that has mounted the overlay
// keeps its own reference, and the overlay's backing array is kept alive
// as long as any of them exist.
type ExRom struct {
	data [PageSize]byte
}

// NewExRom copies data into a new 16 KiB overlay. data must be exactly
// PageSize bytes long.
func NewExRom(data []byte) (*ExRom, error) {
	if len(data) != PageSize {
		return nil, &Error{Kind: InvalidBankIndex, Index: len(data)}
	}
	ex := &ExRom{}
	copy(ex.data[:], data)
	return ex, nil
}

// Bytes returns the overlay's 16 KiB of immutable data.
func (e *ExRom) Bytes() []byte {
	return e.data[:]
}
