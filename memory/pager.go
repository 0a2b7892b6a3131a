// Package memory implements the 16 KiB paged-memory model with EX-ROM
// overlays described in spec §4.2: a single contiguous owned byte store
// of ROM and RAM banks, four page windows that can each be repointed at
// any bank, and a one-at-a-time immutable overlay that can shadow a page
// without disturbing its underlying bank binding.
package memory

import (
	"fmt"
	"log/slog"

	"github.com/royaltm/go-spectrusty/bits"
)

// BankKind distinguishes a page's underlying bank type. It reflects the
// bank bound to the page, not whatever overlay might currently shadow it.
type BankKind uint8

const (
	KindROM BankKind = iota
	KindRAM
)

// pageSlot records, for one of the four 16 KiB page windows, the offset
// of its underlying bank within the pager's owned store. Go slices carry
// no stable identity to "re-derive" after a raw copy the way a pointer
// would, so the pager keeps the offset explicitly and always recomputes
// the live slice from (store, offset) - this is what makes Clone's
// pointer-fixup invariant (§4.2, §9) hold trivially.
type pageSlot struct {
	storeOffset int
	readOnly    bool
	kind        BankKind
	bankIndex   int
}

// Pager implements the MemoryPager described in spec §3/§4.2.
type Pager struct {
	store        []byte
	romBankCount int
	ramBankCount int
	pages        [4]pageSlot

	// overlayPage is the page index currently shadowed by overlay, or -1
	// if no overlay is mounted. At most one overlay is mounted at a time,
	// matching the invariant in spec §3.
	overlayPage int
	overlay     *ExRom
}

// New allocates a pager with romBankCount ROM banks and ramBankCount RAM
// banks, all 16 KiB each. Pages start unmapped: every page slot is the
// zero slot, which points at the start of the store (ROM bank 0 when
// romBankCount > 0) with kind KindROM but not marked read-only; callers
// are expected to map all four pages before using the pager.
func New(romBankCount, ramBankCount int) *Pager {
	return &Pager{
		store:        make([]byte, (romBankCount+ramBankCount)*PageSize),
		romBankCount: romBankCount,
		ramBankCount: ramBankCount,
		overlayPage:  -1,
	}
}

func (p *Pager) romOffset(bank int) int {
	return bank * PageSize
}

func (p *Pager) ramOffset(bank int) int {
	return (p.romBankCount+bank)*PageSize
}

func validatePage(page int) error {
	if page < 0 || page > 3 {
		return &Error{Kind: InvalidPageIndex, Index: page}
	}
	return nil
}

// MapRomBank repoints page at ROM bank. If an overlay is currently
// mounted at page, only the saved underlying pointer is rewritten - the
// effective contents remain the overlay until it is unmounted.
func (p *Pager) MapRomBank(bank, page int) error {
	if err := validatePage(page); err != nil {
		return err
	}
	if bank < 0 || bank >= p.romBankCount {
		return &Error{Kind: InvalidBankIndex, Index: bank}
	}
	p.pages[page] = pageSlot{
		storeOffset: p.romOffset(bank),
		readOnly:    true,
		kind:        KindROM,
		bankIndex:   bank,
	}
	return nil
}

// MapRamBank repoints page at RAM bank, with the same overlay-preserving
// behaviour as MapRomBank.
func (p *Pager) MapRamBank(bank, page int) error {
	if err := validatePage(page); err != nil {
		return err
	}
	if bank < 0 || bank >= p.ramBankCount {
		return &Error{Kind: InvalidBankIndex, Index: bank}
	}
	p.pages[page] = pageSlot{
		storeOffset: p.ramOffset(bank),
		readOnly:    false,
		kind:        KindRAM,
		bankIndex:   bank,
	}
	return nil
}

// MapExrom mounts ex as an overlay shadowing page, unmounting any
// previously mounted overlay first (only one is ever active). The page's
// underlying bank binding is untouched and resumes once the overlay is
// unmounted.
func (p *Pager) MapExrom(ex *ExRom, page int) error {
	if err := validatePage(page); err != nil {
		return err
	}
	if p.overlay != nil {
		p.overlayPage = -1
		p.overlay = nil
	}
	p.overlayPage = page
	p.overlay = ex
	return nil
}

// UnmapExrom unmounts ex if, and only if, it is the currently mounted
// overlay, so the page's saved bank pointer and RO flag take effect
// again; otherwise it is a no-op.
func (p *Pager) UnmapExrom(ex *ExRom) {
	if p.overlay != ex {
		return
	}
	p.overlayPage = -1
	p.overlay = nil
}

func (p *Pager) effectiveSlice(page int) []byte {
	if page == p.overlayPage {
		return p.overlay.Bytes()
	}
	off := p.pages[page].storeOffset
	return p.store[off : off+PageSize]
}

func (p *Pager) effectiveReadOnly(page int) bool {
	if page == p.overlayPage {
		return true
	}
	return p.pages[page].readOnly
}

// Read returns the byte at addr.
func (p *Pager) Read(addr uint16) byte {
	page := addr >> 14
	return p.effectiveSlice(int(page))[addr&0x3FFF]
}

// Read16 returns the little-endian word at addr; it may straddle two
// page windows.
func (p *Pager) Read16(addr uint16) uint16 {
	lo := p.Read(addr)
	hi := p.Read(addr + 1)
	return bits.Combine(hi, lo)
}

// Write writes v at addr; writes falling in a read-only page are
// silently discarded.
func (p *Pager) Write(addr uint16, v byte) {
	page := int(addr >> 14)
	if p.effectiveReadOnly(page) {
		slog.Warn("Writing to a read-only page", "addr", fmt.Sprintf("0x%04X", addr), "value", fmt.Sprintf("0x%02X", v))
		return
	}
	p.effectiveSlice(page)[addr&0x3FFF] = v
}

// Write16 writes the little-endian word v at addr; each byte respects
// its own page's RO flag independently, so a straddled write can
// partially succeed.
func (p *Pager) Write16(addr uint16, v uint16) {
	p.Write(addr, bits.Low(v))
	p.Write(addr+1, bits.High(v))
}

// PageKind reports the BankKind of the bank currently bound to page
// (ignoring any mounted overlay).
func (p *Pager) PageKind(page int) BankKind {
	return p.pages[page].kind
}

// IsOverlayed reports whether page is currently shadowed by an EX-ROM
// overlay.
func (p *Pager) IsOverlayed(page int) bool {
	return page == p.overlayPage
}

// PageRef returns the page's current effective 16 KiB contents
// (overlay, if mounted, otherwise the bound bank).
func (p *Pager) PageRef(page int) []byte {
	return p.effectiveSlice(page)
}

// RomBankRef returns the raw contents of ROM bank i.
func (p *Pager) RomBankRef(i int) ([]byte, error) {
	if i < 0 || i >= p.romBankCount {
		return nil, &Error{Kind: InvalidBankIndex, Index: i}
	}
	off := p.romOffset(i)
	return p.store[off : off+PageSize], nil
}

// RamBankRef returns the raw contents of RAM bank i.
func (p *Pager) RamBankRef(i int) ([]byte, error) {
	if i < 0 || i >= p.ramBankCount {
		return nil, &Error{Kind: InvalidBankIndex, Index: i}
	}
	off := p.ramOffset(i)
	return p.store[off : off+PageSize], nil
}

// ScreenRef is a convenience wrapper over RamBankRef for reading a
// display bank (bank 5 for the primary screen, bank 7 for the 128K
// shadow screen) directly, independent of current paging.
func (p *Pager) ScreenRef(screenBank int) ([]byte, error) {
	return p.RamBankRef(screenBank)
}

// Clone duplicates the pager: the byte store is copied, every page's
// pointer is re-derived from the same offset within the new store (which
// the offset-based pageSlot design makes automatic), and any mounted
// overlay is shared (not copied) across the clone, per spec §4.2/§9.
func (p *Pager) Clone() *Pager {
	newStore := make([]byte, len(p.store))
	copy(newStore, p.store)
	clone := &Pager{
		store:        newStore,
		romBankCount: p.romBankCount,
		ramBankCount: p.ramBankCount,
		pages:        p.pages,
		overlayPage:  p.overlayPage,
		overlay:      p.overlay,
	}
	return clone
}
