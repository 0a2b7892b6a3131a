package clock

// ContentionFunc computes the wait-state count for an access at video
// position (vc, hc) touching the 16-bit bus address addr. highRAMContended
// reports whether, for paging-capable models, the bank currently mapped
// at 0xC000-0xFFFF is itself one of the contended RAM banks; models
// without a page-3 banking scheme ignore it.
type ContentionFunc func(vc, hc int16, addr uint16, highRAMContended bool) uint16

// contentionPattern is the classic ULA contention delay, repeating every
// 8 T-states during the 128 T-states a line spends fetching pixel+attribute
// bytes for the display.
var contentionPattern = [8]uint16{6, 5, 4, 3, 2, 1, 0, 0}

func patternDelay(hc int16) uint16 {
	idx := hc
	if idx < 0 {
		idx = -idx
	}
	return contentionPattern[idx%8]
}

// contendedBank48 reports whether addr falls in the single contended
// 16 KiB bank shared by 16K/48K/Timex machines.
func contendedBank48(addr uint16) bool {
	return addr >= 0x4000 && addr <= 0x7FFF
}

// contend48 is the 48K/16K contention predicate: contention applies to
// the fixed screen bank during the 192 visible scanlines (vc 64-255, see
// Model48K.FirstPixelLine), for the 128 T-states of each line's
// pixel+attribute fetch window.
func contend48(vc, hc int16, addr uint16, _ bool) uint16 {
	if vc < 64 || vc >= 64+192 {
		return 0
	}
	if hc < 0 || hc >= 128 {
		return 0
	}
	if !contendedBank48(addr) {
		return 0
	}
	return patternDelay(hc)
}

// contend128 is the 128K/+2 contention predicate: the fixed screen bank
// (0x4000-0x7FFF) is always contended as in contend48; additionally, if
// an odd RAM bank (1,3,5,7 - the contended bank set on 128K hardware) is
// paged at 0xC000-0xFFFF, that window is contended too. The visible
// scanlines are vc 63-254 (Model128K.FirstPixelLine).
func contend128(vc, hc int16, addr uint16, highRAMContended bool) uint16 {
	if vc < 63 || vc >= 63+192 || hc < 0 || hc >= 128 {
		return 0
	}
	if contendedBank48(addr) {
		return patternDelay(hc)
	}
	if highRAMContended && addr >= 0xC000 {
		return patternDelay(hc)
	}
	return 0
}

// contendPlus3 matches the 128K pattern for memory; +2A/+3 differ only in
// not contending the long slot of even-port I/O, which ModelPlus2A3
// expresses through EvenIOContended=false (see Clock.AddIO). The
// memory-contention shape itself is unchanged from contend128.
func contendPlus3(vc, hc int16, addr uint16, highRAMContended bool) uint16 {
	return contend128(vc, hc, addr, highRAMContended)
}

// contendTimex is the Timex/SCLD contention predicate: the contended
// window is wider (it must also cover the second, hi-colour/hi-res
// shadow screen bank fetch), spanning a full 176 T-states per visible line
// (vc 64-255, ModelTimex.FirstPixelLine).
func contendTimex(vc, hc int16, addr uint16, _ bool) uint16 {
	if vc < 64 || vc >= 64+192 || hc < 0 || hc >= 176 {
		return 0
	}
	if !contendedBank48(addr) {
		return 0
	}
	return patternDelay(hc)
}

// Model describes the timing of one member of the ZX Spectrum family:
// scanlines per frame, T-states per scanline, and its contention rule.
type Model struct {
	Name string

	TStatesPerLine int16
	LinesPerFrame  int16

	// FirstPixelLine is the vc of the first visible (non-border-only) scanline.
	FirstPixelLine int16
	// PixelLines is the number of visible scanlines (typically 192).
	PixelLines int16

	// EvenIOContended reports whether an IO access to an even port number
	// receives the single long contended slot described in §4.1; +2A/+3
	// disable this (their ULA doesn't contend even I/O the way 48K/128K do).
	EvenIOContended bool

	Contend ContentionFunc
}

// FrameTStates is the total T-state count of one frame under this model.
func (m Model) FrameTStates() FTs {
	return FTs(m.TStatesPerLine) * FTs(m.LinesPerFrame)
}

// VtsToTstates converts a VideoTs to a monotonic FTs count.
func (m Model) VtsToTstates(t VideoTs) FTs {
	return FTs(t.VC)*FTs(m.TStatesPerLine) + FTs(t.HC)
}

// TstatesToVts converts a monotonic FTs count back to a VideoTs.
func (m Model) TstatesToVts(f FTs) VideoTs {
	line := int32(f) / int32(m.TStatesPerLine)
	hc := int32(f) % int32(m.TStatesPerLine)
	if hc < 0 {
		hc += int32(m.TStatesPerLine)
		line--
	}
	return VideoTs{VC: int16(line), HC: int16(hc)}
}

// VtsAdd adds delta T-states to t, renormalising hc back into
// [0, TStatesPerLine) by carrying into vc.
func (m Model) VtsAdd(t VideoTs, delta int32) VideoTs {
	return m.TstatesToVts(m.VtsToTstates(t) + FTs(delta))
}

// VtsSaturatingSubFrame subtracts one frame's worth of T-states from t,
// used at frame-end bookkeeping to keep timestamps bounded.
func (m Model) VtsSaturatingSubFrame(t VideoTs) VideoTs {
	return m.VtsAdd(t, -int32(m.FrameTStates()))
}

// IsEof reports whether t has reached or passed the end of the frame.
func (m Model) IsEof(t VideoTs) bool {
	return t.VC >= m.LinesPerFrame
}

// ScreenSizePixels returns the pixel dimensions of a rendered frame given
// a border width in pixels on each side.
func (m Model) ScreenSizePixels(border int) (width, height int) {
	width = 256 + 2*border
	height = int(m.PixelLines) + 2*border
	return
}

// Predefined models, one per emulated family member.
var (
	Model48K = Model{
		Name:            "48K",
		TStatesPerLine:  224,
		LinesPerFrame:   312,
		FirstPixelLine:  64,
		PixelLines:      192,
		EvenIOContended: true,
		Contend:         contend48,
	}

	Model128K = Model{
		Name:            "128K",
		TStatesPerLine:  228,
		LinesPerFrame:   311,
		FirstPixelLine:  63,
		PixelLines:      192,
		EvenIOContended: true,
		Contend:         contend128,
	}

	ModelPlus2A3 = Model{
		Name:            "+2A/+3",
		TStatesPerLine:  228,
		LinesPerFrame:   311,
		FirstPixelLine:  63,
		PixelLines:      192,
		EvenIOContended: false,
		Contend:         contendPlus3,
	}

	ModelTimex = Model{
		Name:            "Timex",
		TStatesPerLine:  224,
		LinesPerFrame:   312,
		FirstPixelLine:  64,
		PixelLines:      192,
		EvenIOContended: true,
		Contend:         contendTimex,
	}
)
