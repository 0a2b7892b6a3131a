// Package ula implements the top-level integrator described in spec §4.3:
// it drives a host-supplied Cpu over a Memory+IO interface it implements
// itself, produces the pixel buffer and audio for the frame, and raises
// the maskable interrupt for the next one.
package ula

import "github.com/royaltm/go-spectrusty/clock"

// Break is a typed, non-error return from Cpu.ExecuteWithLimit
// indicating a host-supplied predicate fired (e.g. a debugger
// breakpoint), per spec §6.
type Break struct {
	Reason string
}

func (b Break) Error() string { return "ula: cpu break: " + b.Reason }

// Cpu is the external CPU contract the ULA drives, per spec §6. The
// core never implements this itself; hosts plug in their own Z80 core.
// The Clock argument is the concrete clock.Clock (see that package):
// unlike Cpu and MemoryIO, nothing in this codebase needs more than one
// implementation of it, so it isn't abstracted behind an interface.
type Cpu interface {
	Reset()

	PC() uint16
	SetPC(pc uint16)
	IsHalted() bool
	Halt()

	// ExecuteWithLimit runs io/clk until the clock reaches or passes
	// limitTs, or until a configured break fires.
	ExecuteWithLimit(io MemoryIO, clk *clock.Clock, limitTs clock.VideoTs) error

	// IsAfterPrefix reports whether a DD/FD/CB prefix byte has been
	// latched with its opcode not yet executed; the ULA must not treat
	// the frame as finished while this holds.
	IsAfterPrefix() bool
}

// MemoryIO is the Memory+IO contract the Cpu consumes from the ULA,
// per spec §6.
type MemoryIO interface {
	ReadMem(addr uint16, ts clock.VideoTs) uint8
	ReadMem16(addr uint16, ts clock.VideoTs) uint16
	ReadOpcode(pc uint16, ir uint16, ts clock.VideoTs) uint8
	WriteMem(addr uint16, value uint8, ts clock.VideoTs)
	ReadDebug(addr uint16) uint8

	IsIrq(ts clock.VideoTs) bool
	ReadIO(port uint16, ts clock.VideoTs) (value uint8, wait *uint16)
	WriteIO(port uint16, value uint8, ts clock.VideoTs) (brk *Break, wait *uint16)
}
