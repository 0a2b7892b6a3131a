// Package clock implements the cycle-accurate timestamp and contention
// model shared by every memory, IO, and internal CPU cycle in the core.
package clock

import "fmt"

// VideoTs is a monotonic video timestamp: a scanline counter and a
// horizontal T-state offset within that scanline. Ordering is
// lexicographic: (vc, hc) < (vc', hc') iff vc < vc' or (vc == vc' && hc < hc').
type VideoTs struct {
	VC int16
	HC int16
}

func (t VideoTs) String() string {
	return fmt.Sprintf("(%d, %d)", t.VC, t.HC)
}

// Less reports whether t sorts before other.
func (t VideoTs) Less(other VideoTs) bool {
	if t.VC != other.VC {
		return t.VC < other.VC
	}
	return t.HC < other.HC
}

// Compare returns -1, 0, or 1 as t is less than, equal to, or greater
// than other.
func Compare(t, other VideoTs) int {
	switch {
	case t.Less(other):
		return -1
	case other.Less(t):
		return 1
	default:
		return 0
	}
}

// FTs is a monotonic T-state count, derived from a VideoTs by a Model's
// conversion functions. Frame-boundary bookkeeping subtracts
// FrameTStates from every retained FTs/VideoTs so long emulation runs
// never overflow.
type FTs int32
