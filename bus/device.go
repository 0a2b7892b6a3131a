// Package bus models the ZX Spectrum expansion port as a linear chain of
// devices, each of which gets a chance to answer (or veto) every IO
// access before the request reaches the next link, per spec §4.7.
package bus

import "github.com/royaltm/go-spectrusty/clock"

// WaitStates is a count of additional T-states a device asks the clock
// to insert for an IO access it handled.
type WaitStates = uint16

// Device is one link in the bus chain. A read returns ok=false to mean
// "no match, delegate to the next device"; if two devices in the chain
// both answer a read, their values are combined with a bitwise AND
// (open-collector semantics). WriteIO returning handled=true stops
// propagation to the rest of the chain.
type Device interface {
	ReadIO(port uint16, ts clock.VideoTs) (value byte, wait WaitStates, ok bool)
	WriteIO(port uint16, value byte, ts clock.VideoTs) (wait WaitStates, handled bool)
	Reset(ts clock.VideoTs)
	UpdateTimestamp(ts clock.VideoTs)
	NextFrame(ts clock.VideoTs)
}

// NullDevice is the chain terminator: it never matches a port and does
// nothing on lifecycle calls. It exists so a compile-time two-element
// chain (see Link) always has a concrete type to close with, the way the
// spec's "null device" does.
type NullDevice struct{}

func (NullDevice) ReadIO(port uint16, ts clock.VideoTs) (byte, WaitStates, bool) {
	return 0, 0, false
}

func (NullDevice) WriteIO(port uint16, value byte, ts clock.VideoTs) (WaitStates, bool) {
	return 0, false
}

func (NullDevice) Reset(ts clock.VideoTs)           {}
func (NullDevice) UpdateTimestamp(ts clock.VideoTs) {}
func (NullDevice) NextFrame(ts clock.VideoTs)       {}

// Link statically composes one device in front of a tail (itself a
// Device, typically another Link or a NullDevice), mirroring the
// compile-time linear composition of spec §4.7/§9: the tail is a type
// parameter, not a slice element, so the chain's shape is fixed at
// compile time for any two devices that are themselves known types.
type Link[H Device, T Device] struct {
	Head H
	Tail T
}

func NewLink[H Device, T Device](head H, tail T) *Link[H, T] {
	return &Link[H, T]{Head: head, Tail: tail}
}

func (l *Link[H, T]) ReadIO(port uint16, ts clock.VideoTs) (byte, WaitStates, bool) {
	v1, w1, ok1 := l.Head.ReadIO(port, ts)
	v2, w2, ok2 := l.Tail.ReadIO(port, ts)
	switch {
	case ok1 && ok2:
		return v1 & v2, w1 + w2, true
	case ok1:
		return v1, w1, true
	case ok2:
		return v2, w2, true
	default:
		return 0, 0, false
	}
}

func (l *Link[H, T]) WriteIO(port uint16, value byte, ts clock.VideoTs) (WaitStates, bool) {
	if w, handled := l.Head.WriteIO(port, value, ts); handled {
		return w, true
	}
	return l.Tail.WriteIO(port, value, ts)
}

func (l *Link[H, T]) Reset(ts clock.VideoTs) {
	l.Head.Reset(ts)
	l.Tail.Reset(ts)
}

func (l *Link[H, T]) UpdateTimestamp(ts clock.VideoTs) {
	l.Head.UpdateTimestamp(ts)
	l.Tail.UpdateTimestamp(ts)
}

func (l *Link[H, T]) NextFrame(ts clock.VideoTs) {
	l.Head.NextFrame(ts)
	l.Tail.NextFrame(ts)
}
