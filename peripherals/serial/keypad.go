package serial

import "github.com/royaltm/go-spectrusty/clock"

// KeypadWindow is the handshake window the 128K's keypad protocol uses:
// an edge more than Max T-states after the previous one restarts the
// scan from bit 0, per spec §4.8.
var KeypadWindow = HandshakeWindow{Min: 0, Max: 4000}

// Keypad implements the Sinclair 128K numeric keypad accessory: a
// 20-button matrix shifted serially out of a single bit, one button per
// edge, restarting the scan whenever the host pauses longer than the
// handshake window allows.
type Keypad struct {
	buttons  [20]bool
	position int
	lastEdge clock.FTs
	haveEdge bool
}

// NewKeypad returns a Keypad with every button released.
func NewKeypad() *Keypad {
	return &Keypad{}
}

// Press marks button (0-19) as held down.
func (k *Keypad) Press(button int) {
	if button >= 0 && button < len(k.buttons) {
		k.buttons[button] = true
	}
}

// Release marks button (0-19) as released.
func (k *Keypad) Release(button int) {
	if button >= 0 && button < len(k.buttons) {
		k.buttons[button] = false
	}
}

// ReadData returns the current scan position's button state and
// advances the scanner, restarting from 0 if ts falls outside the
// handshake window from the previous edge.
func (k *Keypad) ReadData(ts clock.FTs) bool {
	k.observeEdge(ts)

	bit := k.buttons[k.position]
	k.position = (k.position + 1) % len(k.buttons)
	return bit
}

// WriteData is a no-op: the keypad has no input line of its own, but
// every write is still treated as an edge for handshake timing purposes.
func (k *Keypad) WriteData(ts clock.FTs, _ bool) {
	k.observeEdge(ts)
}

func (k *Keypad) observeEdge(ts clock.FTs) {
	if k.haveEdge {
		delta := ts - k.lastEdge
		if delta < KeypadWindow.Min || delta > KeypadWindow.Max {
			k.position = 0
		}
	}
	k.lastEdge = ts
	k.haveEdge = true
}

func (k *Keypad) Reset() {
	k.buttons = [20]bool{}
	k.position = 0
	k.haveEdge = false
}
