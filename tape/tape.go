// Package tape implements the emulated cassette described in spec §3/§4.6:
// a Reader/Writer variant over a TAP-encoded, seekable byte stream, plus
// a running (motor) flag. Switching between Reader and Writer flushes
// whatever state was in flight and repositions the underlying stream so
// the other side picks up from exactly where playback or recording left
// off.
package tape

import "io"

// Mode selects which half of the Reader/Writer variant is active.
type Mode int

const (
	ModeReader Mode = iota
	ModeWriter
)

// Tape is the cassette deck: one seekable TAP stream, a motor
// (running) flag, and whichever of the player/recorder halves is
// currently active.
type Tape struct {
	stream  io.ReadWriteSeeker
	mode    Mode
	running bool

	player *player
	rec    *recorder
}

// NewTape wraps stream as a stopped tape positioned for reading from
// its current offset.
func NewTape(stream io.ReadWriteSeeker) *Tape {
	return &Tape{
		stream: stream,
		mode:   ModeReader,
		player: newPlayer(stream),
		rec:    newRecorder(stream),
	}
}

// Mode reports whether the tape is currently wired for playback or
// recording.
func (t *Tape) Mode() Mode {
	return t.mode
}

// Running reports whether the motor is engaged; pulses are only
// produced or consumed while running.
func (t *Tape) Running() bool {
	return t.running
}

// SetRunning engages or disengages the motor. Disengaging mid-chunk in
// Writer mode does not flush the in-flight buffer: a paused motor is
// expected to resume, unlike a mode switch.
func (t *Tape) SetRunning(running bool) {
	t.running = running
}

// NextPulse returns the next pulse width, in T-states, the tape head
// would produce. It reports false when the tape is stopped, is wired
// for writing, or has run out of chunks to play.
func (t *Tape) NextPulse() (uint32, bool) {
	if t.mode != ModeReader || !t.running {
		return 0, false
	}
	return t.player.nextPulse()
}

// PushPulse feeds one edge-to-edge pulse width sampled from the host's
// MIC output into the recorder. It is a no-op when the tape is stopped
// or wired for reading.
func (t *Tape) PushPulse(width uint32) error {
	if t.mode != ModeWriter || !t.running {
		return nil
	}
	return t.rec.pushPulse(width)
}

// currentOffset seeks by zero bytes relative to the current position,
// which both reports and re-pins the stream's cursor; every transition
// below bottoms out in this same seek.
func (t *Tape) currentOffset() (int64, error) {
	return t.stream.Seek(0, io.SeekCurrent)
}

// SwitchToReader flushes any in-flight recorded chunk and rewires the
// tape for playback starting at the stream's current position.
func (t *Tape) SwitchToReader() error {
	if t.mode == ModeReader {
		return nil
	}
	if err := t.rec.flush(); err != nil {
		return err
	}
	if _, err := t.currentOffset(); err != nil {
		return err
	}
	t.player.reset(t.stream)
	t.mode = ModeReader
	return nil
}

// SwitchToWriter discards any partially-played pulse buffer and rewires
// the tape for recording starting at the stream's current position.
func (t *Tape) SwitchToWriter() error {
	if t.mode == ModeWriter {
		return nil
	}
	if _, err := t.currentOffset(); err != nil {
		return err
	}
	t.player.reset(t.stream)
	t.rec.reset(t.stream)
	t.mode = ModeWriter
	return nil
}
