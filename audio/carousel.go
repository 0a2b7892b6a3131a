// Package audio implements the producer/consumer audio carousel
// described in spec §4.9: a bounded pair of channels hands finished
// audio frames from the emulation thread to the audio-output thread
// without blocking either under normal conditions, recycling a small
// fixed pool of buffers rather than allocating per frame.
package audio

import "errors"

// ErrDisconnected is the only error the carousel boundary can surface:
// the peer end (producer or consumer) has been closed.
var ErrDisconnected = errors.New("audio: carousel peer disconnected")

// Buffer is one frame's worth of interleaved audio samples, owned by
// whichever side currently holds it.
type Buffer[S any] struct {
	Samples []S
}

// reset truncates the buffer to zero length without releasing its
// backing array, so the carousel never allocates after warm-up.
func (b *Buffer[S]) reset() {
	b.Samples = b.Samples[:0]
}

// NewCarousel builds a connected Producer/Consumer pair sized for
// latency+1 pre-allocated buffers of bufSamples capacity each: one is
// held by the producer as its current frame, the rest start in the
// recycle queue.
func NewCarousel[S any](latency, bufSamples int) (*Producer[S], *Consumer[S]) {
	if latency < 0 {
		latency = 0
	}
	full := make(chan *Buffer[S], latency+1)
	recycled := make(chan *Buffer[S], latency+1)

	current := &Buffer[S]{Samples: make([]S, 0, bufSamples)}
	for i := 0; i < latency; i++ {
		recycled <- &Buffer[S]{Samples: make([]S, 0, bufSamples)}
	}

	p := &Producer[S]{current: current, full: full, recycled: recycled}
	c := &Consumer[S]{full: full, recycled: recycled}
	return p, c
}

// Producer is the emulation-thread half of the carousel.
type Producer[S any] struct {
	current *Buffer[S]
	full     chan *Buffer[S]
	recycled chan *Buffer[S]
	closed   bool
}

// RenderFrame lets fill append samples into the buffer currently owned
// by the producer.
func (p *Producer[S]) RenderFrame(fill func(buf *Buffer[S])) {
	fill(p.current)
}

// SendFrame publishes the current frame to the consumer and swaps in a
// buffer from the recycle queue, blocking until one is available. It
// returns ErrDisconnected if the consumer has closed its end.
func (p *Producer[S]) SendFrame() error {
	if p.closed {
		return ErrDisconnected
	}
	sent := p.current
	next, ok := <-p.recycled
	if !ok {
		return ErrDisconnected
	}
	next.reset()
	p.current = next

	select {
	case p.full <- sent:
		return nil
	default:
		// The consumer is behind by more than its configured latency;
		// rather than block the emulation thread, drop the oldest queued
		// frame to make room. This only happens when the consumer side
		// is starved, which audibly glitches regardless of strategy.
		select {
		case <-p.full:
		default:
		}
		p.full <- sent
		return nil
	}
}

// Close signals the consumer that no further frames will be sent.
func (p *Producer[S]) Close() {
	if !p.closed {
		p.closed = true
		close(p.full)
	}
}

// Consumer is the audio-output-thread half of the carousel.
type Consumer[S any] struct {
	full     chan *Buffer[S]
	recycled chan *Buffer[S]
	closed   bool
}

// ReceiveFrame blocks until a finished frame is available, or returns
// ErrDisconnected once the producer has closed and no frames remain.
func (c *Consumer[S]) ReceiveFrame() (*Buffer[S], error) {
	buf, ok := <-c.full
	if !ok {
		return nil, ErrDisconnected
	}
	return buf, nil
}

// Recycle returns a consumed buffer to the producer's recycle queue.
func (c *Consumer[S]) Recycle(buf *Buffer[S]) {
	if c.closed {
		return
	}
	select {
	case c.recycled <- buf:
	default:
		// Recycle queue is already full (shouldn't happen with correct
		// latency+1 sizing); drop the buffer rather than block.
	}
}

// Close signals the producer that no further buffers will be recycled.
func (c *Consumer[S]) Close() {
	if !c.closed {
		c.closed = true
		close(c.recycled)
	}
}
