package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarouselProducerConsumerRoundTrip(t *testing.T) {
	p, c := NewCarousel[int16](2, 256)

	p.RenderFrame(func(buf *Buffer[int16]) {
		buf.Samples = append(buf.Samples, 1, 2, 3)
	})
	require.NoError(t, p.SendFrame())

	buf, err := c.ReceiveFrame()
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 2, 3}, buf.Samples)

	c.Recycle(buf)
}

func TestCarouselReusesRecycledBuffers(t *testing.T) {
	p, c := NewCarousel[int16](1, 16)

	p.RenderFrame(func(buf *Buffer[int16]) { buf.Samples = append(buf.Samples, 42) })
	require.NoError(t, p.SendFrame())

	buf, err := c.ReceiveFrame()
	require.NoError(t, err)
	c.Recycle(buf)

	p.RenderFrame(func(buf *Buffer[int16]) { buf.Samples = append(buf.Samples, 7) })
	require.NoError(t, p.SendFrame())

	buf2, err := c.ReceiveFrame()
	require.NoError(t, err)
	assert.Equal(t, []int16{7}, buf2.Samples)
}

func TestCarouselCloseSignalsDisconnect(t *testing.T) {
	p, c := NewCarousel[int16](1, 16)
	p.Close()

	_, err := c.ReceiveFrame()
	assert.ErrorIs(t, err, ErrDisconnected)
}

func TestCarouselConsumerCloseSignalsProducer(t *testing.T) {
	p, c := NewCarousel[int16](0, 16)
	c.Close()

	err := p.SendFrame()
	assert.ErrorIs(t, err, ErrDisconnected)
}
