package bus

import (
	"testing"

	"github.com/royaltm/go-spectrusty/clock"
	"github.com/stretchr/testify/assert"
)

type fakeDevice struct {
	readPort uint16
	readVal  byte
	writes   []byte
}

func (f *fakeDevice) ReadIO(port uint16, ts clock.VideoTs) (byte, WaitStates, bool) {
	if port == f.readPort {
		return f.readVal, 0, true
	}
	return 0, 0, false
}

func (f *fakeDevice) WriteIO(port uint16, value byte, ts clock.VideoTs) (WaitStates, bool) {
	if port == f.readPort {
		f.writes = append(f.writes, value)
		return 0, true
	}
	return 0, false
}

func (f *fakeDevice) Reset(ts clock.VideoTs)           {}
func (f *fakeDevice) UpdateTimestamp(ts clock.VideoTs) {}
func (f *fakeDevice) NextFrame(ts clock.VideoTs)       {}

func TestChainOpenCollectorAnd(t *testing.T) {
	a := &fakeDevice{readPort: 0x1F, readVal: 0b1010}
	b := &fakeDevice{readPort: 0x1F, readVal: 0b1100}
	chain := NewChain(a, b)

	v, _, ok := chain.ReadIO(0x1F, clock.VideoTs{})
	assert.True(t, ok)
	assert.Equal(t, byte(0b1000), v)
}

func TestChainDelegatesWhenNoMatch(t *testing.T) {
	a := &fakeDevice{readPort: 0x1F, readVal: 0xAA}
	chain := NewChain(a)

	_, _, ok := chain.ReadIO(0x20, clock.VideoTs{})
	assert.False(t, ok)
}

func TestChainWriteStopsAtFirstHandler(t *testing.T) {
	a := &fakeDevice{readPort: 0x1F}
	b := &fakeDevice{readPort: 0x1F}
	chain := NewChain(a, b)

	_, handled := chain.WriteIO(0x1F, 0x55, clock.VideoTs{})
	assert.True(t, handled)
	assert.Equal(t, []byte{0x55}, a.writes)
	assert.Empty(t, b.writes)
}

func TestLinkComposesTwoDevices(t *testing.T) {
	a := &fakeDevice{readPort: 0x1F, readVal: 0xF0}
	link := NewLink[*fakeDevice, NullDevice](a, NullDevice{})

	v, _, ok := link.ReadIO(0x1F, clock.VideoTs{})
	assert.True(t, ok)
	assert.Equal(t, byte(0xF0), v)

	_, _, ok = link.ReadIO(0x99, clock.VideoTs{})
	assert.False(t, ok)
}

func TestPortDecoderMatch(t *testing.T) {
	d := PortDecoder{AddressMask: 0x0001, AddressBits: 0x0000}
	assert.True(t, d.Match(0x001E))
	assert.False(t, d.Match(0x001F))
}
