package ay

import (
	"testing"

	"github.com/royaltm/go-spectrusty/blep"
	"github.com/royaltm/go-spectrusty/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFreqToTonePeriodA4 is spec §8 scenario 4: at the standard ZX
// Spectrum AY clock, concert A4 lands on tone period 252.
func TestFreqToTonePeriodA4(t *testing.T) {
	period, ok := FreqToTonePeriod(1_773_450, 440.0)
	require.True(t, ok)
	assert.Equal(t, uint16(252), period)
}

// TestFreqToTonePeriodRoundTrip checks the invertibility property from
// spec §8: converting a period to its frequency and back must recover
// the same period, for every representable period.
func TestFreqToTonePeriodRoundTrip(t *testing.T) {
	const clockHz = 1_773_450.0
	for p := uint16(1); p <= 4095; p++ {
		hz := TonePeriodToFreq(clockHz, p)
		got, ok := FreqToTonePeriod(clockHz, hz)
		require.True(t, ok, "period %d", p)
		assert.Equal(t, p, got, "round-trip mismatch for period %d", p)
	}
}

// TestEnvelopeShapeZeroRamp is spec §8 scenario 5: shape 0 (neither
// continue, attack, alternate nor hold) with period 1 decays
// 15,14,...,0 then holds at 0.
func TestEnvelopeShapeZeroRamp(t *testing.T) {
	var e envelopeGenerator
	e.setFine(1)
	e.setShape(0)

	var levels []uint8
	levels = append(levels, e.level)
	for i := 0; i < 20; i++ {
		e.tick()
		levels = append(levels, e.level)
	}

	expected := []uint8{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0, 0, 0, 0, 0, 0}
	assert.Equal(t, expected, levels)
}

func TestEnvelopeContinueAlternateHoldsAtTop(t *testing.T) {
	var e envelopeGenerator
	e.setFine(1)
	e.setShape(0x0F) // continue|attack|alternate|hold: ramps up once, then holds high

	for i := 0; i < 16; i++ {
		e.tick()
	}
	assert.Equal(t, uint8(15), e.level)
	e.tick()
	assert.Equal(t, uint8(15), e.level)
}

func TestToneGeneratorBelowAudibleThresholdStaysLow(t *testing.T) {
	var g toneGenerator
	g.setFine(2) // period 2, below the audible floor of 5
	for i := 0; i < 10; i++ {
		g.tick()
	}
	assert.False(t, g.output)
}

func TestToneGeneratorTogglesAtPeriod(t *testing.T) {
	var g toneGenerator
	g.setFine(10)
	for i := 0; i < 9; i++ {
		g.tick()
	}
	assert.False(t, g.output)
	g.tick()
	assert.True(t, g.output)
}

func TestStateUpdateRegisterIsReadableImmediately(t *testing.T) {
	s := NewState(3_500_000, 1_773_400)
	s.UpdateRegister(100, 8, 0x0F)
	assert.Equal(t, uint8(0x0F), s.Register(8))
}

func TestStateRenderAudioProducesNoNaNAndClearsLog(t *testing.T) {
	s := NewState(3_500_000, 1_773_400)
	b := blep.New(3, 44100, 3_500_000, 69888, 0, 0.9)

	s.UpdateRegister(0, 0, 100)   // channel A tone fine
	s.UpdateRegister(10, 1, 0)    // channel A tone coarse
	s.UpdateRegister(20, 8, 0x0F) // channel A full volume, no envelope
	s.UpdateRegister(30, 7, 0x38) // enable tone A/B/C, disable noise (bits set = disabled per AY convention except hookup below)

	s.RenderAudio(b, 69888, [3]int{0, 1, 2})
	assert.Empty(t, s.changes)

	for ch := 0; ch < 3; ch++ {
		samples := b.SumIter(ch)
		for _, v := range samples {
			assert.False(t, v != v, "NaN sample produced")
		}
	}
}
