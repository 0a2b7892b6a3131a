package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributeDecomposition(t *testing.T) {
	// black ink on bright white paper, flash set: 0b1_1_111_000
	a := Attribute(0xF8)
	assert.Equal(t, uint8(0), a.Ink())
	assert.Equal(t, uint8(7), a.Paper())
	assert.True(t, a.Bright())
	assert.True(t, a.Flash())
}

func TestFlashPhaseTogglesEvery16Frames(t *testing.T) {
	assert.False(t, FlashPhase(0))
	assert.False(t, FlashPhase(15))
	assert.True(t, FlashPhase(16))
	assert.True(t, FlashPhase(31))
	assert.False(t, FlashPhase(32))
}

func TestPixelColoursSwapOnFlash(t *testing.T) {
	a := Attribute(0x87) // flash, paper=0(black), ink=7(white)
	ink, paper := a.InkColour(), a.PaperColour()
	swappedInk, swappedPaper := PixelColours(a, 16)
	assert.Equal(t, ink, swappedPaper)
	assert.Equal(t, paper, swappedInk)
}

func TestWriteRowRGB24(t *testing.T) {
	dst := make([]byte, 8*3)
	ink := RGB{R: 255}
	paper := RGB{B: 255}
	WriteRow(dst, 0, RGB24{}, 0b10000001, ink, paper)

	assert.Equal(t, []byte{255, 0, 0}, dst[0:3]) // pixel 0 (bit 7) set -> ink
	assert.Equal(t, []byte{0, 0, 255}, dst[3:6]) // pixel 1 (bit 6) clear -> paper
	assert.Equal(t, []byte{255, 0, 0}, dst[21:24])
}

func TestWriteRowRGB565PacksCorrectly(t *testing.T) {
	dst := make([]byte, 2)
	RGB565{}.WritePixel(dst, 0, RGB{R: 0xFF, G: 0xFF, B: 0xFF})
	assert.Equal(t, []byte{0xFF, 0xFF}, dst)
}

func TestGray8UsesLumaWeights(t *testing.T) {
	dst := make([]byte, 1)
	Gray8{}.WritePixel(dst, 0, RGB{R: 255, G: 0, B: 0})
	assert.Equal(t, uint8((13933*255)>>16), dst[0])
}
