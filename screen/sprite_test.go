package screen

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sprite mode 1: a single attribute byte supplies color and early clock
// for every line.
func TestPaintSpriteMode1(t *testing.T) {
	b, d := rawFile(t, Screen1)

	// Plane 0 at (100,10) using pattern 1, color 15.
	poke(b, d, chunkSpriteAttr, 0, 9, 100, 1, 0x0f)
	poke(b, d, chunkSpritePattern, 1*8, 0xc0)

	img, err := Decode(bytes.NewReader(b), Screen1, &DecodeOptions{RenderSprites: true})
	require.NoError(t, err)

	m := img.Bitmap.(*image.Paletted)
	assert.Equal(t, uint8(15), m.ColorIndexAt(100, 10))
	assert.Equal(t, uint8(15), m.ColorIndexAt(101, 10))
	// Zero bits stay background.
	assert.Equal(t, uint8(0), m.ColorIndexAt(102, 10))
	assert.Equal(t, uint8(0), m.ColorIndexAt(100, 11))
}

// Sprite mode 2 reads color, early clock and OR mode per line from the
// sprite color table.
func TestPaintSpriteMode2PerLineColors(t *testing.T) {
	b, d := rawFile(t, Screen5)

	poke(b, d, chunkSpriteAttr, 0, 9, 10, 0, 0)
	poke(b, d, chunkSpritePattern, 0, 0x80, 0x80)
	poke(b, d, chunkSpriteColor, 0, 0x03, 0x0c)

	img, err := Decode(bytes.NewReader(b), Screen5, &DecodeOptions{RenderSprites: true})
	require.NoError(t, err)

	m := img.Bitmap.(*image.Paletted)
	assert.Equal(t, uint8(3), m.ColorIndexAt(10, 10))
	assert.Equal(t, uint8(12), m.ColorIndexAt(10, 11))
}

// Lower numbered planes paint last and win; a plane with the OR flag
// merges with what the higher planes already painted.
func TestPaintSpriteOrCompositing(t *testing.T) {
	b, d := rawFile(t, Screen5)

	// Plane 0 and plane 1 overlap at (10,10); plane 1 paints first
	// with color 1, plane 0 ORs color 2 on top.
	poke(b, d, chunkSpriteAttr, 0*spriteAttrRecord, 9, 10, 0, 0)
	poke(b, d, chunkSpriteAttr, 1*spriteAttrRecord, 9, 10, 1, 0)
	poke(b, d, chunkSpritePattern, 0*8, 0x80)
	poke(b, d, chunkSpritePattern, 1*8, 0x80)
	poke(b, d, chunkSpriteColor, 0*spriteColorRecord, 0x42)
	poke(b, d, chunkSpriteColor, 1*spriteColorRecord, 0x01)

	img, err := Decode(bytes.NewReader(b), Screen5, &DecodeOptions{RenderSprites: true})
	require.NoError(t, err)

	m := img.Bitmap.(*image.Paletted)
	assert.Equal(t, uint8(3), m.ColorIndexAt(10, 10))
}

func TestPaintSpritePriority(t *testing.T) {
	b, d := rawFile(t, Screen5)

	// Without the OR flag the lower numbered plane simply wins.
	poke(b, d, chunkSpriteAttr, 0*spriteAttrRecord, 9, 10, 0, 0)
	poke(b, d, chunkSpriteAttr, 1*spriteAttrRecord, 9, 10, 1, 0)
	poke(b, d, chunkSpritePattern, 0*8, 0x80)
	poke(b, d, chunkSpritePattern, 1*8, 0x80)
	poke(b, d, chunkSpriteColor, 0*spriteColorRecord, 0x02)
	poke(b, d, chunkSpriteColor, 1*spriteColorRecord, 0x01)

	img, err := Decode(bytes.NewReader(b), Screen5, &DecodeOptions{RenderSprites: true})
	require.NoError(t, err)

	m := img.Bitmap.(*image.Paletted)
	assert.Equal(t, uint8(2), m.ColorIndexAt(10, 10))
}

// The early clock flag shifts a sprite 32 pixels left on the lines it
// is set for.
func TestPaintSpriteEarlyClock(t *testing.T) {
	b, d := rawFile(t, Screen5)

	poke(b, d, chunkSpriteAttr, 0, 9, 40, 0, 0)
	poke(b, d, chunkSpritePattern, 0, 0x80)
	poke(b, d, chunkSpriteColor, 0, 0x85)

	img, err := Decode(bytes.NewReader(b), Screen5, &DecodeOptions{RenderSprites: true})
	require.NoError(t, err)

	m := img.Bitmap.(*image.Paletted)
	assert.Equal(t, uint8(5), m.ColorIndexAt(8, 10))
	assert.Equal(t, uint8(0), m.ColorIndexAt(40, 10))
}

// A stored Y of 220 wraps to -36, plus the one line display offset:
// the sprite sits entirely above the canvas and paints nothing.
func TestPaintSpriteYWrap(t *testing.T) {
	b, d := rawFile(t, Screen5)

	poke(b, d, chunkSpriteAttr, 0, 220, 0, 0, 0)
	for i := 0; i < 8; i++ {
		poke(b, d, chunkSpritePattern, i, 0xff)
	}
	poke(b, d, chunkSpriteColor, 0, 0x0f, 0x0f, 0x0f, 0x0f, 0x0f, 0x0f, 0x0f, 0x0f)

	img, err := Decode(bytes.NewReader(b), Screen5, &DecodeOptions{RenderSprites: true})
	require.NoError(t, err)

	m := img.Bitmap.(*image.Paletted)
	for i, p := range m.Pix {
		require.Zero(t, p, "pixel %d", i)
	}
}

// 16x16 sprites store four 8x8 quadrants column major: the left column
// over the full height, then the right.
func TestPaintSprite16x16(t *testing.T) {
	b, d := rawFile(t, Screen5)

	poke(b, d, chunkSpriteAttr, 0, 9, 10, 0, 0)
	poke(b, d, chunkSpritePattern, 0, 0x80)  // left column, row 0
	poke(b, d, chunkSpritePattern, 15, 0x80) // left column, row 15
	poke(b, d, chunkSpritePattern, 16, 0x01) // right column, row 0
	for i := 0; i < 16; i++ {
		poke(b, d, chunkSpriteColor, i, 0x07)
	}

	img, err := Decode(bytes.NewReader(b), Screen5, &DecodeOptions{
		RenderSprites: true,
		SpriteSize16:  true,
	})
	require.NoError(t, err)

	m := img.Bitmap.(*image.Paletted)
	assert.Equal(t, uint8(7), m.ColorIndexAt(10, 10))
	assert.Equal(t, uint8(7), m.ColorIndexAt(10, 25))
	assert.Equal(t, uint8(7), m.ColorIndexAt(25, 10))
	assert.Equal(t, uint8(0), m.ColorIndexAt(25, 25))
}

// A 16x16 sprite whose pattern index points within 32 bytes of the end
// of the pattern table is dropped rather than read out of bounds.
func TestPaintSprite16x16Bounds(t *testing.T) {
	pat := make([]byte, 0x800)
	for i := range pat {
		pat[i] = 0xff
	}

	cv := canvas{
		paletted:    image.NewPaletted(image.Rect(0, 0, 64, 64), paletteMSX1),
		palette:     paletteMSX1,
		transparent: 16,
	}
	a := spriteAttr{x: 0, y: 0, pattern: 255}
	for i := range a.colors {
		a.colors[i] = 7
	}

	paintSprite(&cv, a, pat, true)
	for i, p := range cv.paletted.Pix {
		require.Zero(t, p, "pixel %d", i)
	}

	// The same pattern index is fine as an 8x8 sprite.
	paintSprite(&cv, a, pat, false)
	assert.Equal(t, uint8(7), cv.paletted.ColorIndexAt(0, 0))
}
