package screen

import (
	"image"
	"image/color"
)

// spriteAttr is the decoded state of one sprite plane. Color, early
// clock and OR flags are kept per sprite line; sprite mode 1 repeats the
// single attribute byte across all lines while sprite mode 2 reads them
// from the sprite color table.
type spriteAttr struct {
	x, y    int
	pattern int

	colors     [16]uint8
	earlyClock [16]bool
	orEnabled  [16]bool
}

// decodeSpriteAttr reads the 4 byte attribute record of one plane, plus
// its 16 byte color record when the mode has a sprite color table.
func decodeSpriteAttr(v *vram, d *ModeDescriptor, plane int) spriteAttr {
	rec := v.chunk(chunkSpriteAttr)[plane*spriteAttrRecord:]

	a := spriteAttr{
		x:       int(rec[1]),
		y:       int(rec[0]),
		pattern: int(rec[2]),
	}

	// An 8-bit Y past the bottom edge wraps negative, and sprites are
	// displayed one line below their stored coordinate.
	if a.y > d.Height {
		a.y -= 256
	}
	a.y++

	if col := v.chunk(chunkSpriteColor); d.spriteColorTable && col != nil {
		lines := col[plane*spriteColorRecord:]
		for i := 0; i < 16; i++ {
			a.colors[i] = lines[i] & 0x0f
			a.earlyClock[i] = lines[i]&0x80 != 0
			a.orEnabled[i] = lines[i]&0x40 != 0
		}
	} else {
		for i := 0; i < 16; i++ {
			a.colors[i] = rec[3] & 0x0f
			a.earlyClock[i] = rec[3]&0x80 != 0
		}
	}

	return a
}

// canvas is the pixel surface the painters write to, either an indexed
// image or a true color one with a companion sprite palette.
type canvas struct {
	paletted *image.Paletted
	rgba     *image.RGBA

	palette     color.Palette
	transparent int
}

func (c *canvas) bounds() image.Rectangle {
	if c.paletted != nil {
		return c.paletted.Bounds()
	}
	return c.rgba.Bounds()
}

// indexAt returns the palette index already present at a position, or
// zero where the surface has no index, such as the true color YJK modes.
func (c *canvas) indexAt(x, y int) int {
	if c.paletted == nil {
		return 0
	}
	i := int(c.paletted.ColorIndexAt(x, y))
	if i >= len(c.palette) {
		return 0
	}
	return i
}

func (c *canvas) setIndex(x, y, ci int) {
	if c.paletted != nil {
		c.paletted.SetColorIndex(x, y, uint8(ci))
		return
	}
	if ci < len(c.palette) {
		c.rgba.Set(x, y, c.palette[ci])
	}
}

// paintSprites renders every sprite plane onto the canvas, highest plane
// first so that the lowest numbered sprite ends up on top, matching the
// hardware priority order.
func paintSprites(c *canvas, v *vram, d *ModeDescriptor, size16 bool) {
	pat := v.chunk(chunkSpritePattern)
	if pat == nil || v.chunk(chunkSpriteAttr) == nil {
		return
	}
	for plane := spritePlanes - 1; plane >= 0; plane-- {
		a := decodeSpriteAttr(v, d, plane)
		paintSprite(c, a, pat, size16)
	}
}

// paintSprite draws one sprite. A 16x16 sprite is stored as four 8x8
// quadrants, left column first, so the pattern bytes are walked column
// major. Only set bits paint; a sprite never draws background pixels.
func paintSprite(c *canvas, a spriteAttr, pat []byte, size16 bool) {
	size, patBytes := 8, 8
	if size16 {
		size, patBytes = 16, 32
	}

	off := a.pattern * 8
	if off+patBytes > len(pat) {
		return
	}

	b := c.bounds()
	for col := 0; col < size/8; col++ {
		for row := 0; row < size; row++ {
			pb := pat[off+col*16+row]
			for bit := 0; bit < 8; bit++ {
				if pb&(0x80>>uint(bit)) == 0 {
					continue
				}

				x := a.x + col*8 + bit
				if a.earlyClock[row] {
					x -= 32
				}
				y := a.y + row
				if !(image.Point{x, y}).In(b) {
					continue
				}

				ci := int(a.colors[row])
				if a.orEnabled[row] {
					ci |= c.indexAt(x, y)
				}
				if ci == c.transparent {
					continue
				}
				c.setIndex(x, y, ci)
			}
		}
	}
}
