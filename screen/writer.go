package screen

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
)

// Sprite regions are not reconstructed from the flattened image; they
// are written as fixed placeholder records. All sprites sit one row
// below the visible area, spaced eight pixels apart, in the default
// white color.
const (
	placeholderSpriteY      = 216
	placeholderSpriteStride = 8
	placeholderSpriteColor  = 0x0f
)

type encoder struct {
	w   io.Writer
	d   *ModeDescriptor
	buf []byte // the whole VRAM region, zero filled up front
}

// Encode writes the image m to w as a screen file of the given mode.
//
// Only the planar RGB and YJK modes can be encoded; there is no inverse
// tile matching algorithm for the tiled modes 1 to 4 and those return
// ErrUnsupported. Planar encoding is lossless for an already indexed
// image within the mode's color budget; anything else is quantized
// first. YJK encoding is lossy since four pixels share one chroma pair.
func Encode(w io.Writer, m image.Image, mode Mode) error {
	d, err := Descriptor(mode)
	if err != nil {
		return err
	}
	if d.fam == familyTiled {
		return fmt.Errorf("%w: %v cannot be encoded", ErrUnsupported, mode)
	}

	b := m.Bounds()
	if b.Dx() != d.Width || b.Dy() != d.Height {
		return fmt.Errorf("%w: %v needs %dx%d, image is %dx%d",
			ErrBadDimensions, mode, d.Width, d.Height, b.Dx(), b.Dy())
	}

	e := encoder{w: w, d: d, buf: make([]byte, d.FileSize)}

	var pal color.Palette
	switch d.fam {
	case familyPlanarRGB:
		pm := e.indexed(m)
		e.dumpPlanar(pm)
		pal = pm.Palette
	case familyYJK:
		e.dumpYJK(m)
	}
	e.dumpSprites()
	if err := e.dumpPalette(pal); err != nil {
		return err
	}

	if err := writeHeader(w, d.FileSize); err != nil {
		return err
	}
	_, err = w.Write(e.buf)
	return err
}

// indexed returns m as a paletted image within the mode's color budget,
// quantizing when the source has no palette or too many colors.
func (e *encoder) indexed(m image.Image) *image.Paletted {
	b := m.Bounds()

	pm, _ := m.(*image.Paletted)
	if pm == nil {
		if cp, ok := m.ColorModel().(color.Palette); ok && len(cp) <= e.d.MaxColors {
			pm = image.NewPaletted(b, cp)
			draw.Draw(pm, b, m, b.Min, draw.Src)
		}
	}
	if pm == nil || len(pm.Palette) > e.d.MaxColors {
		q := quantize.MedianCutQuantizer{}
		pm = image.NewPaletted(b, q.Quantize(make(color.Palette, 0, e.d.MaxColors), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}

	// Adjust image so that top-left corner is at (0, 0)
	if pm.Rect.Min != (image.Point{}) {
		dup := *pm
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		pm = &dup
	}

	return pm
}

// dumpPlanar packs 8/bpp pixel indices per byte, MSB first.
func (e *encoder) dumpPlanar(pm *image.Paletted) {
	bpp := e.d.bitsPerPixel
	perByte := 8 / bpp
	mask := uint8(1)<<uint(bpp) - 1

	i := e.d.chunks[chunkTilePattern].Offset
	for y := 0; y < e.d.Height; y++ {
		for x := 0; x < e.d.Width; x += perByte {
			var b byte
			for p := 0; p < perByte; p++ {
				shift := uint(8 - bpp*(p+1))
				b |= (pm.ColorIndexAt(x+p, y) & mask) << shift
			}
			e.buf[i] = b
			i++
		}
	}
}

// dumpYJK packs groups of four pixels into four bytes. The chroma pair
// is the ceiling average of the group's per pixel chroma, since the
// format stores only one J and K per group. Screen 10 reserves bit 3 as
// the palette escape flag and always writes it as zero.
func (e *encoder) dumpYJK(m image.Image) {
	b := m.Bounds()

	i := e.d.chunks[chunkTilePattern].Offset
	for y := 0; y < e.d.Height; y++ {
		for x := 0; x < e.d.Width; x += 4 {
			var ys [4]int
			var sj, sk int
			for p := 0; p < 4; p++ {
				yv, j, k := rgbToYJK(m.At(b.Min.X+x+p, b.Min.Y+y))
				ys[p] = yv
				sj += j
				sk += k
			}
			j := encodeTwos6(ceilDiv(sj, 4))
			k := encodeTwos6(ceilDiv(sk, 4))

			e.buf[i+0] = byte(ys[0]<<3 | k&7)
			e.buf[i+1] = byte(ys[1]<<3 | k>>3)
			e.buf[i+2] = byte(ys[2]<<3 | j&7)
			e.buf[i+3] = byte(ys[3]<<3 | j>>3)
			if e.d.paletteEscape {
				for p := 0; p < 4; p++ {
					e.buf[i+p] &^= 0x08
				}
			}
			i += 4
		}
	}
}

// dumpSprites fills the sprite attribute and color regions with the
// placeholder records. Sprites cannot be recovered from a flattened
// bitmap, so none are emitted; the pattern table stays zeroed.
func (e *encoder) dumpSprites() {
	if c, ok := e.d.chunkAt(chunkSpriteAttr); ok {
		for plane := 0; plane < spritePlanes; plane++ {
			rec := e.buf[c.Offset+plane*spriteAttrRecord:]
			rec[0] = placeholderSpriteY
			rec[1] = byte(plane * placeholderSpriteStride)
			rec[2] = 0
			rec[3] = placeholderSpriteColor
		}
	}
	if c, ok := e.d.chunkAt(chunkSpriteColor); ok {
		for i := 0; i < c.Size; i++ {
			e.buf[c.Offset+i] = placeholderSpriteColor
		}
	}
}

// dumpPalette writes up to min(maxColors,16) RGB444 entries. High color
// modes have no palette of their own and dump the default 16 color one.
func (e *encoder) dumpPalette(pal color.Palette) error {
	c, ok := e.d.chunkAt(chunkPalette)
	if !ok {
		return nil
	}

	if pal == nil || len(pal) > 16 {
		var err error
		if pal, err = DefaultPalette(PaletteMSX2); err != nil {
			return err
		}
	}

	n := e.d.MaxColors
	if n > 16 {
		n = 16
	}
	if n > len(pal) {
		n = len(pal)
	}
	for i := 0; i < n; i++ {
		e.buf[c.Offset+i*2], e.buf[c.Offset+i*2+1] = encodeRGB444(pal[i])
	}
	return nil
}
