package screen

import (
	"fmt"
	"image/color"
)

// Default palette tags, one per hardware palette the modes can fall back
// to when the file does not carry its own.
const (
	PaletteMSX1   = "msx1"   // fixed TMS9918 palette, modes 1 to 3
	PaletteMSX2   = "msx2"   // V9938 power-on palette, modes 4 to 7, 10 and 12
	PaletteGRB332 = "grb332" // fixed 256 color palette of mode 8
)

// Lookup tables mapping the hardware channel widths to 8 bits.
var (
	scale3bit = [8]uint8{0x00, 0x24, 0x49, 0x6d, 0x92, 0xb6, 0xdb, 0xff}
	scale2bit = [4]uint8{0x00, 0x55, 0xaa, 0xff}
	scale5bit = [32]uint8{
		0, 8, 16, 24, 33, 41, 49, 57,
		66, 74, 82, 90, 99, 107, 115, 123,
		132, 140, 148, 156, 165, 173, 181, 189,
		198, 206, 214, 222, 231, 239, 247, 255,
	}
)

// The TMS9918 has no programmable palette; these are the commonly used
// RGB approximations of its 15 colors plus transparent.
var paletteMSX1 = color.Palette{
	color.RGBA{0x00, 0x00, 0x00, 0xff},
	color.RGBA{0x00, 0x00, 0x00, 0xff},
	color.RGBA{0x21, 0xc8, 0x42, 0xff},
	color.RGBA{0x5e, 0xdc, 0x78, 0xff},
	color.RGBA{0x54, 0x55, 0xed, 0xff},
	color.RGBA{0x7d, 0x76, 0xfc, 0xff},
	color.RGBA{0xd4, 0x52, 0x4d, 0xff},
	color.RGBA{0x42, 0xeb, 0xf5, 0xff},
	color.RGBA{0xfc, 0x55, 0x54, 0xff},
	color.RGBA{0xff, 0x79, 0x78, 0xff},
	color.RGBA{0xd4, 0xc1, 0x54, 0xff},
	color.RGBA{0xe6, 0xce, 0x80, 0xff},
	color.RGBA{0x21, 0xb0, 0x3b, 0xff},
	color.RGBA{0xc9, 0x5b, 0xba, 0xff},
	color.RGBA{0xcc, 0xcc, 0xcc, 0xff},
	color.RGBA{0xff, 0xff, 0xff, 0xff},
}

// V9938 power-on palette, stored the way the hardware dumps it so it can
// share the RGB444 decoder with in-file palettes.
var rawPaletteMSX2 = []byte{
	0x00, 0x00, 0x00, 0x00, 0x11, 0x06, 0x33, 0x07,
	0x17, 0x01, 0x27, 0x03, 0x51, 0x01, 0x27, 0x06,
	0x71, 0x01, 0x73, 0x03, 0x61, 0x06, 0x64, 0x06,
	0x11, 0x04, 0x65, 0x02, 0x55, 0x05, 0x77, 0x07,
}

// DefaultPalette resolves one of the Palette* tags to its palette.
func DefaultPalette(tag string) (color.Palette, error) {
	switch tag {
	case PaletteMSX1:
		return append(color.Palette(nil), paletteMSX1...), nil
	case PaletteMSX2:
		return decodeRGB444Palette(rawPaletteMSX2, 16), nil
	case PaletteGRB332:
		p := make(color.Palette, 256)
		for i := range p {
			p[i] = grb332(uint8(i))
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrPaletteNotFound, tag)
}

// decodeRGB444Palette decodes up to n colors of two bytes each: the
// first byte holds red in the high nibble and blue in the low nibble,
// the second byte holds green. Each channel is 3 bits wide.
func decodeRGB444Palette(raw []byte, n int) color.Palette {
	if n > len(raw)/2 {
		n = len(raw) / 2
	}
	p := make(color.Palette, n)
	for i := 0; i < n; i++ {
		p[i] = color.RGBA{
			scale3bit[raw[i*2]>>4&7],
			scale3bit[raw[i*2+1]&7],
			scale3bit[raw[i*2]&7],
			0xff,
		}
	}
	return p
}

// encodeRGB444 packs one 8-bit RGB color back into the two byte palette
// entry, the exact inverse of decodeRGB444Palette.
func encodeRGB444(c color.Color) (byte, byte) {
	r, g, b, _ := c.RGBA()
	return byte(r>>8>>5)<<4 | byte(b>>8>>5), byte(g >> 8 >> 5)
}

// grb332 expands one mode 8 pixel byte (GGGRRRBB) to RGB.
func grb332(b uint8) color.RGBA {
	return color.RGBA{
		scale3bit[b>>2&7],
		scale3bit[b>>5&7],
		scale2bit[b&3],
		0xff,
	}
}

// twos6 decodes a 6-bit two's complement value.
func twos6(n int) int {
	if n >= 32 {
		return n - 64
	}
	return n
}

// encodeTwos6 is the inverse of twos6 for values in [-32,31].
func encodeTwos6(n int) int {
	return n & 0x3f
}

// ceilDiv divides rounding toward positive infinity, which is what the
// V9958 chroma arithmetic uses.
func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a > 0) == (b > 0) {
		q++
	}
	return q
}

func clamp5(v int) int {
	if v < 0 {
		return 0
	}
	if v > 31 {
		return 31
	}
	return v
}

// yjkToRGB converts one 5-bit luminance and a shared 6-bit chroma pair
// to 8-bit RGB.
func yjkToRGB(y, j, k int) color.RGBA {
	r := clamp5(y + j)
	g := clamp5(y + k)
	b := clamp5(ceilDiv(5*y-2*j-k, 4))
	return color.RGBA{scale5bit[r], scale5bit[g], scale5bit[b], 0xff}
}

// to5bit reduces one 16-bit color.Color channel to the 5-bit scale,
// rounding so that scale5bit round-trips.
func to5bit(v uint32) int {
	return (int(v>>8)*31 + 127) / 255
}

// rgbToYJK converts one pixel to its luminance and chroma offsets. The
// caller averages j and k across a group of four pixels before encoding
// since the format shares one chroma pair per group.
func rgbToYJK(c color.Color) (y, j, k int) {
	cr, cg, cb, _ := c.RGBA()
	r, g, b := to5bit(cr), to5bit(cg), to5bit(cb)
	y = (4*b + 2*r + g) / 8
	return y, r - y, g - y
}
