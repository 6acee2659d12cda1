package screen

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPalette(n int) color.Palette {
	p, _ := DefaultPalette(PaletteMSX2)
	return p[:n]
}

func TestEncodeTiledUnsupported(t *testing.T) {
	m := image.NewPaletted(image.Rect(0, 0, 256, 192), testPalette(16))
	for _, mode := range []Mode{Screen1, Screen2, Screen3, Screen4} {
		err := Encode(new(bytes.Buffer), m, mode)
		assert.ErrorIs(t, err, ErrUnsupported, "%v", mode)
	}
}

func TestEncodeBadDimensions(t *testing.T) {
	m := image.NewPaletted(image.Rect(0, 0, 64, 64), testPalette(16))
	err := Encode(new(bytes.Buffer), m, Screen5)
	assert.ErrorIs(t, err, ErrBadDimensions)
}

func TestEncodeHeader(t *testing.T) {
	d, err := Descriptor(Screen5)
	require.NoError(t, err)

	m := image.NewPaletted(image.Rect(0, 0, d.Width, d.Height), testPalette(16))
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m, Screen5))

	b := buf.Bytes()
	require.Len(t, b, headerSize+d.FileSize)
	// Magic, begin address 0, end address fileSize-1, execution
	// address 0.
	assert.Equal(t, []byte{0xfe, 0x00, 0x00, 0xff, 0x7f, 0x00, 0x00}, b[:headerSize])
}

// Planar encoding preserves pixel indices exactly, so the round trip
// through Encode and Decode is lossless.
func TestEncodePlanarRoundTrip(t *testing.T) {
	for _, mode := range []Mode{Screen5, Screen6, Screen7, Screen8} {
		d, err := Descriptor(mode)
		require.NoError(t, err)

		var pal color.Palette
		if d.MaxColors > 16 {
			pal, err = DefaultPalette(PaletteGRB332)
			require.NoError(t, err)
		} else {
			pal = testPalette(d.MaxColors)
		}

		src := image.NewPaletted(image.Rect(0, 0, d.Width, d.Height), pal)
		for y := 0; y < d.Height; y++ {
			for x := 0; x < d.Width; x++ {
				src.SetColorIndex(x, y, uint8((x+y*3)%d.MaxColors))
			}
		}

		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, src, mode), "%v", mode)

		img, err := Decode(&buf, mode, nil)
		require.NoError(t, err, "%v", mode)

		dst := img.Bitmap.(*image.Paletted)
		assert.Equal(t, src.Pix, dst.Pix, "%v", mode)
	}
}

// The YJK round trip is lossy but a channel-aligned uniform image
// survives exactly: every group has equal chroma so nothing is averaged
// away.
func TestEncodeYJKRoundTrip(t *testing.T) {
	for _, mode := range []Mode{Screen10, Screen12} {
		d, err := Descriptor(mode)
		require.NoError(t, err)

		want := color.RGBA{132, 132, 165, 0xff} // Y=16, J=0, K=0
		src := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
		for y := 0; y < d.Height; y++ {
			for x := 0; x < d.Width; x++ {
				src.SetRGBA(x, y, want)
			}
		}

		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, src, mode), "%v", mode)

		img, err := Decode(&buf, mode, nil)
		require.NoError(t, err, "%v", mode)

		dst := img.Bitmap.(*image.RGBA)
		assert.Equal(t, want, dst.RGBAAt(0, 0), "%v", mode)
		assert.Equal(t, want, dst.RGBAAt(d.Width-1, d.Height-1), "%v", mode)
	}
}

// Screen 10 reserves bit 3 of every byte as the palette escape flag and
// the encoder must never set it.
func TestEncodeScreen10MasksEscapeBit(t *testing.T) {
	d, err := Descriptor(Screen10)
	require.NoError(t, err)

	src := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			src.SetRGBA(x, y, color.RGBA{uint8(x), uint8(y), uint8(x ^ y), 0xff})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, src, Screen10))

	c := d.chunks[chunkTilePattern]
	pat := buf.Bytes()[headerSize+c.Offset : headerSize+c.Offset+c.Size]
	for i, b := range pat {
		require.Zero(t, b&0x08, "byte %d", i)
	}
}

func TestEncodePaletteDump(t *testing.T) {
	d, err := Descriptor(Screen5)
	require.NoError(t, err)

	m := image.NewPaletted(image.Rect(0, 0, d.Width, d.Height), testPalette(16))
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m, Screen5))

	c := d.chunks[chunkPalette]
	pal := buf.Bytes()[headerSize+c.Offset : headerSize+c.Offset+c.Size]
	assert.Equal(t, rawPaletteMSX2, pal)
}

func TestEncodeSpritePlaceholders(t *testing.T) {
	d, err := Descriptor(Screen5)
	require.NoError(t, err)

	m := image.NewPaletted(image.Rect(0, 0, d.Width, d.Height), testPalette(16))
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m, Screen5))
	b := buf.Bytes()

	attr := d.chunks[chunkSpriteAttr]
	for plane := 0; plane < spritePlanes; plane++ {
		rec := b[headerSize+attr.Offset+plane*spriteAttrRecord:]
		assert.Equal(t, byte(placeholderSpriteY), rec[0], "plane %d", plane)
		assert.Equal(t, byte(plane*placeholderSpriteStride), rec[1], "plane %d", plane)
		assert.Equal(t, byte(placeholderSpriteColor), rec[3], "plane %d", plane)
	}

	col := d.chunks[chunkSpriteColor]
	for i := 0; i < col.Size; i++ {
		require.Equal(t, byte(placeholderSpriteColor), b[headerSize+col.Offset+i], "byte %d", i)
	}

	// No sprite patterns are reconstructed.
	pat := d.chunks[chunkSpritePattern]
	assert.True(t, allZero(b[headerSize+pat.Offset:headerSize+pat.Offset+pat.Size]))
}

// Encoding an image that is not paletted quantizes it into the mode's
// color budget first.
func TestEncodeQuantizes(t *testing.T) {
	d, err := Descriptor(Screen5)
	require.NoError(t, err)

	src := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			src.SetRGBA(x, y, color.RGBA{uint8(x), uint8(y), 0, 0xff})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, src, Screen5))

	img, err := Decode(&buf, Screen5, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(img.Palette), 16)
}
