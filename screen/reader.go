package screen

import (
	"fmt"
	"image"
	"image/color"
	"io"
)

// DecodeOptions controls the optional stages of the decode pipeline.
// The zero value decodes the bitmap only.
type DecodeOptions struct {
	// RenderSprites composites the sprite planes onto the bitmap.
	RenderSprites bool

	// SpriteSize16 treats sprites as 16x16 instead of 8x8. The size is
	// a VDP register setting, not part of the file, so the caller has
	// to choose.
	SpriteSize16 bool

	// TileLayer additionally renders the complete tile pattern table,
	// independent of the tile map, for the tiled modes.
	TileLayer bool
}

// Image is the result of decoding one screen file.
type Image struct {
	Mode Mode

	// Bitmap is an *image.Paletted for the indexed modes and an
	// *image.RGBA for the YJK modes.
	Bitmap image.Image

	// Palette is the active palette: the in-file palette when present,
	// the mode's default otherwise. For the YJK modes it is the 16
	// color palette shared by sprites and the screen 10 escape pixels.
	Palette color.Palette

	// Tiles is the raw tile pattern layer, only set for tiled modes
	// when DecodeOptions.TileLayer was requested.
	Tiles *image.Paletted
}

// Surface sizes are fixed per mode but are still validated so that a
// corrupt descriptor can never ask for an absurd allocation.
const maxSurfaceDim = 1 << 13

type decoder struct {
	d    *ModeDescriptor
	opts DecodeOptions

	v       *vram
	palette color.Palette
	cv      canvas
	tiles   *image.Paletted
}

// Decode reads one screen file from r. The screen mode cannot be told
// from the header alone, so the caller names it, typically from the file
// extension via ModeByName. opts may be nil.
func Decode(r io.Reader, mode Mode, opts *DecodeOptions) (*Image, error) {
	d, err := Descriptor(mode)
	if err != nil {
		return nil, err
	}

	dec := decoder{d: d}
	if opts != nil {
		dec.opts = *opts
	}

	if err := readHeader(r); err != nil {
		return nil, err
	}
	if err := dec.allocateSurface(); err != nil {
		return nil, err
	}
	if dec.v, err = readVRAM(r, d); err != nil {
		return nil, err
	}
	dec.resolvePalette()
	if err := dec.paintBitmap(); err != nil {
		return nil, err
	}
	if dec.opts.RenderSprites {
		paintSprites(&dec.cv, dec.v, d, dec.opts.SpriteSize16)
	}
	if dec.opts.TileLayer && d.fam == familyTiled {
		if err := dec.paintDebugTiles(); err != nil {
			return nil, err
		}
	}

	img := &Image{Mode: mode, Palette: dec.palette, Tiles: dec.tiles}
	if dec.cv.paletted != nil {
		img.Bitmap = dec.cv.paletted
	} else {
		img.Bitmap = dec.cv.rgba
	}
	return img, nil
}

// DecodeConfig returns the color model and dimensions of a screen file
// without decoding the pixel data.
func DecodeConfig(r io.Reader, mode Mode) (image.Config, error) {
	d, err := Descriptor(mode)
	if err != nil {
		return image.Config{}, err
	}
	if err := readHeader(r); err != nil {
		return image.Config{}, err
	}

	cfg := image.Config{Width: d.Width, Height: d.Height}
	if d.fam == familyYJK {
		cfg.ColorModel = color.RGBAModel
	} else {
		p, err := DefaultPalette(d.paletteTag)
		if err != nil {
			return image.Config{}, err
		}
		cfg.ColorModel = p
	}
	return cfg, nil
}

func (dec *decoder) allocateSurface() error {
	d := dec.d
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadDimensions, d.Width, d.Height)
	}
	if d.Width > maxSurfaceDim || d.Height > maxSurfaceDim {
		return fmt.Errorf("%w: %dx%d", ErrDimensionOverflow, d.Width, d.Height)
	}

	p, err := DefaultPalette(d.paletteTag)
	if err != nil {
		return err
	}
	dec.palette = p

	r := image.Rect(0, 0, d.Width, d.Height)
	if d.fam == familyYJK {
		dec.cv = canvas{rgba: image.NewRGBA(r)}
	} else {
		dec.cv = canvas{paletted: image.NewPaletted(r, p)}
	}
	dec.cv.palette = dec.palette
	dec.cv.transparent = d.TransparentIndex()
	return nil
}

// resolvePalette applies the in-file palette on top of the default one.
// A palette chunk of all zero bytes is treated as never written and the
// default is kept, which tolerates files saved before the color table
// was populated.
func (dec *decoder) resolvePalette() {
	raw := dec.v.chunk(chunkPalette)
	if !dec.d.paletteInFile || raw == nil || allZero(raw) {
		return
	}

	n := dec.d.MaxColors
	if n > 16 {
		n = 16
	}
	p := decodeRGB444Palette(raw, n)
	copy(dec.palette, p)

	if dec.cv.paletted != nil {
		dec.cv.paletted.Palette = dec.palette
	}
	dec.cv.palette = dec.palette
}

func (dec *decoder) paintBitmap() error {
	switch dec.d.fam {
	case familyTiled:
		return dec.paintTiled()
	case familyPlanarRGB:
		dec.paintPlanar()
	case familyYJK:
		dec.paintYJK()
	}
	return nil
}

// paintTiled walks the tile map in raster order. Banked modes switch to
// the next 0x800 byte bank of the pattern and color tables every 64
// pixel rows; screen 1 has a single bank and one color byte per eight
// tiles; screen 3 has no patterns at all and paints color blocks.
func (dec *decoder) paintTiled() error {
	if dec.d.blockPaint {
		return dec.paintBlocks()
	}

	pat := dec.v.chunk(chunkTilePattern)
	tmap := dec.v.chunk(chunkTileMap)
	col := dec.v.chunk(chunkTileColor)

	cols, rows := dec.d.Width/8, dec.d.Height/8
	for ty := 0; ty < rows; ty++ {
		bank := 0
		if dec.d.banked {
			bank = 0x800 * (ty * 8 / 64)
		}
		for tx := 0; tx < cols; tx++ {
			off := bank + int(tmap[ty*cols+tx])*8
			if err := dec.paintTileRows(pat, col, off, tx*8, ty*8); err != nil {
				return err
			}
		}
	}
	return nil
}

// paintTileRows paints the eight rows of one tile at (x,y).
func (dec *decoder) paintTileRows(pat, col []byte, off, x, y int) error {
	for row := 0; row < 8; row++ {
		colOff := off + row
		if dec.d.sparseColor {
			colOff = off / 64
		}
		if colOff >= len(col) {
			return fmt.Errorf("%w: color offset %#x", ErrTilesetOverflow, colOff)
		}
		if off+row >= len(pat) {
			return fmt.Errorf("%w: pattern offset %#x", ErrTilesetOverflow, off+row)
		}

		fg, bg := col[colOff]>>4, col[colOff]&0x0f
		pb := pat[off+row]
		for bit := 0; bit < 8; bit++ {
			ci := bg
			if pb&(0x80>>uint(bit)) != 0 {
				ci = fg
			}
			dec.cv.paletted.SetColorIndex(x+bit, y+row, ci)
		}
	}
	return nil
}

// paintBlocks renders the screen 3 multicolor grid: a 64x48 grid of 4x4
// pixel blocks, two blocks per color byte, high nibble on the left.
func (dec *decoder) paintBlocks() error {
	col := dec.v.chunk(chunkTileColor)

	cols, rows := dec.d.Width/4, dec.d.Height/4
	for by := 0; by < rows; by++ {
		for bx := 0; bx < cols; bx++ {
			off := (by/8)*256 + (by & 7) + (bx*4)&0xf8
			if off >= len(col) {
				return fmt.Errorf("%w: block offset %#x", ErrTilesetOverflow, off)
			}

			ci := col[off] >> 4
			if bx&1 == 1 {
				ci = col[off] & 0x0f
			}
			for yy := 0; yy < 4; yy++ {
				for xx := 0; xx < 4; xx++ {
					dec.cv.paletted.SetColorIndex(bx*4+xx, by*4+yy, ci)
				}
			}
		}
	}
	return nil
}

// paintPlanar streams the pattern table byte by byte, each byte packing
// 8/bpp pixels MSB first.
func (dec *decoder) paintPlanar() {
	pat := dec.v.chunk(chunkTilePattern)

	bpp := dec.d.bitsPerPixel
	perByte := 8 / bpp
	mask := uint8(1)<<uint(bpp) - 1

	x, y := 0, 0
	for _, b := range pat {
		if y >= dec.d.Height {
			break
		}
		for i := 0; i < perByte; i++ {
			shift := uint(8 - bpp*(i+1))
			dec.cv.paletted.SetColorIndex(x+i, y, b>>shift&mask)
		}
		x += perByte
		if x >= dec.d.Width {
			x, y = 0, y+1
		}
	}
}

// paintYJK streams the pattern table four bytes at a time: four 5-bit
// luminance values sharing one 6-bit J/K chroma pair assembled from the
// low bits. On screen 10 an odd luminance selects palette color Y>>1
// for that pixel instead of the YJK transform.
func (dec *decoder) paintYJK() {
	pat := dec.v.chunk(chunkTilePattern)

	x, y := 0, 0
	for i := 0; i+4 <= len(pat) && y < dec.d.Height; i += 4 {
		g := pat[i : i+4]
		k := twos6(int(g[0]&7) | int(g[1]&7)<<3)
		j := twos6(int(g[2]&7) | int(g[3]&7)<<3)

		for p := 0; p < 4; p++ {
			yv := int(g[p] >> 3)
			if dec.d.paletteEscape && yv&1 == 1 {
				if ci := yv >> 1; ci < len(dec.palette) {
					dec.cv.rgba.Set(x+p, y, dec.palette[ci])
				}
			} else {
				dec.cv.rgba.SetRGBA(x+p, y, yjkToRGB(yv, j, k))
			}
		}

		x += 4
		if x >= dec.d.Width {
			x, y = 0, y+1
		}
	}
}

// paintDebugTiles renders the whole tile pattern table linearly into an
// auxiliary layer, ignoring the tile map. Walking tiles in storage order
// lines up with the main painter's banking because one bank is exactly
// 64 rows worth of tiles.
func (dec *decoder) paintDebugTiles() error {
	pat := dec.v.chunk(chunkTilePattern)
	col := dec.v.chunk(chunkTileColor)
	if pat == nil {
		return nil
	}

	numTiles := len(pat) / 8
	tiles := image.NewPaletted(image.Rect(0, 0, 256, numTiles/32*8), dec.palette)

	save := dec.cv.paletted
	dec.cv.paletted = tiles
	defer func() { dec.cv.paletted = save }()

	for t := 0; t < numTiles; t++ {
		if err := dec.paintTileRows(pat, col, t*8, t%32*8, t/32*8); err != nil {
			return err
		}
	}

	dec.tiles = tiles
	return nil
}
