/*
Package screen implements a decoder and encoder for raw MSX VRAM screen
dumps (the BSAVE'd SCn files produced by COPY, BLOAD/BSAVE and most MSX
graphics tools).

A screen file is a 7 byte binary header followed by a dump of video RAM:
a magic byte 0xFE, a 16-bit little-endian begin address (always zero), a
16-bit little-endian end address (the VRAM size minus one) and a 16-bit
execution address which is unused. The VRAM region holds the tile map,
tile/character patterns, color attributes, sprite attribute and pattern
tables, an optional sprite color table and an optional palette, each at a
fixed mode specific offset.

Ten screen modes are supported: the tiled modes 1 to 4, the planar RGB
modes 5 to 8 and the YJK modes 10 and 12. Tiled modes decode through the
tile map with two colors per pattern row, planar modes pack 1, 2 or 4
bits per pixel MSB first, and YJK modes share one chroma pair across
groups of four pixels, with screen 10 able to escape to a palette color
per pixel.
*/
package screen

import (
	"fmt"
	"strings"
)

// Mode identifies one of the supported MSX screen modes. The numeric
// values match the MSX BASIC SCREEN statement.
type Mode int

const (
	Screen1  Mode = 1
	Screen2  Mode = 2
	Screen3  Mode = 3
	Screen4  Mode = 4
	Screen5  Mode = 5
	Screen6  Mode = 6
	Screen7  Mode = 7
	Screen8  Mode = 8
	Screen10 Mode = 10
	Screen12 Mode = 12
)

func (m Mode) String() string {
	return fmt.Sprintf("SCREEN %d", int(m))
}

type family int

const (
	familyTiled family = iota
	familyPlanarRGB
	familyYJK
)

type chunkKind int

const (
	chunkTileMap chunkKind = iota
	chunkTilePattern
	chunkTileColor
	chunkSpriteAttr
	chunkSpritePattern
	chunkSpriteColor
	chunkPalette
	numChunkKinds
)

// chunk is the location of one VRAM region within the file, relative to
// the end of the 7 byte header. A zero Size means the mode does not have
// the region at all.
type chunk struct {
	Offset int
	Size   int
}

const (
	headerSize = 7

	spritePlanes      = 32
	spriteAttrRecord  = 4
	spriteColorRecord = 16
)

// ModeDescriptor describes the geometry and VRAM layout of one screen
// mode. Descriptors are immutable; Descriptor returns the same instance
// for every call with the same mode.
type ModeDescriptor struct {
	Mode      Mode
	Width     int
	Height    int
	MaxColors int
	FileSize  int

	fam        family
	paletteTag string

	// Planar modes only.
	bitsPerPixel int

	// Tiled mode quirks.
	banked      bool // pattern/color tables switch 0x800 byte banks every 64 rows
	sparseColor bool // screen 1: one color byte covers eight tiles
	blockPaint  bool // screen 3: 4x4 color blocks, no 1bpp patterns

	// YJK mode quirks.
	paletteEscape bool // screen 10: odd Y selects palette color Y>>1

	paletteInFile bool // palette chunk overrides the default palette

	spriteColorTable bool // per-line sprite colors (sprite mode 2)

	chunks [numChunkKinds]chunk
}

// TransparentIndex returns the reserved transparent palette index for
// indexed modes, which is one past the last usable color.
func (d *ModeDescriptor) TransparentIndex() int {
	return d.MaxColors
}

func (d *ModeDescriptor) chunkAt(k chunkKind) (chunk, bool) {
	c := d.chunks[k]
	return c, c.Size > 0
}

var descriptors = []*ModeDescriptor{
	{
		Mode: Screen1, Width: 256, Height: 192, MaxColors: 16, FileSize: 0x4000,
		fam: familyTiled, paletteTag: PaletteMSX1, sparseColor: true,
		chunks: [numChunkKinds]chunk{
			chunkTilePattern:   {0x0000, 0x800},
			chunkTileMap:       {0x1800, 0x300},
			chunkTileColor:     {0x2000, 0x20},
			chunkSpriteAttr:    {0x1b00, 0x80},
			chunkPalette:       {0x2020, 0x20},
			chunkSpritePattern: {0x3800, 0x800},
		},
	},
	{
		Mode: Screen2, Width: 256, Height: 192, MaxColors: 16, FileSize: 0x4000,
		fam: familyTiled, paletteTag: PaletteMSX1, banked: true,
		chunks: [numChunkKinds]chunk{
			chunkTilePattern:   {0x0000, 0x1800},
			chunkTileMap:       {0x1800, 0x300},
			chunkTileColor:     {0x2000, 0x1800},
			chunkSpriteAttr:    {0x1b00, 0x80},
			chunkPalette:       {0x1b80, 0x20},
			chunkSpritePattern: {0x3800, 0x800},
		},
	},
	{
		Mode: Screen3, Width: 256, Height: 192, MaxColors: 16, FileSize: 0x4000,
		fam: familyTiled, paletteTag: PaletteMSX1, blockPaint: true,
		chunks: [numChunkKinds]chunk{
			chunkTileMap:       {0x0800, 0x300},
			chunkTileColor:     {0x0000, 0x600},
			chunkSpriteAttr:    {0x1b00, 0x80},
			chunkPalette:       {0x0f00, 0x20},
			chunkSpritePattern: {0x3800, 0x800},
		},
	},
	{
		Mode: Screen4, Width: 256, Height: 192, MaxColors: 16, FileSize: 0x4000,
		fam: familyTiled, paletteTag: PaletteMSX2, banked: true,
		paletteInFile: true, spriteColorTable: true,
		chunks: [numChunkKinds]chunk{
			chunkTilePattern:   {0x0000, 0x1800},
			chunkTileMap:       {0x1800, 0x300},
			chunkTileColor:     {0x2000, 0x1800},
			chunkSpriteAttr:    {0x1e00, 0x80},
			chunkSpriteColor:   {0x1c00, 0x200},
			chunkPalette:       {0x1b80, 0x20},
			chunkSpritePattern: {0x3800, 0x800},
		},
	},
	{
		Mode: Screen5, Width: 256, Height: 212, MaxColors: 16, FileSize: 0x8000,
		fam: familyPlanarRGB, paletteTag: PaletteMSX2, bitsPerPixel: 4,
		paletteInFile: true, spriteColorTable: true,
		chunks: [numChunkKinds]chunk{
			chunkTilePattern:   {0x0000, 0x6a00},
			chunkSpriteAttr:    {0x7600, 0x80},
			chunkSpriteColor:   {0x7400, 0x200},
			chunkPalette:       {0x7680, 0x20},
			chunkSpritePattern: {0x7800, 0x800},
		},
	},
	{
		Mode: Screen6, Width: 512, Height: 212, MaxColors: 4, FileSize: 0x8000,
		fam: familyPlanarRGB, paletteTag: PaletteMSX2, bitsPerPixel: 2,
		paletteInFile: true, spriteColorTable: true,
		chunks: [numChunkKinds]chunk{
			chunkTilePattern:   {0x0000, 0x6a00},
			chunkSpriteAttr:    {0x7600, 0x80},
			chunkSpriteColor:   {0x7400, 0x200},
			chunkPalette:       {0x7680, 0x20},
			chunkSpritePattern: {0x7800, 0x800},
		},
	},
	{
		Mode: Screen7, Width: 512, Height: 212, MaxColors: 16, FileSize: 0xfaa0,
		fam: familyPlanarRGB, paletteTag: PaletteMSX2, bitsPerPixel: 4,
		paletteInFile: true, spriteColorTable: true,
		chunks: [numChunkKinds]chunk{
			chunkTilePattern:   {0x0000, 0xd400},
			chunkSpriteAttr:    {0xfa00, 0x80},
			chunkSpriteColor:   {0xf800, 0x200},
			chunkPalette:       {0xfa80, 0x20},
			chunkSpritePattern: {0xf000, 0x800},
		},
	},
	{
		Mode: Screen8, Width: 256, Height: 212, MaxColors: 256, FileSize: 0xfaa0,
		fam: familyPlanarRGB, paletteTag: PaletteGRB332, bitsPerPixel: 8,
		spriteColorTable: true,
		chunks: [numChunkKinds]chunk{
			chunkTilePattern:   {0x0000, 0xd400},
			chunkSpriteAttr:    {0xfa00, 0x80},
			chunkSpriteColor:   {0xf800, 0x200},
			chunkPalette:       {0xfa80, 0x20},
			chunkSpritePattern: {0xf000, 0x800},
		},
	},
	{
		Mode: Screen10, Width: 256, Height: 212, MaxColors: 16, FileSize: 0xfaa0,
		fam: familyYJK, paletteTag: PaletteMSX2, paletteEscape: true,
		paletteInFile: true, spriteColorTable: true,
		chunks: [numChunkKinds]chunk{
			chunkTilePattern:   {0x0000, 0xd400},
			chunkSpriteAttr:    {0xfa00, 0x80},
			chunkSpriteColor:   {0xf800, 0x200},
			chunkPalette:       {0xfa80, 0x20},
			chunkSpritePattern: {0xf000, 0x800},
		},
	},
	{
		Mode: Screen12, Width: 256, Height: 212, MaxColors: 16, FileSize: 0xfaa0,
		fam: familyYJK, paletteTag: PaletteMSX2,
		paletteInFile: true, spriteColorTable: true,
		chunks: [numChunkKinds]chunk{
			chunkTilePattern:   {0x0000, 0xd400},
			chunkSpriteAttr:    {0xfa00, 0x80},
			chunkSpriteColor:   {0xf800, 0x200},
			chunkPalette:       {0xfa80, 0x20},
			chunkSpritePattern: {0xf000, 0x800},
		},
	},
}

var descriptorByMode = func() map[Mode]*ModeDescriptor {
	m := make(map[Mode]*ModeDescriptor, len(descriptors))
	for _, d := range descriptors {
		m[d.Mode] = d
	}
	return m
}()

// Descriptor returns the layout descriptor for the given screen mode.
func Descriptor(m Mode) (*ModeDescriptor, error) {
	d, ok := descriptorByMode[m]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return d, nil
}

// Modes returns every supported screen mode in ascending order.
func Modes() []Mode {
	modes := make([]Mode, 0, len(descriptors))
	for _, d := range descriptors {
		modes = append(modes, d.Mode)
	}
	return modes
}

var modeNames = map[string]Mode{
	"SC1": Screen1,
	"SC2": Screen2,
	"SC3": Screen3,
	"SC4": Screen4,
	"SC5": Screen5,
	"SC6": Screen6,
	"SC7": Screen7,
	"SC8": Screen8,
	"S10": Screen10,
	"S12": Screen12,
}

// ModeByName maps a file extension style name such as "SC5" or "S10"
// (with or without a leading dot, any case) to its screen mode.
func ModeByName(name string) (Mode, error) {
	n := strings.ToUpper(strings.TrimPrefix(name, "."))
	m, ok := modeNames[n]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	return m, nil
}
