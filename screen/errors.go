package screen

import "errors"

// Every decode or encode failure is terminal for the call; there is no
// local recovery and no partial result. Errors carry optional context
// through fmt wrapping and unwrap to one of these sentinels.
var (
	// ErrUnexpectedEOF is returned when the file is shorter than the
	// mode's VRAM layout requires.
	ErrUnexpectedEOF = errors.New("screen: unexpected end of file")

	// ErrNotMSXFile is returned when the file does not start with the
	// 0xFE binary header for a VRAM dump starting at address zero.
	ErrNotMSXFile = errors.New("screen: not an MSX screen file")

	// ErrBadDimensions is returned when an image has the wrong size
	// for the target screen mode.
	ErrBadDimensions = errors.New("screen: bad dimensions")

	// ErrDimensionOverflow is returned when a surface of the requested
	// size cannot be represented.
	ErrDimensionOverflow = errors.New("screen: dimensions overflow")

	// ErrPaletteNotFound is returned when a mode's default palette tag
	// does not resolve.
	ErrPaletteNotFound = errors.New("screen: palette not found")

	// ErrTilesetOverflow is returned when a computed tile offset runs
	// past the end of the tile color table.
	ErrTilesetOverflow = errors.New("screen: tileset overflow")

	// ErrUnknownMode is returned for a screen mode outside the
	// supported set.
	ErrUnknownMode = errors.New("screen: unknown screen mode")

	// ErrUnsupported is returned for operations the format allows but
	// the codec does not implement, such as encoding tiled modes.
	ErrUnsupported = errors.New("screen: unsupported operation")
)
