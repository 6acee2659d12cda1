package msx

import (
	"image"
	"os"
	"path/filepath"

	"github.com/nataliapc/aseprite-msx/screen"
)

// ModeFromPath derives the screen mode from a file extension such as
// .SC5 or .S12.
func ModeFromPath(path string) (screen.Mode, error) {
	return screen.ModeByName(filepath.Ext(path))
}

// DecodeFile decodes one screen file. The file handle is scoped to the
// call and closed on every path.
func DecodeFile(path string, mode screen.Mode, opts *screen.DecodeOptions) (*screen.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return screen.Decode(f, mode, opts)
}

// DecodeFileConfig returns the geometry and color model of a screen file
// without decoding it.
func DecodeFileConfig(path string, mode screen.Mode) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()

	return screen.DecodeConfig(f, mode)
}

// EncodeFile writes m as a screen file of the given mode.
func EncodeFile(path string, m image.Image, mode screen.Mode) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return screen.Encode(f, m, mode)
}
