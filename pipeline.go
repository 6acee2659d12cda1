package msx

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/nataliapc/aseprite-msx/screen"
)

// findScreens walks the tree below base and emits every regular file
// whose extension names a screen mode.
func (m *MSX) findScreens(ctx context.Context, base string) (<-chan string, <-chan error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() {
				return nil
			}

			if _, err := screen.ModeByName(filepath.Ext(file)); err != nil {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc
}

// inspect decodes one screen file into its catalog entry and a PNG
// thumbnail of the bitmap.
func (m *MSX) inspect(file string) (Entry, []byte, error) {
	mode, err := ModeFromPath(file)
	if err != nil {
		return Entry{}, nil, err
	}

	crc, err := crcFile(file)
	if err != nil {
		return Entry{}, nil, err
	}

	img, err := DecodeFile(file, mode, &screen.DecodeOptions{RenderSprites: true})
	if err != nil {
		return Entry{}, nil, err
	}

	var thumb bytes.Buffer
	if err := png.Encode(&thumb, img.Bitmap); err != nil {
		return Entry{}, nil, err
	}

	b := img.Bitmap.Bounds()
	return Entry{
		Path:   file,
		CRC:    crc,
		Mode:   mode,
		Width:  b.Dx(),
		Height: b.Dy(),
		Colors: len(img.Palette),
	}, thumb.Bytes(), nil
}

func (m *MSX) screenWorker(ctx context.Context, in <-chan string) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			entry, thumb, err := m.inspect(file)
			if err != nil {
				// A malformed file should not abort the whole scan.
				m.logger.Printf("skipping %q: %v\n", file, err)
				continue
			}

			if err := m.db.Add(entry, thumb); err != nil {
				errc <- err
				return
			}
			m.logger.Printf("cataloged %q as %v, CRC %s\n", file, entry.Mode, entry.CRC)
		}
	}()
	return errc
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks a directory tree and catalogs every screen file found.
func (m *MSX) Scan(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	files, werrc := m.findScreens(ctx, dir)
	serrc := m.screenWorker(ctx, files)

	return waitForPipeline(werrc, serrc)
}
