package msx

import (
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nataliapc/aseprite-msx/screen"
)

func TestModeFromPath(t *testing.T) {
	tables := []struct {
		path string
		mode screen.Mode
	}{
		{"image.SC2", screen.Screen2},
		{"/some/dir/title.sc5", screen.Screen5},
		{"photo.S12", screen.Screen12},
	}

	for _, table := range tables {
		m, err := ModeFromPath(table.path)
		require.NoError(t, err)
		assert.Equal(t, table.mode, m)
	}

	_, err := ModeFromPath("image.png")
	assert.Error(t, err)
}

func testImage(t *testing.T, mode screen.Mode) *image.Paletted {
	t.Helper()
	d, err := screen.Descriptor(mode)
	require.NoError(t, err)

	p, err := screen.DefaultPalette(screen.PaletteMSX2)
	require.NoError(t, err)

	m := image.NewPaletted(image.Rect(0, 0, d.Width, d.Height), p)
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			m.SetColorIndex(x, y, uint8((x/16+y/16)%16))
		}
	}
	return m
}

func TestEncodeDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.SC5")

	src := testImage(t, screen.Screen5)
	require.NoError(t, EncodeFile(path, src, screen.Screen5))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7+0x8000), info.Size())

	img, err := DecodeFile(path, screen.Screen5, nil)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, img.Bitmap.(*image.Paletted).Pix)

	cfg, err := DecodeFileConfig(path, screen.Screen5)
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Width)
	assert.Equal(t, 212, cfg.Height)
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "title.SC5")
	require.NoError(t, EncodeFile(path, testImage(t, screen.Screen5), screen.Screen5))

	// A file with a screen extension but a bad header is skipped, not
	// fatal.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.SC2"), []byte{0x00, 0x01}, 0o644))
	// Unrelated files are ignored entirely.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0o644))

	db, err := NewScreenDB(filepath.Join(dir, "catalog.db"))
	require.NoError(t, err)
	defer db.Close()

	m := New(db, log.New(io.Discard, "", 0))
	require.NoError(t, m.Scan(dir))

	crc, err := crcFile(path)
	require.NoError(t, err)

	entries, err := db.FindByCRC(crc)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, path, entries[0].Path)
	assert.Equal(t, screen.Screen5, entries[0].Mode)
	assert.Equal(t, 256, entries[0].Width)
	assert.Equal(t, 212, entries[0].Height)

	thumb, err := db.Thumbnail(path)
	require.NoError(t, err)
	assert.NotEmpty(t, thumb)
}
