package screen

import "image"

// TileColorClashes returns the origin of every 8 pixel aligned
// horizontal run using more than two distinct colors. The tiled modes
// allow only a foreground and a background color per pattern row, so a
// raster decoded from a valid tiled file never clashes; the check is for
// images about to be converted toward one.
func TileColorClashes(m *image.Paletted) []image.Point {
	var clashes []image.Point

	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x += 8 {
			var seen [256]bool
			n := 0
			for i := 0; i < 8 && x+i < b.Max.X; i++ {
				if ci := m.ColorIndexAt(x+i, y); !seen[ci] {
					seen[ci] = true
					n++
				}
			}
			if n > 2 {
				clashes = append(clashes, image.Point{X: x, Y: y})
			}
		}
	}
	return clashes
}
