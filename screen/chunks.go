package screen

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

var magic = [3]byte{0xfe, 0x00, 0x00}

func readFull(r io.Reader, b []byte) error {
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// readHeader consumes and validates the 7 byte file header: the 0xFE
// magic byte, a zero begin address, the end address and the unused
// execution address.
func readHeader(r io.Reader) error {
	var b [3]byte
	if err := readFull(r, b[:]); err != nil {
		return err
	}
	if b != magic {
		return fmt.Errorf("%w: bad magic % x", ErrNotMSXFile, b)
	}
	var rest [headerSize - 3]byte
	return readFull(r, rest[:])
}

// writeHeader emits the 7 byte header for a VRAM dump of the given size.
func writeHeader(w io.Writer, fileSize int) error {
	var b [headerSize]byte
	copy(b[:], magic[:])
	binary.LittleEndian.PutUint16(b[3:5], uint16(fileSize-1))
	// Bytes 5 and 6 are the execution address, always zero.
	_, err := w.Write(b[:])
	return err
}

// vram holds the raw chunk buffers of one screen file keyed by chunk
// kind. Chunks the mode does not define stay nil.
type vram struct {
	chunks [numChunkKinds][]byte
}

func (v *vram) chunk(k chunkKind) []byte {
	return v.chunks[k]
}

// readVRAM populates the chunk buffers in a single forward pass over the
// stream, skipping the gaps between chunks. The header must already have
// been consumed.
func readVRAM(r io.Reader, d *ModeDescriptor) (*vram, error) {
	kinds := make([]chunkKind, 0, numChunkKinds)
	for k := chunkKind(0); k < numChunkKinds; k++ {
		if _, ok := d.chunkAt(k); ok {
			kinds = append(kinds, k)
		}
	}
	sort.Slice(kinds, func(i, j int) bool {
		return d.chunks[kinds[i]].Offset < d.chunks[kinds[j]].Offset
	})

	v := new(vram)
	pos := 0
	for _, k := range kinds {
		c := d.chunks[k]
		if c.Offset+c.Size > d.FileSize {
			return nil, fmt.Errorf("%w: chunk at %#x overlaps file size %#x",
				ErrDimensionOverflow, c.Offset, d.FileSize)
		}
		if skip := c.Offset - pos; skip > 0 {
			if _, err := io.CopyN(io.Discard, r, int64(skip)); err != nil {
				if err == io.EOF {
					return nil, ErrUnexpectedEOF
				}
				return nil, err
			}
		}
		b := make([]byte, c.Size)
		if err := readFull(r, b); err != nil {
			return nil, fmt.Errorf("reading chunk at %#x: %w", c.Offset, err)
		}
		v.chunks[k] = b
		pos = c.Offset + c.Size
	}
	return v, nil
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
