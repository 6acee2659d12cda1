package msx

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// crcFile returns the IEEE CRC-32 of a file as an uppercase hex string,
// the key used to look screens up in the catalog.
func crcFile(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := crc32.NewIEEE()
	if _, err = io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%.*X", crc32.Size<<1, h.Sum(nil)), nil
}
