/*
Package msx is a library for working with collections of MSX screen
files: converting them to and from standard image formats and keeping a
catalog of scanned files with their decoded geometry and a thumbnail.

The codec itself lives in the screen subpackage.
*/
package msx

import "log"

type MSX struct {
	db     *ScreenDB
	logger *log.Logger
}

func New(db *ScreenDB, logger *log.Logger) *MSX {
	return &MSX{
		db:     db,
		logger: logger,
	}
}
