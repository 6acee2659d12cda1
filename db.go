package msx

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nataliapc/aseprite-msx/screen"
)

// ScreenDB is the catalog of scanned screen files.
type ScreenDB struct {
	db *sql.DB
}

// Entry is one cataloged screen file.
type Entry struct {
	Path   string
	CRC    string
	Mode   screen.Mode
	Width  int
	Height int
	Colors int
}

func NewScreenDB(file string) (*ScreenDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS screen (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, crc TEXT NOT NULL, mode INTEGER NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, colors INTEGER NOT NULL, thumbnail BLOB)"); err != nil {
		return nil, err
	}

	return &ScreenDB{
		db: db,
	}, nil
}

func (db *ScreenDB) Close() error {
	return db.db.Close()
}

// Add inserts or replaces the catalog entry for a path. thumbnail is an
// optional PNG rendition of the decoded bitmap.
func (db *ScreenDB) Add(e Entry, thumbnail []byte) error {
	_, err := db.db.Exec("INSERT OR REPLACE INTO screen (path, crc, mode, width, height, colors, thumbnail) VALUES (?, ?, ?, ?, ?, ?, ?)",
		e.Path, e.CRC, int(e.Mode), e.Width, e.Height, e.Colors, thumbnail)
	return err
}

// FindByCRC returns every cataloged file with the given checksum.
func (db *ScreenDB) FindByCRC(crc string) ([]Entry, error) {
	rows, err := db.db.Query("SELECT path, crc, mode, width, height, colors FROM screen WHERE crc = ?", crc)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var mode int
		if err := rows.Scan(&e.Path, &e.CRC, &mode, &e.Width, &e.Height, &e.Colors); err != nil {
			return nil, err
		}
		e.Mode = screen.Mode(mode)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Thumbnail returns the stored PNG thumbnail for a path, or nil if the
// file was cataloged without one.
func (db *ScreenDB) Thumbnail(path string) ([]byte, error) {
	var b []byte
	switch err := db.db.QueryRow("SELECT thumbnail FROM screen WHERE path = ?", path).Scan(&b); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return b, nil
	default:
		return nil, err
	}
}
