// Package storage implements the on-disk page format: a flat file of
// fixed-size pages, a bounded in-memory page cache, and the header page
// (page 0) that anchors the root of the B+ tree and the statistics blob.
package storage

import "errors"

const (
	// DefaultPageSize is used when a database file is created fresh and no
	// override is configured.
	DefaultPageSize = 4096

	// DefaultCacheSlots bounds the pager's in-memory page cache.
	DefaultCacheSlots = 100

	// MagicSize is the width of the magic string at the start of page 0.
	MagicSize = 8
)

// Magic identifies a pagedb database file. It is written verbatim into
// the first MagicSize bytes of page 0.
var Magic = [MagicSize]byte{'P', 'A', 'G', 'E', 'D', 'B', '0', '1'}

var (
	// ErrCorruption is returned by Open when the header magic or page size
	// disagrees with what is on disk.
	ErrCorruption = errors.New("storage: corruption detected")

	// ErrIO wraps an underlying I/O failure from the file.
	ErrIO = errors.New("storage: I/O error")

	// ErrPageOutOfRange is returned by Get/GetMut for a page id
	// at or beyond NumPages.
	ErrPageOutOfRange = errors.New("storage: page id out of range")
)
