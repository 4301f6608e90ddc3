package btree

import "errors"

var (
	// ErrDuplicateKey is returned by Insert when the key already exists.
	ErrDuplicateKey = errors.New("btree: duplicate key")

	// ErrNotFound is returned by Update/Delete when the key does not exist.
	ErrNotFound = errors.New("btree: key not found")
)
