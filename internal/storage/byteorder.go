package storage

import "encoding/binary"

// The file format is declared host-endian in spec (§6), but a reproducible
// implementation has to pick one; we standardize little-endian per the
// Design Notes' portability suggestion (§9) and enforce it on open via the
// magic check rather than via a byte-order field.

func GetU16(b []byte, offset int) uint16 {
	return binary.LittleEndian.Uint16(b[offset:])
}

func PutU16(b []byte, offset int, v uint16) {
	binary.LittleEndian.PutUint16(b[offset:], v)
}

func GetU32(b []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(b[offset:])
}

func PutU32(b []byte, offset int, v uint32) {
	binary.LittleEndian.PutUint32(b[offset:], v)
}
