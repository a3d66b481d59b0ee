package format

import "encoding/binary"

// Block headers are stored in the managed memory itself as little-endian
// 64-bit words, independent of the host byte order.

// PutWord writes v at b[off:off+WordSize].
func PutWord(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+WordSize], v)
}

// ReadWord reads the word stored at b[off:off+WordSize].
func ReadWord(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+WordSize])
}
