package testutil

import (
	"fmt"

	"github.com/joshuapare/kheap/internal/format"
)

// FlatMemory is a byte slice addressed as if it lived at Base. It stands in
// for a mapped heap range in allocator tests. Out-of-range accesses panic.
type FlatMemory struct {
	Base uintptr
	Data []byte

	Reads  int // ReadWord calls
	Writes int // WriteWord calls
}

// NewFlatMemory allocates size zeroed bytes addressed from base.
func NewFlatMemory(base, size uintptr) *FlatMemory {
	return &FlatMemory{Base: base, Data: make([]byte, size)}
}

// End returns the first address past the memory.
func (m *FlatMemory) End() uintptr {
	return m.Base + uintptr(len(m.Data))
}

func (m *FlatMemory) offset(addr, n uintptr) int {
	if addr < m.Base || addr+n < addr || addr+n > m.End() {
		panic(fmt.Sprintf("testutil: access [%#x, +%d) outside [%#x, %#x)", addr, n, m.Base, m.End()))
	}
	return int(addr - m.Base)
}

// ReadWord reads a little-endian word.
func (m *FlatMemory) ReadWord(addr uintptr) uint64 {
	m.Reads++
	return format.ReadWord(m.Data, m.offset(addr, format.WordSize))
}

// WriteWord writes a little-endian word.
func (m *FlatMemory) WriteWord(addr uintptr, v uint64) {
	m.Writes++
	format.PutWord(m.Data, m.offset(addr, format.WordSize), v)
}

// ReadAt copies len(p) bytes starting at addr into p.
func (m *FlatMemory) ReadAt(p []byte, addr uintptr) {
	off := m.offset(addr, uintptr(len(p)))
	copy(p, m.Data[off:])
}

// WriteAt copies p to addr.
func (m *FlatMemory) WriteAt(p []byte, addr uintptr) {
	off := m.offset(addr, uintptr(len(p)))
	copy(m.Data[off:], p)
}

// Copy moves n bytes from src to dst. Overlapping ranges are handled.
func (m *FlatMemory) Copy(dst, src, n uintptr) {
	d := m.offset(dst, n)
	s := m.offset(src, n)
	copy(m.Data[d:d+int(n)], m.Data[s:s+int(n)])
}

// Fill sets n bytes at addr to b.
func (m *FlatMemory) Fill(addr, n uintptr, b byte) {
	off := m.offset(addr, n)
	for i := range m.Data[off : off+int(n)] {
		m.Data[off+i] = b
	}
}
