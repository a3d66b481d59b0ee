// Package physmem provides the simulated physical RAM that backs frames handed
// out by the frame source. Physical address p lives at byte p of the host
// mapping, which makes the physical-to-virtual translation a fixed offset.
package physmem

import (
	"errors"
	"fmt"

	"github.com/joshuapare/kheap/internal/format"
)

var (
	// ErrBadSize is returned when the requested memory size is zero or not
	// page aligned.
	ErrBadSize = errors.New("physmem: size must be a non-zero multiple of the page size")

	// ErrClosed is returned by Close when the memory was already released.
	ErrClosed = errors.New("physmem: memory already released")
)

// Memory is a contiguous block of simulated physical memory starting at
// physical address zero.
type Memory struct {
	data    []byte
	release func([]byte) error
}

// New reserves size bytes of zeroed physical memory.
func New(size uintptr) (*Memory, error) {
	if size == 0 || !format.IsAligned(size, format.PageSize) {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	if size > uintptr(^uint(0)>>1) {
		return nil, fmt.Errorf("physmem: size too large to map (%d bytes)", size)
	}

	data, release, err := reserve(int(size))
	if err != nil {
		return nil, fmt.Errorf("physmem: reserve %d bytes: %w", size, err)
	}
	return &Memory{data: data, release: release}, nil
}

// Size returns the number of bytes of physical memory.
func (m *Memory) Size() uintptr {
	return uintptr(len(m.data))
}

// Slice translates the physical range [phys, phys+n) into host memory. It
// panics if the range lies outside the simulated RAM, the equivalent of a
// bus error on real hardware.
func (m *Memory) Slice(phys uintptr, n int) []byte {
	if m.data == nil {
		panic(ErrClosed)
	}
	end := phys + uintptr(n)
	if end < phys || end > uintptr(len(m.data)) {
		panic(fmt.Sprintf("physmem: access [%#x, %#x) outside physical memory [0, %#x)", phys, end, len(m.data)))
	}
	return m.data[phys:end:end]
}

// Close releases the host mapping. Further accesses panic.
func (m *Memory) Close() error {
	if m.data == nil {
		return ErrClosed
	}
	data := m.data
	m.data = nil
	return m.release(data)
}
