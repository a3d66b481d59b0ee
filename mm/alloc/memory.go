package alloc

import (
	"fmt"

	"github.com/joshuapare/kheap/internal/format"
)

// Memory is the word-granular view of the managed range. Allocators read and
// write block headers exclusively through it.
type Memory interface {
	ReadWord(addr uintptr) uint64
	WriteWord(addr uintptr, v uint64)
}

// Block describes a contiguous address range [Addr, Addr+Size).
type Block struct {
	Addr uintptr
	Size uintptr
}

// End returns the first address past the block.
func (b Block) End() uintptr {
	return b.Addr + b.Size
}

// String implements fmt.Stringer.
func (b Block) String() string {
	return fmt.Sprintf("[%#x, %#x)", b.Addr, b.End())
}

// checkLayout validates a size/alignment pair.
func checkLayout(size, align uintptr) error {
	if !format.IsPowerOfTwo(align) {
		return ErrInvalidLayout
	}
	if size+align < size {
		return ErrInvalidLayout
	}
	return nil
}

// checkRange validates a range handed to Init. Address zero is reserved as
// the list terminator.
func checkRange(start, size, minSize uintptr) error {
	if start == 0 || size < minSize || start+size < start {
		return fmt.Errorf("%w: [%#x, +%#x)", ErrBadRange, start, size)
	}
	return nil
}
