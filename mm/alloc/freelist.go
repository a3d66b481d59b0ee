package alloc

import (
	"fmt"

	"github.com/joshuapare/kheap/internal/format"
)

const (
	// MinBlockSize is the smallest block the free list can track: one word
	// for the size and one for the next pointer.
	MinBlockSize = 2 * format.WordSize

	// MinAlign is the alignment of every block start and size.
	MinAlign = MinBlockSize

	// Header field offsets within a free block.
	hdrSize = 0
	hdrNext = format.WordSize
)

// FreeListAllocator is a first-fit allocator over an intrusive singly linked
// list of free blocks. Each free block stores its own header {size, next} in
// its first two words; address zero terminates the list.
//
// The list is kept in insertion order. Free() coalesces the released range
// with any free block that ends at its start or begins at its end, so the list
// never holds two physically adjacent blocks.
type FreeListAllocator struct {
	mem   Memory
	start uintptr
	end   uintptr
	head  uintptr // first free block, 0 when empty

	stats Stats
}

// Init makes [start, start+size) one free block. The range must already be
// accessible through mem. start is rounded up and the end rounded down to
// MinAlign.
func (f *FreeListAllocator) Init(mem Memory, start, size uintptr) error {
	if err := checkRange(start, size, MinBlockSize); err != nil {
		return err
	}
	s := format.AlignUp(start, MinAlign)
	e := format.AlignDown(start+size, MinAlign)
	if s < start || e <= s || e-s < MinBlockSize {
		return fmt.Errorf("%w: [%#x, +%#x) holds no aligned block", ErrBadRange, start, size)
	}

	*f = FreeListAllocator{mem: mem, start: s, end: e}
	f.push(s, e-s)
	return nil
}

// blockLayout rounds a request to the granularity the list can track.
func blockLayout(size, align uintptr) (uintptr, uintptr, error) {
	if err := checkLayout(size, align); err != nil {
		return 0, 0, err
	}
	align = max(align, MinAlign)
	rounded := format.AlignUp(max(size, MinBlockSize), MinAlign)
	if rounded < size {
		return 0, 0, ErrInvalidLayout
	}
	return rounded, align, nil
}

// fitBlock returns the aligned start of a size-byte allocation inside the
// block [addr, addr+bsize). Front padding that is too small to become a block
// of its own pushes the start to the next aligned address.
func fitBlock(addr, bsize, size, align uintptr) (uintptr, bool) {
	allocStart := format.AlignUp(addr, align)
	if allocStart < addr {
		return 0, false
	}
	if pad := allocStart - addr; pad != 0 && pad < MinBlockSize {
		allocStart = format.AlignUp(addr+MinBlockSize, align)
		if allocStart < addr {
			return 0, false
		}
	}
	allocEnd := allocStart + size
	if allocEnd < allocStart || allocEnd > addr+bsize {
		return 0, false
	}
	return allocStart, true
}

// Alloc returns the first free block that fits size bytes at align.
func (f *FreeListAllocator) Alloc(size, align uintptr) (uintptr, error) {
	f.stats.AllocCalls++
	size, align, err := blockLayout(size, align)
	if err != nil {
		f.stats.FailedAllocs++
		return 0, err
	}

	var prev uintptr
	for cur := f.head; cur != 0; cur = f.next(cur) {
		bsize := f.size(cur)
		allocStart, ok := fitBlock(cur, bsize, size, align)
		if !ok {
			prev = cur
			continue
		}

		f.unlink(prev, cur)
		f.carve(cur, bsize, allocStart, size)
		f.stats.BytesInUse += uint64(size)
		return allocStart, nil
	}

	f.stats.FailedAllocs++
	return 0, ErrOutOfMemory
}

// carve returns the unused front and back of block [addr, addr+bsize) to the
// list after [allocStart, allocStart+size) was taken from it. Neither piece
// can be adjacent to another free block, so no merging is needed.
func (f *FreeListAllocator) carve(addr, bsize, allocStart, size uintptr) {
	if pad := allocStart - addr; pad >= MinBlockSize {
		f.push(addr, pad)
	}

	allocEnd := allocStart + size
	tail := addr + bsize - allocEnd
	switch {
	case tail >= MinBlockSize:
		f.push(allocEnd, tail)
		f.stats.Splits++
	case tail > 0:
		f.stats.WastedBytes += uint64(tail)
	}
}

// Free returns [addr, addr+size) to the list. size and align must match the
// values passed to Alloc; a layout Alloc would have rejected panics.
func (f *FreeListAllocator) Free(addr, size, align uintptr) {
	f.stats.FreeCalls++
	size, _, err := blockLayout(size, align)
	if err != nil {
		panic(err)
	}
	f.stats.BytesInUse -= min(uint64(size), f.stats.BytesInUse)
	f.insert(addr, size)
}

// insert adds [addr, addr+size) to the list, merging it with the free blocks
// that immediately precede and follow it.
func (f *FreeListAllocator) insert(addr, size uintptr) {
	var prev uintptr
	cur := f.head
	for cur != 0 {
		next := f.next(cur)
		bsize := f.size(cur)

		switch {
		case cur+bsize == addr:
			f.unlink(prev, cur)
			addr, size = cur, size+bsize
			f.stats.CoalesceBackward++
		case addr+size == cur:
			f.unlink(prev, cur)
			size += bsize
			f.stats.CoalesceForward++
		default:
			prev = cur
		}
		cur = next
	}
	f.push(addr, size)
}

// push writes a header at addr and links it at the list front.
func (f *FreeListAllocator) push(addr, size uintptr) {
	f.mem.WriteWord(addr+hdrSize, uint64(size))
	f.mem.WriteWord(addr+hdrNext, uint64(f.head))
	f.head = addr
}

// unlink removes cur, whose predecessor is prev (0 for the head).
func (f *FreeListAllocator) unlink(prev, cur uintptr) {
	next := f.next(cur)
	if prev == 0 {
		f.head = next
		return
	}
	f.mem.WriteWord(prev+hdrNext, uint64(next))
}

func (f *FreeListAllocator) size(addr uintptr) uintptr {
	return uintptr(f.mem.ReadWord(addr + hdrSize))
}

func (f *FreeListAllocator) next(addr uintptr) uintptr {
	return uintptr(f.mem.ReadWord(addr + hdrNext))
}

// FreeBlocks returns the free list in list order.
func (f *FreeListAllocator) FreeBlocks() []Block {
	var blocks []Block
	for cur := f.head; cur != 0; cur = f.next(cur) {
		blocks = append(blocks, Block{Addr: cur, Size: f.size(cur)})
	}
	return blocks
}

// FreeBytes returns the total size of all free blocks.
func (f *FreeListAllocator) FreeBytes() uintptr {
	var total uintptr
	for cur := f.head; cur != 0; cur = f.next(cur) {
		total += f.size(cur)
	}
	return total
}

// Bounds returns the managed range after alignment trimming.
func (f *FreeListAllocator) Bounds() Block { return Block{Addr: f.start, Size: f.end - f.start} }

// Stats returns a copy of the allocator counters.
func (f *FreeListAllocator) Stats() Stats { return f.stats }
