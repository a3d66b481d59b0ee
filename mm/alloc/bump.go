package alloc

import "github.com/joshuapare/kheap/internal/format"

// BumpAllocator hands out memory by advancing a cursor through the managed
// range. It is the simplest correct strategy and is used as a baseline and for
// memory-constrained boot phases.
//
// Key characteristics:
//   - O(1) allocation: align the cursor, bounds-check, advance
//   - No per-block metadata and no writes to the managed memory
//   - Free() only decrements the live allocation counter; when it reaches
//     zero the cursor resets to the start of the range, reclaiming everything
//     at once
//
// Freeing an address that was never allocated, or freeing twice, breaks the
// live allocation counter and with it the reset logic. Free ignores calls made
// while no allocation is live; any other misuse is the caller's responsibility.
type BumpAllocator struct {
	start uintptr
	end   uintptr

	// next is the address where the next allocation will be attempted.
	// Invariant: start <= next <= end.
	next uintptr

	// allocations counts live allocations.
	allocations uint64

	stats Stats
}

// Init hands the range [start, start+size) to the allocator. The range does
// not need to be accessible; the bump allocator never touches it.
func (b *BumpAllocator) Init(start, size uintptr) error {
	if err := checkRange(start, size, 1); err != nil {
		return err
	}
	*b = BumpAllocator{start: start, end: start + size, next: start}
	return nil
}

// Alloc reserves size bytes aligned to align.
func (b *BumpAllocator) Alloc(size, align uintptr) (uintptr, error) {
	b.stats.AllocCalls++
	if err := checkLayout(size, align); err != nil {
		b.stats.FailedAllocs++
		return 0, err
	}
	size = max(size, 1)

	allocStart := format.AlignUp(b.next, align)
	allocEnd := allocStart + size
	if allocStart < b.next || allocEnd < allocStart || allocEnd > b.end {
		b.stats.FailedAllocs++
		return 0, ErrOutOfMemory
	}

	b.next = allocEnd
	b.allocations++
	b.stats.BytesInUse += uint64(size)
	return allocStart, nil
}

// Free releases an allocation. Only the number of live allocations matters;
// addr, size and align are accepted for interface symmetry.
func (b *BumpAllocator) Free(_, size, _ uintptr) {
	b.stats.FreeCalls++
	if b.allocations == 0 {
		return
	}

	b.allocations--
	b.stats.BytesInUse -= min(uint64(max(size, 1)), b.stats.BytesInUse)
	if b.allocations == 0 {
		b.next = b.start
		b.stats.BumpResets++
	}
}

// Next returns the current cursor position.
func (b *BumpAllocator) Next() uintptr { return b.next }

// Allocations returns the number of live allocations.
func (b *BumpAllocator) Allocations() uint64 { return b.allocations }

// Bounds returns the managed range.
func (b *BumpAllocator) Bounds() Block { return Block{Addr: b.start, Size: b.end - b.start} }

// FreeBytes returns the bytes between the cursor and the end of the range.
func (b *BumpAllocator) FreeBytes() uintptr { return b.end - b.next }

// Stats returns a copy of the allocator counters.
func (b *BumpAllocator) Stats() Stats { return b.stats }
