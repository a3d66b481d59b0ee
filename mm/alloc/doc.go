// Package alloc implements the heap allocation strategies that manage an
// already-mapped virtual address range.
//
// # Strategies
//
// BumpAllocator: monotonic cursor allocation
//
//   - O(1) allocation, no per-block metadata
//   - Individual frees only decrement a live-allocation counter; the cursor
//     returns to the start of the range once the counter drops to zero
//   - Suited to phase-based workloads and early boot
//
// FreeListAllocator: first-fit free list with coalescing
//
//   - Free blocks form an intrusive singly linked list; each block's
//     {size, next} header lives in the first 16 bytes of the block itself
//   - First-fit scan in list order; the unused tail of a block is split off
//     and pushed back to the front of the list
//   - Frees eagerly merge with the physically preceding and following free
//     blocks so a released range never stays fragmented
//
// SizeClassAllocator: segregated fixed-size blocks
//
//   - Power-of-two size classes (16 bytes to 2KiB by default), one intrusive
//     free list per class
//   - O(1) allocation and deallocation for requests that fit a class
//   - Empty classes are refilled one block at a time from a wrapped
//     FreeListAllocator, which also serves every request above the largest class
//
// # Memory access
//
// Allocators never dereference addresses directly. Block headers are read and
// written through the Memory interface, which is the only boundary between the
// allocator logic and the memory it manages.
//
// # Sizes and Alignment
//
// Requests are described by a size and a power-of-two alignment. The free list
// rounds both up to 16 bytes, so every block it hands out or tracks can hold a
// free-block header. Size classes are chosen by max(size, align); a block of a
// class is aligned to its own size.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access
// externally; the kheap package serialises every call behind a spinlock.
package alloc
