package alloc

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/internal/testutil"
)

const heapStart = testutil.HeapStart

// allocator is the contract every strategy in this package implements.
type allocator interface {
	Alloc(size, align uintptr) (uintptr, error)
	Free(addr, size, align uintptr)
	Stats() Stats
}

type liveAlloc struct {
	addr, size, align uintptr
}

func newFreeList(t *testing.T, size uintptr) (*FreeListAllocator, *testutil.FlatMemory) {
	t.Helper()
	mem := testutil.SetupMemory(t, size)
	var fl FreeListAllocator
	require.NoError(t, fl.Init(mem, mem.Base, size))
	return &fl, mem
}

func newSizeClass(t *testing.T, size uintptr, cfg SizeClassConfig) (*SizeClassAllocator, *testutil.FlatMemory) {
	t.Helper()
	mem := testutil.SetupMemory(t, size)
	var sc SizeClassAllocator
	require.NoError(t, sc.Init(mem, mem.Base, size, cfg))
	return &sc, mem
}

func newBump(t *testing.T, size uintptr) *BumpAllocator {
	t.Helper()
	var b BumpAllocator
	require.NoError(t, b.Init(heapStart, size))
	return &b
}

// requireNoOverlap fails if any two live allocations share a byte.
func requireNoOverlap(t *testing.T, live []liveAlloc) {
	t.Helper()
	sorted := append([]liveAlloc(nil), live...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].addr < sorted[j].addr })
	for i := 1; i < len(sorted); i++ {
		prev := sorted[i-1]
		require.LessOrEqual(t, prev.addr+max(prev.size, 1), sorted[i].addr,
			"allocation %#x+%d overlaps %#x", prev.addr, prev.size, sorted[i].addr)
	}
}

// requireFreeListInvariants checks the free list against the managed range:
// blocks are aligned, in range, disjoint and never physically adjacent.
func requireFreeListInvariants(t *testing.T, f *FreeListAllocator) {
	t.Helper()
	bounds := f.Bounds()
	blocks := f.FreeBlocks()
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Addr < blocks[j].Addr })

	for i, b := range blocks {
		require.True(t, format.IsAligned(b.Addr, MinAlign), "block %s misaligned", b)
		require.GreaterOrEqual(t, b.Size, uintptr(MinBlockSize), "block %s too small", b)
		require.Zero(t, b.Size%MinAlign, "block %s size not a multiple of %d", b, MinAlign)
		require.GreaterOrEqual(t, b.Addr, bounds.Addr, "block %s below heap", b)
		require.LessOrEqual(t, b.End(), bounds.End(), "block %s past heap", b)
		if i > 0 {
			require.Less(t, blocks[i-1].End(), b.Addr, "blocks %s and %s overlap or touch", blocks[i-1], b)
		}
	}
}
