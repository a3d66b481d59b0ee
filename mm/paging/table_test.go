package paging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/mm"
)

func TestOffsetPageTableMapLookup(t *testing.T) {
	table := newTestTable(t, 4)
	page := mm.PageFromAddress(testHeapStart)

	require.NoError(t, table.Map(page, 2, FlagWritable))

	frame, flags, ok := table.Lookup(page)
	require.True(t, ok)
	assert.Equal(t, mm.Frame(2), frame)
	assert.Equal(t, "present|writable", flags.String(), "Map always sets FlagPresent")

	phys, ok := table.Translate(testHeapStart + 0x123)
	require.True(t, ok)
	assert.Equal(t, uintptr(2*format.PageSize+0x123), phys)

	_, ok = table.Translate(testHeapStart + format.PageSize)
	assert.False(t, ok)

	require.ErrorIs(t, table.Map(page, 3, FlagWritable), ErrMappingConflict)
	require.ErrorIs(t, table.Map(page+1, 4, FlagWritable), ErrFrameOutOfRange)
	require.ErrorIs(t, table.Map(page+1, mm.InvalidFrame, FlagWritable), ErrFrameOutOfRange)

	require.NoError(t, table.Unmap(page))
	require.ErrorIs(t, table.Unmap(page), ErrNotMapped)
	assert.Zero(t, table.Mapped())
}

func TestOffsetPageTableWordAccess(t *testing.T) {
	table := newTestTable(t, 4)
	frames := framesUpTo(4)
	require.NoError(t, MapHeap(testHeapStart, 2*format.PageSize, table, frames))

	table.WriteWord(testHeapStart, 0x1122334455667788)
	assert.Equal(t, uint64(0x1122334455667788), table.ReadWord(testHeapStart))

	// A word straddling the page boundary lands in two different frames.
	straddle := testHeapStart + format.PageSize - 4
	table.WriteWord(straddle, 0xaabbccdd00112233)
	assert.Equal(t, uint64(0xaabbccdd00112233), table.ReadWord(straddle))
}

func TestOffsetPageTableBulkAccess(t *testing.T) {
	table := newTestTable(t, 4)
	require.NoError(t, MapHeap(testHeapStart, 3*format.PageSize, table, framesUpTo(4)))

	src := bytes.Repeat([]byte{0xab}, 5000)
	table.WriteAt(src, testHeapStart+100)

	// Destination straddles the boundary between the second and third page.
	dst := testHeapStart + 2*format.PageSize - 500
	table.Copy(dst, testHeapStart+100, 1000)

	got := make([]byte, 1000)
	table.ReadAt(got, dst)
	assert.Equal(t, src[:1000], got)

	table.Fill(testHeapStart+100, 5000, 0)
	zeroes := make([]byte, 5000)
	table.ReadAt(got, testHeapStart+100)
	assert.Equal(t, zeroes[:1000], got)
}

func TestOffsetPageTableFaults(t *testing.T) {
	table := newTestTable(t, 4)
	page := mm.PageFromAddress(testHeapStart)
	require.NoError(t, table.Map(page, 0, FlagPresent))

	assert.NotPanics(t, func() { table.ReadWord(testHeapStart) })

	assertFault := func(fn func(), write, present bool) {
		t.Helper()
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected a page fault")
			fault, ok := r.(*PageFault)
			require.True(t, ok, "unexpected panic value %v", r)
			assert.Equal(t, write, fault.Write)
			assert.Equal(t, present, fault.Present)
			assert.Contains(t, fault.Error(), "page fault")
		}()
		fn()
	}

	assertFault(func() { table.WriteWord(testHeapStart, 1) }, true, true)
	assertFault(func() { table.ReadWord(testHeapStart + format.PageSize) }, false, false)
	assertFault(func() { table.Fill(testHeapStart+format.PageSize, 8, 0) }, true, false)
}

func TestFlagsString(t *testing.T) {
	assert.Equal(t, "none", Flags(0).String())
	assert.Equal(t, "present|writable|nx", (FlagPresent | FlagWritable | FlagNoExecute).String())
	assert.Equal(t, "present|writable", HeapFlags.String())
}
