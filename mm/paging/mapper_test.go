package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/mm"
)

const testHeapStart = uintptr(0x4444_4444_0000)

func TestMapHeap(t *testing.T) {
	table := newTestTable(t, 8)
	frames := framesUpTo(8)

	require.NoError(t, MapHeap(testHeapStart, 4*format.PageSize, table, frames))
	assert.Equal(t, 4, table.Mapped())

	seen := map[mm.Frame]bool{}
	for i := range uintptr(4) {
		page := mm.PageFromAddress(testHeapStart + i*format.PageSize)
		frame, flags, ok := table.Lookup(page)
		require.True(t, ok, "page %d not mapped", i)
		assert.True(t, flags.HasFlags(FlagPresent|FlagWritable), "page %d flags %s", i, flags)
		assert.False(t, seen[frame], "frame %d reused", frame)
		seen[frame] = true
	}

	// The page after the heap stays unmapped.
	_, _, ok := table.Lookup(mm.PageFromAddress(testHeapStart + 4*format.PageSize))
	assert.False(t, ok)
}

func TestMapHeapOutOfFrames(t *testing.T) {
	table := newTestTable(t, 8)

	err := MapHeap(testHeapStart, 4*format.PageSize, table, framesUpTo(2))
	require.ErrorIs(t, err, ErrOutOfFrames)
	assert.Contains(t, err.Error(), "0x444444442000", "error names the failing page")

	// Mapping is not rolled back.
	assert.Equal(t, 2, table.Mapped())
}

func TestMapHeapConflict(t *testing.T) {
	table := newTestTable(t, 8)
	require.NoError(t, table.Map(mm.PageFromAddress(testHeapStart+format.PageSize), 7, FlagPresent))

	err := MapHeap(testHeapStart, 2*format.PageSize, table, framesUpTo(4))
	require.ErrorIs(t, err, ErrMappingConflict)
	assert.NotErrorIs(t, err, ErrOutOfFrames)
}

func TestMapHeapMapperError(t *testing.T) {
	m := &failingMapper{failAt: 3, err: errMapperBroken}

	err := MapHeap(testHeapStart, 4*format.PageSize, m, framesUpTo(8))
	require.ErrorIs(t, err, errMapperBroken)
	assert.Equal(t, 3, m.calls, "mapping stops at the first failure")
}

func TestMapHeapRejectsBadRanges(t *testing.T) {
	tests := []struct {
		name        string
		start, size uintptr
	}{
		{"empty", testHeapStart, 0},
		{"unaligned start", testHeapStart + 8, format.PageSize},
		{"unaligned size", testHeapStart, format.PageSize + 1},
		{"wraps", ^uintptr(0) &^ format.PageMask, 2 * format.PageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &failingMapper{}
			err := MapHeap(tt.start, tt.size, m, framesUpTo(4))
			require.ErrorIs(t, err, ErrUnalignedRange)
			assert.Zero(t, m.calls)
		})
	}
}
