package mm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameSourceQEMUMap(t *testing.T) {
	src := NewFrameSource(QEMUMemoryMap())
	seen := make(map[Frame]struct{})

	for {
		frame, ok := src.Next()
		if !ok {
			break
		}
		require.True(t, frame.Valid())
		_, dup := seen[frame]
		require.False(t, dup, "frame %d handed out twice", frame)
		seen[frame] = struct{}{}

		addr := frame.Address()
		inRegion1 := addr+0x1000 <= 0x9fc00
		inRegion2 := addr >= 0x100000 && addr+0x1000 <= 0x7fe0000
		require.True(t, inRegion1 || inRegion2, "frame %#x outside usable memory", addr)
	}

	assert.Len(t, seen, 159+32480)
	assert.Equal(t, uint64(159+32480), src.Allocated())
	assert.Zero(t, src.Remaining())

	// Exhaustion is sticky.
	frame, ok := src.Next()
	assert.False(t, ok)
	assert.Equal(t, InvalidFrame, frame)
}

func TestFrameSourceOrder(t *testing.T) {
	m := MemoryMap{
		{Start: 0x5000, End: 0x7000, Kind: RegionUsable},
		{Start: 0x7000, End: 0x9000, Kind: RegionReserved},
		{Start: 0x1000, End: 0x2000, Kind: RegionUsable},
	}
	src := NewFrameSource(m)
	assert.Equal(t, uint64(3), src.Remaining())

	var got []uintptr
	for {
		f, ok := src.Next()
		if !ok {
			break
		}
		got = append(got, f.Address())
	}

	// Map order is preserved, reserved regions are skipped.
	assert.Equal(t, []uintptr{0x5000, 0x6000, 0x1000}, got)
}

func TestFrameSourceRoundsRegionsInward(t *testing.T) {
	m := MemoryMap{{Start: 0x0fff, End: 0x3001, Kind: RegionUsable}}
	src := NewFrameSource(m)

	f1, ok := src.Next()
	require.True(t, ok)
	f2, ok := src.Next()
	require.True(t, ok)
	_, ok = src.Next()
	require.False(t, ok)

	assert.Equal(t, uintptr(0x1000), f1.Address())
	assert.Equal(t, uintptr(0x2000), f2.Address())
}

func TestFrameSourceEmpty(t *testing.T) {
	src := NewFrameSource(MemoryMap{{Start: 0, End: 0x1000, Kind: RegionReserved}})
	_, ok := src.Next()
	assert.False(t, ok)
	assert.Zero(t, src.Allocated())
}
