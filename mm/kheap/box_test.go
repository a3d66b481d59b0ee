package kheap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBox_SimpleAllocation(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			h, _ := newReadyHeap(t, kind, HeapSize)

			b1, err := NewBox(h, 41)
			require.NoError(t, err)
			b2, err := NewBox(h, 13)
			require.NoError(t, err)

			require.Equal(t, uint64(41), b1.Get())
			require.Equal(t, uint64(13), b2.Get())
			require.NotEqual(t, b1.Addr(), b2.Addr())

			b1.Set(42)
			require.Equal(t, uint64(42), b1.Get())
			require.Equal(t, uint64(13), b2.Get())

			b1.Free()
			b2.Free()
			require.Zero(t, h.Stats().BytesInUse)
		})
	}
}

func TestVec_LargeVec(t *testing.T) {
	const n = 1000

	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			h, _ := newReadyHeap(t, kind, HeapSize)

			v := NewVec(h)
			require.Zero(t, v.Addr())
			for i := range uint64(n) {
				require.NoError(t, v.Push(i))
			}

			require.Equal(t, n, v.Len())
			require.Equal(t, 1024, v.Cap())
			require.Equal(t, uint64((n-1)*n/2), v.Sum())
			require.Equal(t, uint64(500), v.Get(500))

			v.Set(0, 7)
			require.Equal(t, uint64(7), v.Get(0))
			require.Panics(t, func() { v.Get(n) })

			v.Free()
			require.Zero(t, v.Len())
			require.Zero(t, h.Stats().BytesInUse)
		})
	}
}

func TestVec_GrowFailure(t *testing.T) {
	h, _ := newReadyHeap(t, KindFreeList, 4096)

	v := NewVec(h)
	for i := range uint64(256) {
		require.NoError(t, v.Push(i))
	}
	// 256 words fill half the heap; doubling needs the other half plus the
	// live block.
	err := v.Push(256)
	require.Error(t, err)
	require.Contains(t, err.Error(), "grow vec to 512 elements")
	require.Equal(t, 256, v.Len())
	require.Equal(t, uint64(255*256/2), v.Sum())
}

func TestBox_ManyBoxes(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			h, _ := newReadyHeap(t, kind, HeapSize)

			for i := range uint64(HeapSize) {
				b, err := NewBox(h, i)
				require.NoError(t, err)
				require.Equal(t, i, b.Get())
				b.Free()
			}
		})
	}
}

func TestBox_ManyBoxesLongLived(t *testing.T) {
	// The bump strategy only reclaims once nothing is live, so a single
	// long-lived box makes it run out of memory.
	for _, kind := range []Kind{KindFreeList, KindSizeClass} {
		t.Run(kind.String(), func(t *testing.T) {
			h, _ := newReadyHeap(t, kind, HeapSize)

			longLived, err := NewBox(h, 1)
			require.NoError(t, err)

			for i := range uint64(HeapSize) {
				b, err := NewBox(h, i)
				require.NoError(t, err)
				require.Equal(t, i, b.Get())
				b.Free()
			}
			require.Equal(t, uint64(1), longLived.Get())
		})
	}
}

func TestBox_BumpLongLivedRunsOut(t *testing.T) {
	h, _ := newReadyHeap(t, KindBump, HeapSize)

	_, err := NewBox(h, 1)
	require.NoError(t, err)

	var failed bool
	for i := range uint64(HeapSize) {
		b, err := NewBox(h, i)
		if err != nil {
			failed = true
			break
		}
		b.Free()
	}
	require.True(t, failed)
}
