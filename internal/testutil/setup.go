package testutil

import (
	"math/rand"
	"testing"
)

// HeapStart is the address tests use for their heap range. It matches the
// kernel heap base so addresses in failure output look familiar.
const HeapStart uintptr = 0x4444_4444_0000

// SetupMemory returns size bytes of flat memory at HeapStart.
//
// Example:
//
//	mem := testutil.SetupMemory(t, 4096)
//	require.NoError(t, fl.Init(mem, mem.Base, 4096))
func SetupMemory(t testing.TB, size uintptr) *FlatMemory {
	t.Helper()
	return NewFlatMemory(HeapStart, size)
}

// Rand returns a deterministic source for randomized tests. The seed is
// logged so a failing run can be reproduced.
func Rand(t testing.TB, seed int64) *rand.Rand {
	t.Helper()
	t.Logf("seed: %d", seed)
	return rand.New(rand.NewSource(seed))
}
