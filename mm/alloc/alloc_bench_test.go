package alloc

import (
	"testing"

	"github.com/joshuapare/kheap/internal/testutil"
)

func BenchmarkBump_AllocFree(b *testing.B) {
	var bump BumpAllocator
	if err := bump.Init(testutil.HeapStart, 1<<20); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for b.Loop() {
		addr, err := bump.Alloc(64, 8)
		if err != nil {
			b.Fatal(err)
		}
		bump.Free(addr, 64, 8)
	}
}

func BenchmarkFreeList_AllocFree(b *testing.B) {
	mem := testutil.SetupMemory(b, 1<<20)
	var fl FreeListAllocator
	if err := fl.Init(mem, mem.Base, 1<<20); err != nil {
		b.Fatal(err)
	}

	// Leave small holes at the list front so the scan has work to do.
	for i := range 64 {
		size := uintptr(32 + 16*(i%8))
		addr, err := fl.Alloc(size, 16)
		if err != nil {
			b.Fatal(err)
		}
		if i%2 == 1 {
			fl.Free(addr, size, 16)
		}
	}

	b.ReportAllocs()
	for b.Loop() {
		addr, err := fl.Alloc(200, 8)
		if err != nil {
			b.Fatal(err)
		}
		fl.Free(addr, 200, 8)
	}
}

func BenchmarkSizeClass_AllocFree(b *testing.B) {
	mem := testutil.SetupMemory(b, 1<<20)
	var sc SizeClassAllocator
	if err := sc.Init(mem, mem.Base, 1<<20, DefaultSizeClassConfig); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for b.Loop() {
		addr, err := sc.Alloc(48, 8)
		if err != nil {
			b.Fatal(err)
		}
		sc.Free(addr, 48, 8)
	}
}
