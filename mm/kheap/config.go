package kheap

import (
	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/mm/alloc"
)

const (
	// HeapStart is the virtual address the kernel heap is mapped at.
	HeapStart uintptr = 0x4444_4444_0000

	// HeapSize is the size of the kernel heap. It is a multiple of the page
	// size.
	HeapSize = uintptr(100 * format.Kb)
)

// Config describes a heap to boot.
type Config struct {
	// Kind selects the allocation strategy.
	// Default: DefaultKind
	Kind Kind

	// Start and Size give the virtual heap range. Both must be page aligned.
	// Default: HeapStart, HeapSize
	Start uintptr
	Size  uintptr

	// SizeClasses configures KindSizeClass. Ignored by the other kinds.
	// Default: alloc.DefaultSizeClassConfig
	SizeClasses alloc.SizeClassConfig
}

// DefaultConfig returns the build-time heap configuration.
func DefaultConfig() Config {
	return Config{
		Kind:        DefaultKind,
		Start:       HeapStart,
		Size:        HeapSize,
		SizeClasses: alloc.DefaultSizeClassConfig,
	}
}
