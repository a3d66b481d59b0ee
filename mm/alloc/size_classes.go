package alloc

import (
	"fmt"
	"sort"

	"github.com/joshuapare/kheap/internal/format"
)

// SizeClassConfig defines the block sizes served by a SizeClassAllocator.
// Classes are the powers of two from MinBlock through MaxBlock inclusive.
type SizeClassConfig struct {
	// Name for this configuration (for logs and heapctl output)
	Name string

	MinBlock uintptr // Smallest class, at least MinBlockSize
	MaxBlock uintptr // Largest class; bigger requests go to the fallback
}

// Predefined configurations.
var (
	// Small: 16-512 (6 classes). Keeps less memory parked in class lists.
	ConfigSmall = SizeClassConfig{Name: "Small", MinBlock: 16, MaxBlock: 512}

	// Standard: 16-2048 (8 classes).
	ConfigStandard = SizeClassConfig{Name: "Standard", MinBlock: 16, MaxBlock: 2048}

	// Page: 16-4096 (9 classes). Single pages come from a class list.
	ConfigPage = SizeClassConfig{Name: "Page", MinBlock: 16, MaxBlock: 4096}

	// DefaultSizeClassConfig is used when none is specified.
	DefaultSizeClassConfig = ConfigStandard
)

// Validate checks that both bounds are powers of two, that MinBlock can hold
// a list node and that the range is not empty.
func (c SizeClassConfig) Validate() error {
	switch {
	case !format.IsPowerOfTwo(c.MinBlock) || !format.IsPowerOfTwo(c.MaxBlock):
		return fmt.Errorf("%w: %s bounds %d..%d must be powers of two", ErrBadConfig, c.Name, c.MinBlock, c.MaxBlock)
	case c.MinBlock < MinBlockSize:
		return fmt.Errorf("%w: %s min block %d below %d", ErrBadConfig, c.Name, c.MinBlock, MinBlockSize)
	case c.MinBlock > c.MaxBlock:
		return fmt.Errorf("%w: %s min block %d above max block %d", ErrBadConfig, c.Name, c.MinBlock, c.MaxBlock)
	}
	return nil
}

// sizeClassTable holds the computed class sizes in ascending order.
type sizeClassTable struct {
	config SizeClassConfig
	sizes  []uintptr
}

// newSizeClassTable computes class sizes from config.
func newSizeClassTable(config SizeClassConfig) (*sizeClassTable, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	table := &sizeClassTable{config: config}
	for size := config.MinBlock; size <= config.MaxBlock; size <<= 1 {
		table.sizes = append(table.sizes, size)
	}
	return table, nil
}

// getSizeClass returns the index of the smallest class >= size.
// Returns len(sizes) for sizes above MaxBlock (use the fallback).
func (t *sizeClassTable) getSizeClass(size uintptr) int {
	return sort.Search(len(t.sizes), func(i int) bool { return t.sizes[i] >= size })
}

// classSize returns the block size of class idx.
func (t *sizeClassTable) classSize(idx int) uintptr {
	return t.sizes[idx]
}

// String returns the configuration name.
func (t *sizeClassTable) String() string {
	return t.config.Name
}

// NumClasses returns the number of size classes (excluding the fallback).
func (t *sizeClassTable) NumClasses() int {
	return len(t.sizes)
}
