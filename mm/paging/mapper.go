// Package paging provides the virtual memory side of heap bootstrap: page
// access flags, the page mapping contract consumed by MapHeap and a software
// page table that resolves virtual addresses into simulated physical memory.
package paging

import (
	"fmt"

	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/internal/logger"
	"github.com/joshuapare/kheap/mm"
)

// Mapper installs a single page-to-frame mapping. Implementations must return
// an error wrapping ErrMappingConflict if the page is already mapped.
type Mapper interface {
	Map(page mm.Page, frame mm.Frame, flags Flags) error
}

// FrameSource hands out unique physical frames. *mm.FrameSource implements it.
type FrameSource interface {
	Next() (mm.Frame, bool)
}

// HeapFlags are the access flags used for every heap page.
const HeapFlags = FlagPresent | FlagWritable

// MapHeap maps every page of [start, start+size) to a fresh frame obtained from
// frames, using HeapFlags.
//
// Mapping is not transactional: when a frame cannot be obtained or a mapping
// cannot be installed, the pages mapped so far stay mapped and the error is
// returned. Heap setup failures are fatal to boot so no rollback is attempted.
func MapHeap(start, size uintptr, m Mapper, frames FrameSource) error {
	if size == 0 || !format.IsAligned(start, format.PageSize) || !format.IsAligned(size, format.PageSize) {
		return fmt.Errorf("%w: [%#x, +%#x)", ErrUnalignedRange, start, size)
	}
	if start+size < start {
		return fmt.Errorf("%w: [%#x, +%#x) wraps the address space", ErrUnalignedRange, start, size)
	}

	first, _, count := mm.PageRange(start, size)
	for page := first; page < first+mm.Page(count); page++ {
		frame, ok := frames.Next()
		if !ok {
			return fmt.Errorf("map heap page %#x: %w", page.Address(), ErrOutOfFrames)
		}
		if err := m.Map(page, frame, HeapFlags); err != nil {
			return fmt.Errorf("map heap page %#x to frame %#x: %w", page.Address(), frame.Address(), err)
		}
	}

	logger.Debug("heap range mapped",
		"start", fmt.Sprintf("%#x", start),
		"size", format.Size(size).String(),
		"pages", count,
	)
	return nil
}
