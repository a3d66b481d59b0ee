package paging

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfFrames indicates the frame source was exhausted while mapping.
	ErrOutOfFrames = errors.New("paging: out of physical frames")

	// ErrMappingConflict indicates the target page is already mapped.
	ErrMappingConflict = errors.New("paging: page already mapped")

	// ErrUnalignedRange indicates a range that is empty or not page aligned.
	ErrUnalignedRange = errors.New("paging: range must be non-empty and page aligned")

	// ErrNotMapped indicates an operation on a page without a mapping.
	ErrNotMapped = errors.New("paging: page not mapped")

	// ErrFrameOutOfRange indicates a frame beyond the end of physical memory.
	ErrFrameOutOfRange = errors.New("paging: frame outside physical memory")
)

// PageFault describes an access to an unmapped or read-only page. Accesses
// through OffsetPageTable panic with a *PageFault, mirroring an unrecoverable
// fault on real hardware.
type PageFault struct {
	Addr  uintptr
	Write bool
	// Present is set when the page was mapped but lacked the required
	// permission.
	Present bool
}

// Error implements the error interface.
func (f *PageFault) Error() string {
	access := "read from"
	if f.Write {
		access = "write to"
	}
	reason := "non-present page"
	if f.Present {
		reason = "read-only page"
	}
	return fmt.Sprintf("paging: page fault: %s %s at %#x", access, reason, f.Addr)
}
